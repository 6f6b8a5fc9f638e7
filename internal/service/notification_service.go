package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-escalation/internal/domain"
	apperrors "github.com/spec-kit/ticket-escalation/pkg/util"
)

// NotificationService emails the administrator about high-priority tickets.
type NotificationService struct {
	transport EmailTransport
	logger    *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(transport EmailTransport, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{transport: transport, logger: logger}
}

// Notify sends the administrator email only when priority is High.
// Transport failures are returned wrapped as transport errors.
func (n *NotificationService) Notify(ctx context.Context, title, assignedTo string, priority domain.Priority) (bool, error) {
	if priority != domain.PriorityHigh {
		return false, nil
	}
	if err := n.transport.SendEmailToAdministrator(ctx, title, assignedTo); err != nil {
		n.logger.Warn("administrator notification failed",
			zap.String("title", title),
			zap.String("assigned_to", assignedTo),
			zap.Error(err))
		return false, apperrors.NewTransportError(err)
	}
	n.logger.Info("administrator notified",
		zap.String("title", title),
		zap.String("assigned_to", assignedTo))
	return true, nil
}
