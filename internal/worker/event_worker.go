package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-escalation/internal/events"
	"github.com/spec-kit/ticket-escalation/internal/observability"
)

// StartEventWorker subscribes audit handlers that log ticket events and count them.
func StartEventWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	h := &eventHandlers{logger: logger, metrics: metrics}
	dispatcher.Subscribe(events.EventTicketCreated, h.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketEscalated, h.handleTicketEscalated)
	dispatcher.Subscribe(events.EventTicketAssigned, h.handleTicketAssigned)
}

type eventHandlers struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

func (h *eventHandlers) handleTicketCreated(_ context.Context, event events.Event) error {
	h.metrics.RecordEvent(string(event.Type), "")
	h.logger.Info("TicketCreated", zap.String("event_id", event.ID), zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (h *eventHandlers) handleTicketEscalated(_ context.Context, event events.Event) error {
	rule := ""
	if payload, ok := event.Payload.(events.TicketEscalatedPayload); ok {
		rule = payload.Rule
	}
	h.metrics.RecordEvent(string(event.Type), rule)
	h.logger.Info("TicketEscalated", zap.String("event_id", event.ID), zap.Int64("ticket_id", event.TicketID), zap.String("rule", rule))
	return nil
}

func (h *eventHandlers) handleTicketAssigned(_ context.Context, event events.Event) error {
	h.metrics.RecordEvent(string(event.Type), "")
	h.logger.Info("TicketAssigned", zap.String("event_id", event.ID), zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}
