package service

import (
	"context"
	"time"

	"github.com/spec-kit/ticket-escalation/internal/domain"
	"github.com/spec-kit/ticket-escalation/internal/priority"
)

// UserDirectory resolves users. found is false when no such user exists;
// err is reserved for lookup failures.
type UserDirectory interface {
	GetUser(ctx context.Context, username string) (user domain.User, found bool, err error)
	GetAccountManager(ctx context.Context) (user domain.User, found bool, err error)
}

// TicketStore persists tickets. CreateTicket assigns and returns the id.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *domain.Ticket) (int64, error)
	GetTicket(ctx context.Context, id int64) (ticket domain.Ticket, found bool, err error)
	UpdateTicket(ctx context.Context, ticket *domain.Ticket) error
}

// EmailTransport delivers the high-priority alert to the administrator.
type EmailTransport interface {
	SendEmailToAdministrator(ctx context.Context, title, assignedTo string) error
}

// PriorityCalculator computes the final priority of a new ticket.
type PriorityCalculator interface {
	Evaluate(title string, initial domain.Priority, createdAt time.Time) priority.Evaluation
}
