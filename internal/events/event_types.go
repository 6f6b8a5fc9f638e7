package events

import (
	"time"

	"github.com/spec-kit/ticket-escalation/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketEscalated EventType = "ticket_escalated"
	EventTicketAssigned  EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title          string          `json:"title"`
	Priority       domain.Priority `json:"priority"`
	AssignedTo     string          `json:"assigned_to,omitempty"`
	PriceDollars   int             `json:"price_dollars"`
	PayingCustomer bool            `json:"paying_customer"`
	AdminNotified  bool            `json:"admin_notified"`
}

// TicketEscalatedPayload records which rule raised the priority at creation.
type TicketEscalatedPayload struct {
	OldPriority domain.Priority `json:"old_priority"`
	NewPriority domain.Priority `json:"new_priority"`
	Rule        string          `json:"rule"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAssignee string `json:"previous_assignee,omitempty"`
	Assignee         string `json:"assignee"`
}
