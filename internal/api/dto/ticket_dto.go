package dto

import (
	"time"

	"github.com/spec-kit/ticket-escalation/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	AssignedTo     string     `json:"assigned_to"`
	CreatedAt      *time.Time `json:"created_at"`
	PayingCustomer bool       `json:"paying_customer"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	Username string `json:"username"`
}

// CreateTicketResponse returns the new ticket id.
type CreateTicketResponse struct {
	ID int64 `json:"id"`
}

// UserSummary is the public view of a user on a ticket.
type UserSummary struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Priority       domain.Priority `json:"priority"`
	AssignedUser   *UserSummary    `json:"assigned_user"`
	AccountManager *UserSummary    `json:"account_manager"`
	PriceDollars   int             `json:"price_dollars"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Priority:       ticket.Priority,
		AssignedUser:   userSummary(ticket.AssignedUser),
		AccountManager: userSummary(ticket.AccountManager),
		PriceDollars:   ticket.PriceDollars,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func userSummary(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{Username: u.Username, Name: u.Name, Email: u.Email}
}
