package domain

import "time"

// TicketRequest is the caller's submission; it is discarded once the ticket is built.
type TicketRequest struct {
	Title            string
	Description      string
	Priority         Priority
	AssignedTo       string
	CreatedAt        time.Time
	IsPayingCustomer bool
}

// Ticket is the persisted support request. Priority and PriceDollars are fixed at creation.
type Ticket struct {
	ID             int64
	Title          string
	Description    string
	Priority       Priority
	AssignedUser   *User
	AccountManager *User
	PriceDollars   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AssignedUsername returns the assignee's username or "" when unassigned.
func (t *Ticket) AssignedUsername() string {
	if t == nil || t.AssignedUser == nil {
		return ""
	}
	return t.AssignedUser.Username
}
