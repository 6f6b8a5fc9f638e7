package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-escalation/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket *domain.Ticket) (int64, error)
	GetTicket(ctx context.Context, id int64) (domain.Ticket, bool, error)
	UpdateTicket(ctx context.Context, ticket *domain.Ticket) error
}

// updateAssigneeQuery only touches the assignee; priority and price are fixed at creation.
const updateAssigneeQuery = `
        UPDATE tickets SET assigned_user_id=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`

const selectTicketQuery = `
        SELECT t.id, t.title, t.description, t.priority, t.price_dollars, t.created_at, t.updated_at,
               a.id, a.username, a.name, a.email, a.is_account_manager, a.created_at, a.updated_at,
               m.id, m.username, m.name, m.email, m.is_account_manager, m.created_at, m.updated_at
        FROM tickets t
        LEFT JOIN users a ON a.id = t.assigned_user_id
        LEFT JOIN users m ON m.id = t.account_manager_id
        WHERE t.id=$1`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) CreateTicket(ctx context.Context, ticket *domain.Ticket) (int64, error) {
	const query = `
        INSERT INTO tickets (title, description, priority, assigned_user_id, account_manager_id, price_dollars, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		userID(ticket.AssignedUser),
		userID(ticket.AccountManager),
		ticket.PriceDollars,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return ticket.ID, nil
}

// UpdateTicket persists a reassignment. Priority and price are immutable after creation.
func (r *ticketRepository) UpdateTicket(ctx context.Context, ticket *domain.Ticket) error {
	err := r.pool.QueryRow(ctx, updateAssigneeQuery, userID(ticket.AssignedUser), ticket.ID).Scan(&ticket.UpdatedAt)
	if err != nil {
		return err
	}
	return nil
}

func (r *ticketRepository) GetTicket(ctx context.Context, id int64) (domain.Ticket, bool, error) {
	var (
		ticket   domain.Ticket
		assignee nullableUser
		manager  nullableUser
	)
	if err := r.pool.QueryRow(ctx, selectTicketQuery, id).Scan(ticketScanTargets(&ticket, &assignee, &manager)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, false, nil
		}
		return domain.Ticket{}, false, err
	}
	ticket.AssignedUser = assignee.user()
	ticket.AccountManager = manager.user()
	return ticket, true, nil
}

// ticketScanTargets lists scan destinations in selectTicketQuery column order.
func ticketScanTargets(ticket *domain.Ticket, assignee, manager *nullableUser) []any {
	dest := []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.PriceDollars,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	}
	dest = append(dest, assignee.dest()...)
	return append(dest, manager.dest()...)
}

// nullableUser scans the columns of a LEFT JOINed users row.
type nullableUser struct {
	ID               *string
	Username         *string
	Name             *string
	Email            *string
	IsAccountManager *bool
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}

func (n *nullableUser) dest() []any {
	return []any{&n.ID, &n.Username, &n.Name, &n.Email, &n.IsAccountManager, &n.CreatedAt, &n.UpdatedAt}
}

func (n *nullableUser) user() *domain.User {
	if n.ID == nil {
		return nil
	}
	u := &domain.User{ID: *n.ID}
	if n.Username != nil {
		u.Username = *n.Username
	}
	if n.Name != nil {
		u.Name = *n.Name
	}
	if n.Email != nil {
		u.Email = *n.Email
	}
	if n.IsAccountManager != nil {
		u.IsAccountManager = *n.IsAccountManager
	}
	if n.CreatedAt != nil {
		u.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		u.UpdatedAt = *n.UpdatedAt
	}
	return u
}

func userID(u *domain.User) *string {
	if u == nil || u.ID == "" {
		return nil
	}
	return &u.ID
}
