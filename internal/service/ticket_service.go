package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-escalation/internal/clock"
	"github.com/spec-kit/ticket-escalation/internal/domain"
	"github.com/spec-kit/ticket-escalation/internal/events"
	apperrors "github.com/spec-kit/ticket-escalation/pkg/util"
)

// TicketService coordinates ticket creation and reassignment.
type TicketService struct {
	users      UserDirectory
	tickets    TicketStore
	priorities PriorityCalculator
	notifier   *NotificationService
	validator  TextValidator
	prices     PriceCalculator
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Users      UserDirectory
	Tickets    TicketStore
	Priorities PriorityCalculator
	Notifier   *NotificationService
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &TicketService{
		users:      deps.Users,
		tickets:    deps.Tickets,
		priorities: deps.Priorities,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		clock:      clk,
		logger:     logger,
	}
}

// CreateTicket validates, prices and stores a new ticket and returns its id.
// The store is the last collaborator touched, so any earlier failure leaves nothing behind.
func (s *TicketService) CreateTicket(ctx context.Context, req domain.TicketRequest) (int64, error) {
	if err := s.validator.Validate(req.Title, req.Description); err != nil {
		return 0, err
	}
	if !req.Priority.Valid() {
		return 0, apperrors.NewInvalidTicket("unknown priority", map[string]any{"priority": req.Priority})
	}

	var (
		assignee   *domain.User
		assignedTo string
	)
	if username := strings.TrimSpace(req.AssignedTo); username != "" {
		user, err := s.resolveUser(ctx, username)
		if err != nil {
			return 0, err
		}
		assignee = &user
		assignedTo = user.Username
	}

	eval := s.priorities.Evaluate(req.Title, req.Priority, req.CreatedAt)

	notified, err := s.notifier.Notify(ctx, req.Title, assignedTo, eval.Priority)
	if err != nil {
		return 0, err
	}

	price := s.prices.Calculate(eval.Priority, req.IsPayingCustomer)

	var accountManager *domain.User
	if req.IsPayingCustomer {
		manager, err := s.resolveAccountManager(ctx)
		if err != nil {
			return 0, err
		}
		accountManager = &manager
	}

	ticket := &domain.Ticket{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       eval.Priority,
		AssignedUser:   assignee,
		AccountManager: accountManager,
		PriceDollars:   price,
		CreatedAt:      req.CreatedAt,
	}

	id, err := s.tickets.CreateTicket(ctx, ticket)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	ticket.ID = id

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", id),
		zap.String("initial_priority", string(req.Priority)),
		zap.String("priority", string(eval.Priority)),
		zap.String("escalated_by", eval.Rule),
		zap.Int("price_dollars", price),
		zap.Bool("paying_customer", req.IsPayingCustomer),
		zap.Bool("admin_notified", notified))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: id,
		Payload: events.TicketCreatedPayload{
			Title:          ticket.Title,
			Priority:       ticket.Priority,
			AssignedTo:     ticket.AssignedUsername(),
			PriceDollars:   price,
			PayingCustomer: req.IsPayingCustomer,
			AdminNotified:  notified,
		},
	})
	if eval.Escalated() {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: id,
			Payload: events.TicketEscalatedPayload{
				OldPriority: req.Priority,
				NewPriority: eval.Priority,
				Rule:        eval.Rule,
			},
		})
	}
	return id, nil
}

// AssignTicket hands an existing ticket to username. Priority and price are left untouched.
func (s *TicketService) AssignTicket(ctx context.Context, id int64, username string) (*domain.Ticket, error) {
	user, err := s.resolveUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := ticket.AssignedUsername()
	ticket.AssignedUser = &user
	if err := s.tickets.UpdateTicket(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket reassigned",
		zap.Int64("ticket_id", id),
		zap.String("from", previous),
		zap.String("to", user.Username))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: id,
		Payload: events.TicketAssignedPayload{
			PreviousAssignee: previous,
			Assignee:         user.Username,
		},
	})
	return ticket, nil
}

// GetTicket loads a ticket or fails with a ticket-not-found error.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, found, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !found {
		return nil, apperrors.NewTicketNotFound(id)
	}
	return &ticket, nil
}

func (s *TicketService) resolveUser(ctx context.Context, username string) (domain.User, error) {
	user, found, err := s.users.GetUser(ctx, username)
	if err != nil {
		return domain.User{}, apperrors.MapError(err)
	}
	if !found {
		return domain.User{}, apperrors.NewUnknownUser("user "+username+" not found", map[string]any{"username": username})
	}
	return user, nil
}

func (s *TicketService) resolveAccountManager(ctx context.Context) (domain.User, error) {
	manager, found, err := s.users.GetAccountManager(ctx)
	if err != nil {
		return domain.User{}, apperrors.MapError(err)
	}
	if !found {
		return domain.User{}, apperrors.NewUnknownUser("account manager could not be found", nil)
	}
	return manager, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
