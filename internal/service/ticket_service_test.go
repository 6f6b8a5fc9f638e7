package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/ticket-escalation/internal/clock"
	"github.com/spec-kit/ticket-escalation/internal/domain"
	"github.com/spec-kit/ticket-escalation/internal/events"
	"github.com/spec-kit/ticket-escalation/internal/priority"
	apperrors "github.com/spec-kit/ticket-escalation/pkg/util"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc        *TicketService
	users      *fakeDirectory
	store      *fakeStore
	transport  *fakeTransport
	dispatcher events.Dispatcher
	published  []events.Event
}

func newHarness(users *fakeDirectory) *harness {
	h := &harness{
		users:      users,
		store:      &fakeStore{},
		transport:  &fakeTransport{},
		dispatcher: events.NewInMemoryDispatcher(),
	}
	record := func(_ context.Context, e events.Event) error {
		h.published = append(h.published, e)
		return nil
	}
	h.dispatcher.Subscribe(events.EventTicketCreated, record)
	h.dispatcher.Subscribe(events.EventTicketEscalated, record)
	h.dispatcher.Subscribe(events.EventTicketAssigned, record)

	clk := clock.Fake(now)
	h.svc = NewTicketService(TicketDependencies{
		Users:      users,
		Tickets:    h.store,
		Priorities: priority.NewDefaultEngine(clk, priority.Config{}),
		Notifier:   NewNotificationService(h.transport, nil),
		Dispatcher: h.dispatcher,
		Clock:      clk,
	})
	return h
}

func TestCreateTicket_KeywordScenario(t *testing.T) {
	h := newHarness(knownUsers("bob"))

	id, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title:            "Login Crash",
		Description:      "Users cannot sign in",
		Priority:         domain.PriorityLow,
		AssignedTo:       "bob",
		CreatedAt:        now,
		IsPayingCustomer: true,
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	got := h.store.created[0]
	if got.Priority != domain.PriorityMedium {
		t.Errorf("priority = %s, want MEDIUM", got.Priority)
	}
	if got.PriceDollars != 50 {
		t.Errorf("price = %d, want 50", got.PriceDollars)
	}
	if len(h.transport.sent) != 0 {
		t.Errorf("notification sent for MEDIUM ticket")
	}
	if got.AssignedUsername() != "bob" {
		t.Errorf("assignee = %q, want bob", got.AssignedUsername())
	}
	if got.AccountManager == nil || got.AccountManager.Username != "alice" {
		t.Errorf("account manager = %+v, want alice", got.AccountManager)
	}
}

func TestCreateTicket_AgeScenario(t *testing.T) {
	h := newHarness(knownUsers())

	_, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title:            "Outage",
		Description:      "Region down",
		Priority:         domain.PriorityMedium,
		CreatedAt:        now.Add(-2 * time.Hour),
		IsPayingCustomer: true,
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}

	got := h.store.created[0]
	if got.Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want HIGH", got.Priority)
	}
	if got.PriceDollars != 100 {
		t.Errorf("price = %d, want 100", got.PriceDollars)
	}
	if len(h.transport.sent) != 1 || h.transport.sent[0].title != "Outage" {
		t.Errorf("sent = %+v, want one email about Outage", h.transport.sent)
	}
	if got.AccountManager == nil {
		t.Error("account manager not attached")
	}
	if got.AssignedUser != nil {
		t.Errorf("assignee = %+v, want unassigned", got.AssignedUser)
	}
}

func TestCreateTicket_OldKeywordTicketEscalatesOnce(t *testing.T) {
	h := newHarness(knownUsers())

	if _, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title:       "Important: payment failure",
		Description: "d",
		Priority:    domain.PriorityLow,
		CreatedAt:   now.Add(-3 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if got := h.store.created[0].Priority; got != domain.PriorityMedium {
		t.Fatalf("priority = %s, want MEDIUM", got)
	}
}

func TestCreateTicket_NonPayingCustomer(t *testing.T) {
	h := newHarness(knownUsers())

	if _, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title:       "Failure in export",
		Description: "d",
		Priority:    domain.PriorityMedium,
		CreatedAt:   now,
	}); err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}

	got := h.store.created[0]
	if got.PriceDollars != 0 {
		t.Errorf("price = %d, want 0", got.PriceDollars)
	}
	if got.AccountManager != nil {
		t.Errorf("account manager attached to non-paying ticket")
	}
	for _, call := range h.users.calls {
		if call == "GetAccountManager" {
			t.Errorf("account manager looked up for non-paying ticket")
		}
	}
	if len(h.transport.sent) != 1 {
		t.Errorf("HIGH ticket should notify regardless of paying flag")
	}
}

func TestCreateTicket_NotifiesWithResolvedUsername(t *testing.T) {
	tests := []struct {
		name       string
		assignedTo string
		want       string
	}{
		{name: "padded username", assignedTo: "  bob ", want: "bob"},
		{name: "unassigned", assignedTo: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(knownUsers("bob"))

			_, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
				Title:       "Outage",
				Description: "everything is down",
				Priority:    domain.PriorityHigh,
				AssignedTo:  tt.assignedTo,
				CreatedAt:   now,
			})
			if err != nil {
				t.Fatalf("CreateTicket() error = %v", err)
			}
			if len(h.transport.sent) != 1 {
				t.Fatalf("sent = %d emails, want 1", len(h.transport.sent))
			}
			if got := h.transport.sent[0].assignedTo; got != tt.want {
				t.Fatalf("email assignee = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateTicket_BlankTextHasNoSideEffects(t *testing.T) {
	for _, req := range []domain.TicketRequest{
		{Title: "", Description: "d", Priority: domain.PriorityLow, AssignedTo: "bob"},
		{Title: "t", Description: "  ", Priority: domain.PriorityLow, AssignedTo: "bob"},
	} {
		h := newHarness(knownUsers("bob"))
		_, err := h.svc.CreateTicket(context.Background(), req)
		if !errors.Is(err, apperrors.ErrInvalidTicket) {
			t.Fatalf("CreateTicket(%+v) error = %v, want invalid ticket", req, err)
		}
		if len(h.users.calls) != 0 || len(h.store.created) != 0 || len(h.transport.sent) != 0 {
			t.Fatalf("side effects after validation failure: lookups=%v created=%d sent=%d",
				h.users.calls, len(h.store.created), len(h.transport.sent))
		}
	}
}

func TestCreateTicket_UnknownAssignee(t *testing.T) {
	h := newHarness(knownUsers("bob"))

	_, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title:            "Crash",
		Description:      "d",
		Priority:         domain.PriorityMedium,
		AssignedTo:       "mallory",
		CreatedAt:        now.Add(-5 * time.Hour),
		IsPayingCustomer: true,
	})
	if !errors.Is(err, apperrors.ErrUnknownUser) {
		t.Fatalf("error = %v, want unknown user", err)
	}
	if len(h.store.created) != 0 || len(h.transport.sent) != 0 {
		t.Fatalf("persisted=%d sent=%d after unknown assignee", len(h.store.created), len(h.transport.sent))
	}
}

func TestCreateTicket_OmittedAssigneeSkipsLookup(t *testing.T) {
	h := newHarness(knownUsers())

	if _, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title: "Question", Description: "d", Priority: domain.PriorityLow, CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if len(h.users.calls) != 0 {
		t.Fatalf("lookups = %v, want none", h.users.calls)
	}
}

func TestCreateTicket_MissingAccountManager(t *testing.T) {
	users := knownUsers()
	users.getAccountManagerFn = func(context.Context) (domain.User, bool, error) {
		return domain.User{}, false, nil
	}
	h := newHarness(users)

	_, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title: "Question", Description: "d", Priority: domain.PriorityLow, CreatedAt: now, IsPayingCustomer: true,
	})
	if !errors.Is(err, apperrors.ErrUnknownUser) {
		t.Fatalf("error = %v, want unknown user", err)
	}
	if len(h.store.created) != 0 {
		t.Fatal("ticket persisted without account manager")
	}
}

func TestCreateTicket_TransportFailurePersistsNothing(t *testing.T) {
	h := newHarness(knownUsers())
	h.transport.err = errors.New("smtp down")

	_, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title: "Outage", Description: "d", Priority: domain.PriorityHigh, CreatedAt: now,
	})
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("error = %v, want transport error", err)
	}
	if len(h.store.created) != 0 {
		t.Fatal("ticket persisted after transport failure")
	}
}

func TestCreateTicket_StoreFailure(t *testing.T) {
	h := newHarness(knownUsers())
	h.store.createFn = func(context.Context, *domain.Ticket) (int64, error) {
		return 0, errors.New("connection reset")
	}

	_, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title: "Question", Description: "d", Priority: domain.PriorityLow, CreatedAt: now,
	})
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "INTERNAL_ERROR" {
		t.Fatalf("error = %v, want internal error", err)
	}
	if len(h.published) != 0 {
		t.Fatalf("events published after failed persist: %v", h.published)
	}
}

func TestCreateTicket_RejectsUnknownPriority(t *testing.T) {
	h := newHarness(knownUsers())

	_, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title: "t", Description: "d", Priority: "URGENT", CreatedAt: now,
	})
	if !errors.Is(err, apperrors.ErrInvalidTicket) {
		t.Fatalf("error = %v, want invalid ticket", err)
	}
}

func TestCreateTicket_PublishesEvents(t *testing.T) {
	h := newHarness(knownUsers())

	if _, err := h.svc.CreateTicket(context.Background(), domain.TicketRequest{
		Title: "Crash", Description: "d", Priority: domain.PriorityLow, CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if len(h.published) != 2 {
		t.Fatalf("published %d events, want 2", len(h.published))
	}
	escalated, ok := h.published[1].Payload.(events.TicketEscalatedPayload)
	if !ok || escalated.Rule != priority.RuleKeyword || escalated.NewPriority != domain.PriorityMedium {
		t.Fatalf("escalation event = %+v", h.published[1])
	}
	if !h.published[0].Timestamp.Equal(now) || h.published[0].ID == "" {
		t.Fatalf("created event metadata = %+v", h.published[0])
	}
}

func TestAssignTicket(t *testing.T) {
	h := newHarness(knownUsers("bob", "carol"))
	stored := domain.Ticket{
		ID:           42,
		Title:        "Outage",
		Description:  "d",
		Priority:     domain.PriorityHigh,
		PriceDollars: 100,
		AssignedUser: &domain.User{Username: "bob"},
		CreatedAt:    now.Add(-48 * time.Hour),
	}
	h.store.getFn = func(_ context.Context, id int64) (domain.Ticket, bool, error) {
		if id != stored.ID {
			return domain.Ticket{}, false, nil
		}
		return stored, true, nil
	}

	ticket, err := h.svc.AssignTicket(context.Background(), 42, "carol")
	if err != nil {
		t.Fatalf("AssignTicket() error = %v", err)
	}
	if ticket.AssignedUsername() != "carol" {
		t.Fatalf("assignee = %q, want carol", ticket.AssignedUsername())
	}
	if len(h.store.updated) != 1 {
		t.Fatalf("updates = %d, want 1", len(h.store.updated))
	}
	updated := h.store.updated[0]
	if updated.Priority != domain.PriorityHigh || updated.PriceDollars != 100 {
		t.Fatalf("priority/price recomputed: %s/%d", updated.Priority, updated.PriceDollars)
	}
	if len(h.transport.sent) != 0 {
		t.Fatal("reassignment sent a notification")
	}
	payload, ok := h.published[0].Payload.(events.TicketAssignedPayload)
	if !ok || payload.PreviousAssignee != "bob" || payload.Assignee != "carol" {
		t.Fatalf("assigned event = %+v", h.published[0])
	}
}

func TestAssignTicket_TrimsUsername(t *testing.T) {
	h := newHarness(knownUsers("bob"))
	h.store.getFn = func(_ context.Context, id int64) (domain.Ticket, bool, error) {
		return domain.Ticket{ID: id, Priority: domain.PriorityLow}, true, nil
	}

	ticket, err := h.svc.AssignTicket(context.Background(), 5, "  bob ")
	if err != nil {
		t.Fatalf("AssignTicket() error = %v", err)
	}
	if ticket.AssignedUsername() != "bob" {
		t.Fatalf("assignee = %q, want bob", ticket.AssignedUsername())
	}
	if want := []string{"GetUser:bob"}; len(h.users.calls) != 1 || h.users.calls[0] != want[0] {
		t.Fatalf("directory calls = %v, want %v", h.users.calls, want)
	}
}

func TestAssignTicket_UnknownUser(t *testing.T) {
	h := newHarness(knownUsers())
	var fetched bool
	h.store.getFn = func(context.Context, int64) (domain.Ticket, bool, error) {
		fetched = true
		return domain.Ticket{ID: 1}, true, nil
	}

	_, err := h.svc.AssignTicket(context.Background(), 1, "ghost")
	if !errors.Is(err, apperrors.ErrUnknownUser) {
		t.Fatalf("error = %v, want unknown user", err)
	}
	if fetched || len(h.store.updated) != 0 {
		t.Fatal("store touched after unknown user")
	}
}

func TestAssignTicket_MissingTicket(t *testing.T) {
	h := newHarness(knownUsers("bob"))

	_, err := h.svc.AssignTicket(context.Background(), 99, "bob")
	if !errors.Is(err, apperrors.ErrTicketNotFound) {
		t.Fatalf("error = %v, want ticket not found", err)
	}
	if len(h.store.updated) != 0 {
		t.Fatal("update issued for missing ticket")
	}
}

func TestGetTicket_LookupError(t *testing.T) {
	h := newHarness(knownUsers())
	h.store.getFn = func(context.Context, int64) (domain.Ticket, bool, error) {
		return domain.Ticket{}, false, errors.New("timeout")
	}

	_, err := h.svc.GetTicket(context.Background(), 5)
	if err == nil || errors.Is(err, apperrors.ErrTicketNotFound) {
		t.Fatalf("error = %v, want infrastructure error", err)
	}
}
