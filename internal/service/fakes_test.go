package service

import (
	"context"

	"github.com/spec-kit/ticket-escalation/internal/domain"
)

type fakeDirectory struct {
	getUserFn           func(ctx context.Context, username string) (domain.User, bool, error)
	getAccountManagerFn func(ctx context.Context) (domain.User, bool, error)
	calls               []string
}

func (f *fakeDirectory) GetUser(ctx context.Context, username string) (domain.User, bool, error) {
	f.calls = append(f.calls, "GetUser:"+username)
	if f.getUserFn == nil {
		return domain.User{}, false, nil
	}
	return f.getUserFn(ctx, username)
}

func (f *fakeDirectory) GetAccountManager(ctx context.Context) (domain.User, bool, error) {
	f.calls = append(f.calls, "GetAccountManager")
	if f.getAccountManagerFn == nil {
		return domain.User{}, false, nil
	}
	return f.getAccountManagerFn(ctx)
}

// knownUsers resolves every name in users; the account manager is "alice".
func knownUsers(users ...string) *fakeDirectory {
	set := map[string]bool{}
	for _, u := range users {
		set[u] = true
	}
	return &fakeDirectory{
		getUserFn: func(_ context.Context, username string) (domain.User, bool, error) {
			if !set[username] {
				return domain.User{}, false, nil
			}
			return domain.User{ID: "id-" + username, Username: username}, true, nil
		},
		getAccountManagerFn: func(context.Context) (domain.User, bool, error) {
			return domain.User{ID: "id-alice", Username: "alice", IsAccountManager: true}, true, nil
		},
	}
}

type fakeStore struct {
	createFn func(ctx context.Context, ticket *domain.Ticket) (int64, error)
	getFn    func(ctx context.Context, id int64) (domain.Ticket, bool, error)
	updateFn func(ctx context.Context, ticket *domain.Ticket) error
	created  []domain.Ticket
	updated  []domain.Ticket
}

func (f *fakeStore) CreateTicket(ctx context.Context, ticket *domain.Ticket) (int64, error) {
	f.created = append(f.created, *ticket)
	if f.createFn == nil {
		return int64(len(f.created)), nil
	}
	return f.createFn(ctx, ticket)
}

func (f *fakeStore) GetTicket(ctx context.Context, id int64) (domain.Ticket, bool, error) {
	if f.getFn == nil {
		return domain.Ticket{}, false, nil
	}
	return f.getFn(ctx, id)
}

func (f *fakeStore) UpdateTicket(ctx context.Context, ticket *domain.Ticket) error {
	f.updated = append(f.updated, *ticket)
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, ticket)
}

type sentEmail struct {
	title      string
	assignedTo string
}

type fakeTransport struct {
	err  error
	sent []sentEmail
}

func (f *fakeTransport) SendEmailToAdministrator(_ context.Context, title, assignedTo string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{title: title, assignedTo: assignedTo})
	return nil
}
