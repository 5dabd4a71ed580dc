package account_test

import (
	"context"
	"sync"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements account.IdentityPort
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) SignIn(ctx context.Context, email, password string) (*account.User, error) {
	args := m.Called(ctx, email, password)
	return userArg(args, 0), args.Error(1)
}

func (m *MockIdentity) SignUp(ctx context.Context, name, email, password string) (*account.User, error) {
	args := m.Called(ctx, name, email, password)
	return userArg(args, 0), args.Error(1)
}

func (m *MockIdentity) SendPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentity) SendEmailVerification(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentity) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentity) GetCurrentUser(ctx context.Context) *account.User {
	args := m.Called(ctx)
	return userArg(args, 0)
}

func (m *MockIdentity) ReloadSession(ctx context.Context) (*account.User, error) {
	args := m.Called(ctx)
	return userArg(args, 0), args.Error(1)
}

func (m *MockIdentity) ObserveSession(ctx context.Context) <-chan *account.User {
	args := m.Called(ctx)
	return args.Get(0).(<-chan *account.User)
}

// MockDirectory implements account.DirectoryPort
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Upsert(ctx context.Context, user account.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockDirectory) GetByID(ctx context.Context, id string) (*account.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

func (m *MockDirectory) ObserveAll(ctx context.Context) <-chan account.DirectorySnapshot {
	args := m.Called(ctx)
	return args.Get(0).(<-chan account.DirectorySnapshot)
}

func userArg(args mock.Arguments, i int) *account.User {
	if u, ok := args.Get(i).(*account.User); ok {
		return u
	}
	return nil
}

// snapshots returns a closed channel pre-filled with snaps.
func snapshots(snaps ...account.DirectorySnapshot) <-chan account.DirectorySnapshot {
	ch := make(chan account.DirectorySnapshot, len(snaps))
	for _, s := range snaps {
		ch <- s
	}
	close(ch)
	return ch
}

// recordingSink collects activity events.
type recordingSink struct {
	mu     sync.Mutex
	events []account.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, e account.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) types() []account.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]account.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
