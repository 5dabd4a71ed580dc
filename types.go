package account

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the logging contract used across the package. Arguments after
// the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// IdentityPort is the external identity provider. It owns the session user;
// consumers only ever see it through these calls or the session stream.
type IdentityPort interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	// SignUp creates the account and sets its display name.
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context) error
	SignOut(ctx context.Context) error
	// GetCurrentUser is a cached read, it never goes to the network.
	GetCurrentUser(ctx context.Context) *User
	ReloadSession(ctx context.Context) (*User, error)
	// ObserveSession emits the current session user immediately and then
	// on every change. The channel is closed once ctx is done.
	ObserveSession(ctx context.Context) <-chan *User
}

// DirectorySnapshot is a single emission of the directory stream. A
// snapshot with Err set is always the last one sent.
type DirectorySnapshot struct {
	Users []User
	// Skipped counts records dropped from this snapshot because they
	// could not be decoded.
	Skipped int
	Err     error
}

// DirectoryPort is the external profile store.
type DirectoryPort interface {
	Upsert(ctx context.Context, user User) error
	// GetByID returns nil, nil when no profile exists for id.
	GetByID(ctx context.Context, id string) (*User, error)
	// ObserveAll streams the full collection until ctx is done or the
	// store fails. The channel is closed in both cases.
	ObserveAll(ctx context.Context) <-chan DirectorySnapshot
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println("[ERR] ACCOUNT " + formatLine(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println("[INF] ACCOUNT " + formatLine(msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println("[DBG] ACCOUNT " + formatLine(msg, args...))
}

// DefaultLogger returns the stdout logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

func formatLine(msg string, args ...any) string {
	if len(args) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return b.String()
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
