package account

import (
	"context"
	"time"
)

// ActivityEventType names an account event as "account.<action>[.<outcome>]".
type ActivityEventType string

const (
	ActivityEventSignInSuccess          ActivityEventType = "account.sign_in.success"
	ActivityEventSignInFailure          ActivityEventType = "account.sign_in.failure"
	ActivityEventSignUpSuccess          ActivityEventType = "account.sign_up.success"
	ActivityEventSignUpProfileFailure   ActivityEventType = "account.sign_up.profile_failure"
	ActivityEventPasswordResetRequested ActivityEventType = "account.password_reset.requested"
	ActivityEventSignOut                ActivityEventType = "account.sign_out"
)

// ActivityEvent is emitted by Service after a session or profile operation.
// UserID is empty when the operation did not resolve a user, such as a
// failed sign in; Metadata then carries the submitted email.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink receives every ActivityEvent. A returned error is logged by
// Service and the operation result stays as it was.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc lets a plain function act as an ActivitySink.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}
