package account

import (
	"context"
	"strings"
	"time"
)

// Service composes validation, the identity provider and the profile
// store into single purpose operations. No operation retries; every
// failure is reported once, as a Result.
type Service struct {
	identity     IdentityPort
	directory    DirectoryPort
	validator    Validator
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for swallowed side effect failures.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		s.logger = normalizeLogger(l)
	}
}

// WithActivitySink sets the sink receiving account activity events. A nil
// sink turns recording off.
func WithActivitySink(sink ActivitySink) ServiceOption {
	return func(s *Service) {
		s.activitySink = sink
	}
}

// WithClock overrides the clock used for activity timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a Service over both ports.
func NewService(identity IdentityPort, directory DirectoryPort, opts ...ServiceOption) *Service {
	s := &Service{
		identity:  identity,
		directory: directory,
		logger:    defLogger{},
		now:       time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Identity exposes the identity port, mainly for adapters that need the
// provider specific operations.
func (s *Service) Identity() IdentityPort {
	return s.identity
}

// syncProfile writes user into the directory. Failures are logged and
// otherwise ignored.
func (s *Service) syncProfile(ctx context.Context, user *User, op string) {
	if user == nil {
		return
	}
	if err := s.directory.Upsert(ctx, *user); err != nil {
		s.logger.Error("profile sync failed", "operation", op, "user_id", user.ID, "error", err)
	}
}

func (s *Service) record(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	if s.activitySink == nil {
		return
	}

	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}
	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Error("activity sink failed", "event", string(eventType), "error", err)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
