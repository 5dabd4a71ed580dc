package activitymap

import (
	"context"
	"strings"
	"time"

	account "github.com/goliatone/go-account"
)

const (
	// MetadataKeyAction stores the action segment of the event type, e.g. sign_in.
	MetadataKeyAction = "action"
	// MetadataKeyOutcome stores the trailing segment of the event type, e.g. failure.
	MetadataKeyOutcome = "outcome"
)

const (
	defaultChannel    = "account"
	defaultObjectType = "profile"
	defaultActorID    = "anonymous"
	eventTypePrefix   = "account."
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
	now           func() time.Time
}

// Normalize converts an account.ActivityEvent into the normalized shape.
// Sign-in failures carry no user id, so the actor falls back to the
// attempted email and then to the configured fallback.
func Normalize(event account.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	userID := strings.TrimSpace(event.UserID)
	actorID := firstNonEmpty(
		userID,
		stringMeta(event.Metadata, "email"),
		options.actorFallback,
	)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = options.now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   userID,
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// Fields flattens a record into key/value pairs for structured loggers.
func (n Normalized) Fields() []any {
	fields := []any{
		"actor_id", n.ActorID,
		"object_type", n.ObjectType,
		"channel", n.Channel,
		"occurred_at", n.OccurredAt,
	}
	if n.ObjectID != "" {
		fields = append(fields, "object_id", n.ObjectID)
	}
	if len(n.Metadata) > 0 {
		fields = append(fields, "metadata", n.Metadata)
	}
	return fields
}

// Sink returns an account.ActivitySink that writes every event, normalized,
// to the logger at info level.
func Sink(logger account.Logger, opts ...Option) account.ActivitySink {
	return account.ActivitySinkFunc(func(_ context.Context, event account.ActivityEvent) error {
		n := Normalize(event, opts...)
		logger.Info(n.Verb, n.Fields()...)
		return nil
	})
}

// WithDefaultChannel sets the channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the final actor id fallback.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// WithClock stamps events that arrive without OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(opts *normalizeOptions) {
		if now != nil {
			opts.now = now
		}
	}
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
		now:           time.Now,
	}
}

// splitEventType breaks "account.sign_up.profile_failure" into
// ("sign_up", "profile_failure"). Two segment types like "account.sign_out"
// have no outcome.
func splitEventType(t account.ActivityEventType) (action, outcome string) {
	rest := strings.TrimPrefix(string(t), eventTypePrefix)
	action, outcome, _ = strings.Cut(rest, ".")
	return action, outcome
}

func normalizeMetadata(event account.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	action, outcome := splitEventType(event.EventType)
	if action != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyAction]; !exists {
			metadata[MetadataKeyAction] = action
		}
	}
	if outcome != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[MetadataKeyOutcome] = outcome
	}

	return metadata
}

func stringMeta(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
