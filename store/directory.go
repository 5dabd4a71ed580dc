// Package store keeps the user directory in a SQL database through Bun.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Directory implements account.DirectoryPort on a Bun database.
//
// ObserveAll streams the whole collection. A fresh snapshot is queried
// after every Upsert made through this Directory and, when a poll
// interval is set, periodically to pick up writes from other processes.
type Directory struct {
	db           *bun.DB
	logger       account.Logger
	pollInterval time.Duration

	mu          sync.Mutex
	subscribers map[int]chan struct{}
	nextID      int
}

var _ account.DirectoryPort = (*Directory)(nil)

// ErrMalformedRecord is returned by GetByID for a row missing required
// fields. ObserveAll drops such rows and counts them instead.
var ErrMalformedRecord = goerrors.New("malformed profile record", goerrors.CategoryInternal).
	WithTextCode("MALFORMED_RECORD")

// Option customizes a Directory.
type Option func(*Directory)

// WithLogger sets the directory logger.
func WithLogger(l account.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithPollInterval re-queries open streams every interval. Zero disables
// polling.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Directory) {
		if interval >= 0 {
			d.pollInterval = interval
		}
	}
}

// NewDirectory creates a Directory over db.
func NewDirectory(db *bun.DB, opts ...Option) *Directory {
	d := &Directory{
		db:          db,
		logger:      account.DefaultLogger(),
		subscribers: make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Migrate creates the profiles table when missing.
func (d *Directory) Migrate(ctx context.Context) error {
	_, err := d.db.NewCreateTable().
		Model((*ProfileModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create profiles table")
	}
	return nil
}

// Upsert writes the full profile, replacing any previous record with the
// same id.
func (d *Directory) Upsert(ctx context.Context, user account.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return goerrors.New("profile id is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	_, err := d.db.NewInsert().
		Model(newProfileModel(user)).
		On("CONFLICT (uid) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("email = EXCLUDED.email").
		Set("email_verified = EXCLUDED.email_verified").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to upsert profile").
			WithMetadata(map[string]any{"uid": user.ID})
	}

	d.notify()
	return nil
}

// GetByID returns the profile for id, or nil when there is none.
func (d *Directory) GetByID(ctx context.Context, id string) (*account.User, error) {
	var model ProfileModel
	err := d.db.NewSelect().
		Model(&model).
		Where("uid = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read profile").
			WithMetadata(map[string]any{"uid": id})
	}

	user, ok := model.toUser()
	if !ok {
		d.logger.Debug("malformed profile", "uid", id)
		return nil, ErrMalformedRecord
	}
	return &user, nil
}

// ObserveAll sends the current collection and then a new snapshot after
// every change. A query failure is sent once and closes the stream.
func (d *Directory) ObserveAll(ctx context.Context) <-chan account.DirectorySnapshot {
	out := make(chan account.DirectorySnapshot)
	changed, unsubscribe := d.subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		var tick <-chan time.Time
		if d.pollInterval > 0 {
			ticker := time.NewTicker(d.pollInterval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			snap := d.snapshot(ctx)
			if ctx.Err() != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case out <- snap:
			}

			if snap.Err != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			case <-tick:
			}
		}
	}()

	return out
}

func (d *Directory) snapshot(ctx context.Context) account.DirectorySnapshot {
	var rows []ProfileModel
	err := d.db.NewSelect().
		Model(&rows).
		OrderExpr("created_at ASC, uid ASC").
		Scan(ctx)
	if err != nil {
		d.logger.Error("profiles query failed", "error", err)
		return account.DirectorySnapshot{
			Err: goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list profiles"),
		}
	}

	users, skipped := decodeProfiles(rows)
	if skipped > 0 {
		d.logger.Debug("malformed profiles skipped", "skipped", skipped)
	}
	return account.DirectorySnapshot{Users: users, Skipped: skipped}
}

func (d *Directory) subscribe() (<-chan struct{}, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan struct{}, 1)
	id := d.nextID
	d.nextID++
	d.subscribers[id] = ch

	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subscribers, id)
	}
}

func (d *Directory) notify() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, ch := range d.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of open streams.
func (d *Directory) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}
