package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/vmihailenco/msgpack/v5"
)

// SessionCache persists the session user between process runs.
type SessionCache interface {
	// Load returns nil, nil when nothing is cached.
	Load(ctx context.Context) (*account.User, error)
	Save(ctx context.Context, user *account.User) error
	Clear(ctx context.Context) error
}

type cachedSession struct {
	ID            string    `msgpack:"id"`
	Name          string    `msgpack:"name"`
	Email         string    `msgpack:"email"`
	EmailVerified bool      `msgpack:"email_verified"`
	CreatedAt     time.Time `msgpack:"created_at"`
}

func encodeSession(u *account.User) ([]byte, error) {
	return msgpack.Marshal(&cachedSession{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	})
}

func decodeSession(data []byte) (*account.User, error) {
	var s cachedSession
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, nil
	}
	return &account.User{
		ID:            s.ID,
		Name:          s.Name,
		Email:         s.Email,
		EmailVerified: s.EmailVerified,
		CreatedAt:     s.CreatedAt.UTC(),
	}, nil
}

// FileSessionCache stores the session user as msgpack in a single file.
type FileSessionCache struct {
	path string
	mu   sync.Mutex
}

func NewFileSessionCache(path string) *FileSessionCache {
	return &FileSessionCache{path: path}
}

func (c *FileSessionCache) Load(_ context.Context) (*account.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session cache")
	}

	user, err := decodeSession(data)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode session cache")
	}
	return user, nil
}

func (c *FileSessionCache) Save(_ context.Context, user *account.User) error {
	if user == nil {
		return c.Clear(context.Background())
	}

	data, err := encodeSession(user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session cache")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session cache directory")
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session cache")
	}
	return nil
}

func (c *FileSessionCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session cache")
	}
	return nil
}

// MemorySessionCache keeps the encoded session in memory. It is the
// default cache, so a session lasts for the life of the process.
type MemorySessionCache struct {
	mu   sync.Mutex
	data []byte
}

func (c *MemorySessionCache) Load(_ context.Context) (*account.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil, nil
	}
	return decodeSession(c.data)
}

func (c *MemorySessionCache) Save(_ context.Context, user *account.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if user == nil {
		c.data = nil
		return nil
	}
	data, err := encodeSession(user)
	if err != nil {
		return err
	}
	c.data = data
	return nil
}

func (c *MemorySessionCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	return nil
}
