package identity

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryAccounts struct {
	mu      sync.Mutex
	records map[uuid.UUID]AccountModel
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{records: make(map[uuid.UUID]AccountModel)}
}

func (m *memoryAccounts) GetByEmail(_ context.Context, email string) (*AccountModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.Email == normalizeEmail(email) {
			rec := r
			return &rec, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (m *memoryAccounts) GetByID(_ context.Context, id string) (*AccountModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrRecordNotFound
	}
	r, ok := m.records[uid]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memoryAccounts) Create(_ context.Context, record *AccountModel) (*AccountModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = *record
	rec := *record
	return &rec, nil
}

func (m *memoryAccounts) Update(_ context.Context, record *AccountModel) (*AccountModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = *record
	rec := *record
	return &rec, nil
}

type outbox struct {
	mu   sync.Mutex
	sent []Message
}

func (o *outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last(t *testing.T) Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	return o.sent[len(o.sent)-1]
}

func tokenFrom(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

type silentLogger struct{}

func (silentLogger) Debug(string, ...any) {}
func (silentLogger) Info(string, ...any)  {}
func (silentLogger) Error(string, ...any) {}

func newTestProvider(opts ...Option) (*Provider, *memoryAccounts, *outbox) {
	accounts := newMemoryAccounts()
	mail := &outbox{}
	tokens := NewActionTokens([]byte("test-secret"), time.Hour, "go-account")
	opts = append([]Option{
		WithMailer(mail),
		WithLogger(silentLogger{}),
		WithBcryptCost(bcrypt.MinCost),
		WithLinkBaseURL("https://accounts.test/"),
	}, opts...)
	return NewProvider(accounts, tokens, opts...), accounts, mail
}

func TestProviderSignUpAndSignIn(t *testing.T) {
	p, _, _ := newTestProvider()
	ctx := context.Background()

	user, err := p.SignUp(ctx, " Diva ", "Diva@Example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "Diva", user.Name)
	assert.Equal(t, "diva@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, user, p.GetCurrentUser(ctx), "sign up signs the new account in")

	require.NoError(t, p.SignOut(ctx))
	assert.Nil(t, p.GetCurrentUser(ctx))

	signedIn, err := p.SignIn(ctx, "diva@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)

	_, err = p.SignIn(ctx, "diva@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "Secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProviderSignUpRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	p, _, _ := newTestProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "Diva", "diva@example.com", "Secret1")
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "Other", "DIVA@example.com", "Secret1")
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = p.SignUp(ctx, "Weak", "weak@example.com", "abc")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestProviderHashIDsAreStable(t *testing.T) {
	ctx := context.Background()

	p1, _, _ := newTestProvider(WithHashIDs(true))
	p2, _, _ := newTestProvider(WithHashIDs(true))

	u1, err := p1.SignUp(ctx, "Diva", "diva@example.com", "Secret1")
	require.NoError(t, err)
	u2, err := p2.SignUp(ctx, "Diva", "diva@example.com", "Secret1")
	require.NoError(t, err)

	assert.Equal(t, u1.ID, u2.ID)
}

func TestProviderEmailVerification(t *testing.T) {
	p, _, mail := newTestProvider()
	ctx := context.Background()

	assert.ErrorIs(t, p.SendEmailVerification(ctx), ErrNoSession)

	user, err := p.SignUp(ctx, "Diva", "diva@example.com", "Secret1")
	require.NoError(t, err)
	require.NoError(t, p.SendEmailVerification(ctx))

	msg := mail.last(t)
	assert.Equal(t, "diva@example.com", msg.To)
	assert.True(t, strings.HasPrefix(msg.Link, "https://accounts.test/auth/verify-email?token="))

	token := tokenFrom(t, msg.Link)
	_, err = p.tokens.Parse(token, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidToken, "a verification token cannot reset a password")

	verified, err := p.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
	assert.Equal(t, user.ID, verified.ID)
	assert.True(t, p.GetCurrentUser(ctx).EmailVerified, "session user follows verification")

	reloaded, err := p.ReloadSession(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded.EmailVerified)
}

func TestProviderPasswordReset(t *testing.T) {
	p, _, mail := newTestProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "Diva", "diva@example.com", "Secret1")
	require.NoError(t, err)

	assert.ErrorIs(t, p.SendPasswordReset(ctx, "nobody@example.com"), ErrAccountNotFound)

	require.NoError(t, p.SendPasswordReset(ctx, "diva@example.com"))
	token := tokenFrom(t, mail.last(t).Link)

	assert.ErrorIs(t, p.ConfirmPasswordReset(ctx, token, "abc"), ErrWeakPassword)
	assert.ErrorIs(t, p.ConfirmPasswordReset(ctx, "garbage", "Secret2"), ErrInvalidToken)
	require.NoError(t, p.ConfirmPasswordReset(ctx, token, "Secret2"))

	_, err = p.SignIn(ctx, "diva@example.com", "Secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "diva@example.com", "Secret2")
	assert.NoError(t, err)
}

func TestProviderReloadWithoutSession(t *testing.T) {
	p, _, _ := newTestProvider()

	user, err := p.ReloadSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestProviderObserveSession(t *testing.T) {
	p, _, _ := newTestProvider()
	ctx, cancel := context.WithCancel(context.Background())

	stream := p.ObserveSession(ctx)
	assert.Nil(t, <-stream, "the current value is sent first")

	user, err := p.SignUp(context.Background(), "Diva", "diva@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, (<-stream).ID)

	require.NoError(t, p.SignOut(context.Background()))
	assert.Nil(t, <-stream)

	cancel()
	select {
	case _, ok := <-stream:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("session stream not closed")
	}
}

func TestProviderRestoresFileSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.msgpack")

	p1, accounts, _ := newTestProvider(WithSessionCache(NewFileSessionCache(path)))
	user, err := p1.SignUp(ctx, "Diva", "diva@example.com", "Secret1")
	require.NoError(t, err)

	tokens := NewActionTokens([]byte("test-secret"), time.Hour, "go-account")
	p2 := NewProvider(accounts, tokens, WithSessionCache(NewFileSessionCache(path)), WithLogger(silentLogger{}))
	require.NoError(t, p2.Restore(ctx))

	restored := p2.GetCurrentUser(ctx)
	require.NotNil(t, restored)
	assert.Equal(t, user.ID, restored.ID)
	assert.True(t, user.CreatedAt.Equal(restored.CreatedAt))

	require.NoError(t, p2.SignOut(ctx))
	p3 := NewProvider(accounts, tokens, WithSessionCache(NewFileSessionCache(path)), WithLogger(silentLogger{}))
	require.NoError(t, p3.Restore(ctx))
	assert.Nil(t, p3.GetCurrentUser(ctx))
}

var _ account.IdentityPort = (*Provider)(nil)
