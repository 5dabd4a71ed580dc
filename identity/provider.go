// Package identity is a self hosted identity provider implementing
// account.IdentityPort: bcrypt credentials in a Bun database, a single
// process wide session and emailed JWT action links.
package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Provider holds the session user for the process. Every session change
// goes through the session slot, which also feeds ObserveSession.
type Provider struct {
	accounts   Accounts
	tokens     *ActionTokens
	mailer     Mailer
	cache      SessionCache
	logger     account.Logger
	bcryptCost int
	hashIDs    bool
	linkBase   string
	now        func() time.Time

	session *account.StateSlot[*account.User]
}

var _ account.IdentityPort = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*Provider)

func WithMailer(m Mailer) Option {
	return func(p *Provider) {
		if m != nil {
			p.mailer = m
		}
	}
}

func WithSessionCache(c SessionCache) Option {
	return func(p *Provider) {
		if c != nil {
			p.cache = c
		}
	}
}

func WithLogger(l account.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBcryptCost sets the hashing cost for new passwords.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) {
		p.bcryptCost = cost
	}
}

// WithHashIDs derives account ids from the email address instead of
// generating random ones.
func WithHashIDs(enabled bool) Option {
	return func(p *Provider) {
		p.hashIDs = enabled
	}
}

// WithLinkBaseURL sets the URL prefix of emailed action links.
func WithLinkBaseURL(base string) Option {
	return func(p *Provider) {
		p.linkBase = strings.TrimRight(base, "/")
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProvider creates a Provider with no session user.
func NewProvider(accounts Accounts, tokens *ActionTokens, opts ...Option) *Provider {
	p := &Provider{
		accounts:   accounts,
		tokens:     tokens,
		cache:      &MemorySessionCache{},
		logger:     account.DefaultLogger(),
		bcryptCost: DefaultBcryptCost,
		linkBase:   "http://localhost:8080",
		now:        time.Now,
		session:    account.NewStateSlot[*account.User](nil),
	}
	p.mailer = LogMailer{Logger: p.logger}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Restore loads the cached session user, if any.
func (p *Provider) Restore(ctx context.Context) error {
	user, err := p.cache.Load(ctx)
	if err != nil {
		return err
	}
	p.publish(user)
	return nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*account.User, error) {
	acc, err := p.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load account")
	}

	if err := ComparePasswordAndHash(password, acc.PasswordHash); err != nil {
		if goerrors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check password")
	}

	user := acc.ToUser()
	p.setSession(ctx, user)
	return user, nil
}

// SignUp creates the account and signs it in.
func (p *Provider) SignUp(ctx context.Context, name, email, password string) (*account.User, error) {
	email = normalizeEmail(email)

	if _, err := p.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to check email")
	}

	if len([]rune(password)) < account.MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	id := uuid.New()
	if p.hashIDs {
		if hid, err := hashid.NewUUID(email); err == nil {
			id = hid
		}
	}

	now := p.now().UTC().Truncate(time.Millisecond)
	acc, err := p.accounts.Create(ctx, &AccountModel{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
	}

	user := acc.ToUser()
	p.setSession(ctx, user)
	return user, nil
}

// SendPasswordReset mails a reset link to the account owning email.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	acc, err := p.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load account")
	}

	token, err := p.tokens.Issue(PurposePasswordReset, acc.ID.String())
	if err != nil {
		return err
	}

	link := p.link("/auth/password-reset/confirm", token)
	return p.mailer.Send(ctx, Message{
		To:      acc.Email,
		Subject: "Reset password akun Anda",
		Body:    fmt.Sprintf("Halo %s,\n\nBuka tautan berikut untuk mengganti password:\n%s\n", acc.Name, link),
		Link:    link,
	})
}

// SendEmailVerification mails a verification link to the session user.
func (p *Provider) SendEmailVerification(ctx context.Context) error {
	user := p.session.Get()
	if user == nil {
		return ErrNoSession
	}

	token, err := p.tokens.Issue(PurposeVerifyEmail, user.ID)
	if err != nil {
		return err
	}

	link := p.link("/auth/verify-email", token)
	return p.mailer.Send(ctx, Message{
		To:      user.Email,
		Subject: "Verifikasi email Anda",
		Body:    fmt.Sprintf("Halo %s,\n\nBuka tautan berikut untuk memverifikasi email:\n%s\n", user.Name, link),
		Link:    link,
	})
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.publish(nil)
	if err := p.cache.Clear(ctx); err != nil {
		return err
	}
	return nil
}

// GetCurrentUser returns a copy of the session user.
func (p *Provider) GetCurrentUser(_ context.Context) *account.User {
	return copyUser(p.session.Get())
}

// ReloadSession re-reads the session account. It returns nil, nil when
// nobody is signed in.
func (p *Provider) ReloadSession(ctx context.Context) (*account.User, error) {
	current := p.session.Get()
	if current == nil {
		return nil, nil
	}

	acc, err := p.accounts.GetByID(ctx, current.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to reload account")
	}

	user := acc.ToUser()
	p.setSession(ctx, user)
	return copyUser(user), nil
}

// ObserveSession sends the session user now and on every change until ctx
// is done.
func (p *Provider) ObserveSession(ctx context.Context) <-chan *account.User {
	ch, stop := p.session.Watch()
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ch
}

// VerifyEmail marks the account behind a verification token as verified.
func (p *Provider) VerifyEmail(ctx context.Context, token string) (*account.User, error) {
	claims, err := p.tokens.Parse(token, PurposeVerifyEmail)
	if err != nil {
		return nil, err
	}

	acc, err := p.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load account")
	}

	acc.EmailVerified = true
	if acc, err = p.accounts.Update(ctx, acc); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to verify email")
	}

	user := acc.ToUser()
	if current := p.session.Get(); current != nil && current.ID == user.ID {
		p.setSession(ctx, user)
	}
	return user, nil
}

// ConfirmPasswordReset sets a new password for the account behind a reset
// token.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := p.tokens.Parse(token, PurposePasswordReset)
	if err != nil {
		return err
	}

	if len([]rune(newPassword)) < account.MinPasswordLength {
		return ErrWeakPassword
	}

	acc, err := p.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load account")
	}

	hash, err := HashPassword(newPassword, p.bcryptCost)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	acc.PasswordHash = hash
	if _, err := p.accounts.Update(ctx, acc); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update password")
	}
	return nil
}

func (p *Provider) setSession(ctx context.Context, user *account.User) {
	p.publish(user)
	if err := p.cache.Save(ctx, user); err != nil {
		p.logger.Error("session cache write failed", "user_id", user.ID, "error", err)
	}
}

func (p *Provider) publish(user *account.User) {
	snapshot := copyUser(user)
	p.session.Update(func(*account.User) *account.User {
		return snapshot
	})
}

func (p *Provider) link(path, token string) string {
	return p.linkBase + path + "?token=" + url.QueryEscape(token)
}

func copyUser(u *account.User) *account.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
