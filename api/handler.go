// Package api exposes the account use cases over HTTP through go-router.
//
// The identity provider holds one session per process. Sign in and sign up
// hand the caller a bearer token for that session, and every route that
// reads the session or the directory requires it. A token stops working as
// soon as the process session changes hands or ends.
package api

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	// TextCodeSessionRequired marks requests without a valid session token.
	TextCodeSessionRequired = "SESSION_REQUIRED"
	// MsgSessionRequired is the message sent with TextCodeSessionRequired.
	MsgSessionRequired = "Sesi tidak valid, silakan login kembali"

	sessionUserKey = "account.session_user"
	bearerScheme   = "Bearer"
)

// ErrSessionRequired is returned for requests that carry no token, a token
// that does not verify, or a token for a user who no longer holds the
// session.
var ErrSessionRequired = goerrors.New(MsgSessionRequired, goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionRequired)

// ActionLinks completes the flows started by emailed links.
type ActionLinks interface {
	VerifyEmail(ctx context.Context, token string) (*account.User, error)
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

// SessionTokens issues and checks the bearer tokens handed out on sign in.
type SessionTokens interface {
	IssueSession(userID string) (string, error)
	ParseSession(token string) (string, error)
}

// Handler serves the auth and directory routes.
type Handler struct {
	service     *account.Service
	directory   *account.DirectoryController
	sessions    SessionTokens
	links       ActionLinks
	logger      account.Logger
	loadTimeout time.Duration
}

// Option customizes a Handler.
type Option func(*Handler)

// WithActionLinks enables the verify email and password reset
// confirmation routes.
func WithActionLinks(links ActionLinks) Option {
	return func(h *Handler) {
		h.links = links
	}
}

func WithLogger(l account.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithLoadTimeout bounds how long /users waits for the first snapshot.
func WithLoadTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.loadTimeout = d
		}
	}
}

// New creates a Handler. directory is the long lived directory controller
// shared by every /users request.
func New(service *account.Service, directory *account.DirectoryController, sessions SessionTokens, opts ...Option) *Handler {
	h := &Handler{
		service:     service,
		directory:   directory,
		sessions:    sessions,
		logger:      account.DefaultLogger(),
		loadTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// RegisterRoutes mounts the handler routes on app.
func RegisterRoutes[T any](app router.Router[T], h *Handler) {
	auth := app.Group("/auth")
	auth.Post("/sign-in", h.SignIn)
	auth.Post("/sign-up", h.SignUp)
	auth.Post("/password-reset", h.PasswordReset)
	auth.Post("/reload", h.Reload, h.RequireSession)
	auth.Post("/sign-out", h.SignOut, h.RequireSession)
	auth.Get("/me", h.Me, h.RequireSession)

	if h.links != nil {
		auth.Get("/verify-email", h.VerifyEmail)
		auth.Post("/password-reset/confirm", h.ConfirmPasswordReset)
	}

	app.Get("/users", h.ListUsers, h.RequireSession)
	app.Get("/users/:id", h.GetUser, h.RequireSession)
}

// RequireSession rejects requests whose bearer token does not belong to the
// user currently holding the process session.
func (h *Handler) RequireSession(next router.HandlerFunc) router.HandlerFunc {
	return func(c router.Context) error {
		user, err := h.authenticate(c)
		if err != nil {
			return writeError(c, err, "")
		}
		c.Locals(sessionUserKey, user)
		return next(c)
	}
}

func (h *Handler) authenticate(c router.Context) (*account.User, error) {
	token := bearerToken(c.Header(fiber.HeaderAuthorization))
	if token == "" {
		return nil, ErrSessionRequired
	}

	subject, err := h.sessions.ParseSession(token)
	if err != nil {
		h.logger.Debug("session token rejected", "error", err)
		return nil, ErrSessionRequired
	}

	current := h.service.Identity().GetCurrentUser(c.Context())
	if current == nil || current.ID != subject {
		return nil, ErrSessionRequired
	}
	return current, nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	l := len(bearerScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], bearerScheme) && header[l] == ' ' {
		return strings.TrimSpace(header[l:])
	}
	return ""
}

type credentialsPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPayload struct {
	Email string `json:"email"`
}

type confirmResetPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (p confirmResetPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// SessionBody is returned by sign in and sign up.
type SessionBody struct {
	User  *account.User `json:"user"`
	Token string        `json:"token"`
}

func (h *Handler) startSession(c router.Context, status int, res account.Result[*account.User]) error {
	if res.IsError() {
		return respond(c, res)
	}

	token, err := h.sessions.IssueSession(res.Value.ID)
	if err != nil {
		h.logger.Error("session token issue failed", "user_id", res.Value.ID, "error", err)
		return writeError(c, err, account.MsgSignInFallback)
	}
	return c.JSON(status, envelope{Data: SessionBody{User: res.Value, Token: token}})
}

func (h *Handler) SignIn(c router.Context) error {
	var payload credentialsPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, err)
	}
	return h.startSession(c, fiber.StatusOK, h.service.SignIn(c.Context(), payload.Email, payload.Password))
}

func (h *Handler) SignUp(c router.Context) error {
	var payload credentialsPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, err)
	}
	res := h.service.SignUp(c.Context(), payload.Name, payload.Email, payload.Password)
	return h.startSession(c, fiber.StatusCreated, res)
}

func (h *Handler) PasswordReset(c router.Context) error {
	var payload resetPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, err)
	}

	res := h.service.SendPasswordReset(c.Context(), payload.Email)
	if res.IsSuccess() {
		return c.NoContent(fiber.StatusAccepted)
	}
	return respond(c, res)
}

func (h *Handler) ConfirmPasswordReset(c router.Context) error {
	var payload confirmResetPayload
	if err := c.Bind(&payload); err != nil {
		return badRequest(c, err)
	}
	if err := payload.Validate(); err != nil {
		return badRequest(c, err)
	}

	if err := h.links.ConfirmPasswordReset(c.Context(), payload.Token, payload.Password); err != nil {
		h.logger.Error("password reset confirmation failed", "error", err)
		return writeError(c, err, "")
	}
	return c.NoContent(fiber.StatusNoContent)
}

func (h *Handler) VerifyEmail(c router.Context) error {
	token := c.Query("token", "")
	if token == "" {
		return badRequest(c, goerrors.New("token is required", goerrors.CategoryValidation))
	}

	user, err := h.links.VerifyEmail(c.Context(), token)
	if err != nil {
		return writeError(c, err, "")
	}

	// keep the directory in step with the verified flag
	if res := h.service.UpdateProfile(c.Context(), *user); res.IsError() {
		h.logger.Error("profile sync after verification failed", "user_id", user.ID, "error", res.Err)
	}
	return c.JSON(fiber.StatusOK, envelope{Data: user})
}

func (h *Handler) Reload(c router.Context) error {
	return respond(c, h.service.ReloadSession(c.Context()))
}

func (h *Handler) SignOut(c router.Context) error {
	if err := h.service.SignOut(c.Context()); err != nil {
		return writeError(c, err, "")
	}
	return c.NoContent(fiber.StatusNoContent)
}

func (h *Handler) Me(c router.Context) error {
	user := h.service.GetCurrentUser(c.Context())
	if user == nil {
		return c.JSON(fiber.StatusUnauthorized, envelope{Error: &ErrorBody{
			Message:  account.MsgReloadEmpty,
			TextCode: TextCodeSessionRequired,
		}})
	}
	return c.JSON(fiber.StatusOK, envelope{Data: user})
}

type listMeta struct {
	Total  int                        `json:"total"`
	Count  int                        `json:"count"`
	Filter account.VerificationFilter `json:"filter"`
	Query  string                     `json:"query,omitempty"`
	Closed bool                       `json:"closed"`
}

// ListUsers filters the latest directory snapshot. Filtering is per
// request, the shared controller state is only read.
func (h *Handler) ListUsers(c router.Context) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.loadTimeout)
	defer cancel()

	state, err := h.directory.AwaitLoaded(ctx)
	if err != nil {
		return c.JSON(fiber.StatusGatewayTimeout, envelope{Error: &ErrorBody{
			Message: account.MsgDirectoryFallback,
		}})
	}

	if state.Error != "" && len(state.AllUsers) == 0 {
		return c.JSON(fiber.StatusBadGateway, envelope{Error: &ErrorBody{
			Message:  state.Error,
			TextCode: account.TextCodeProviderFailed,
		}})
	}

	query := c.Query("q", "")
	filter := account.ParseVerificationFilter(c.Query("filter", ""))
	users := account.FilterUsers(state.AllUsers, filter, query)

	return c.JSON(fiber.StatusOK, envelope{
		Data: users,
		Meta: listMeta{
			Total:  len(state.AllUsers),
			Count:  len(users),
			Filter: filter,
			Query:  query,
			Closed: state.Closed,
		},
	})
}

func (h *Handler) GetUser(c router.Context) error {
	return respond(c, h.service.GetUser(c.Context(), c.Param("id", "")))
}
