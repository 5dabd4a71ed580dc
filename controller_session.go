package account

import "context"

// SessionState is the session slot consumed by navigation and the home
// screen.
type SessionState struct {
	CurrentUser *User
	Refreshing  bool
	SignedOut   bool
	Error       string
}

// SessionSource names the writer publishing a user into the session slot.
type SessionSource string

const (
	SourceCurrentUser SessionSource = "current_user"
	SourceReload      SessionSource = "reload"
	SourceObserver    SessionSource = "observer"
	SourceRefresh     SessionSource = "refresh"
	SourceSignOut     SessionSource = "sign_out"
)

// SessionTransition computes the next session state when a writer
// publishes user. Swap it to change how concurrent writers are sequenced.
type SessionTransition func(current SessionState, source SessionSource, user *User) SessionState

// LastWriteWins is the default transition: the latest write replaces the
// user regardless of which writer produced it.
func LastWriteWins(current SessionState, _ SessionSource, user *User) SessionState {
	current.CurrentUser = user
	return current
}

// SessionController drives the session slot. On start it loads the current
// user and reloads the session concurrently; both write into the same slot
// through the transition, so the later one wins.
type SessionController struct {
	service    *Service
	slot       *StateSlot[SessionState]
	transition SessionTransition
	observe    bool
	logger     Logger
	scope      *scope
}

// SessionControllerOption customizes a SessionController.
type SessionControllerOption func(*SessionController)

// WithSessionTransition overrides LastWriteWins.
func WithSessionTransition(t SessionTransition) SessionControllerOption {
	return func(c *SessionController) {
		if t != nil {
			c.transition = t
		}
	}
}

// WithSessionObserver also follows the provider session stream.
func WithSessionObserver() SessionControllerOption {
	return func(c *SessionController) {
		c.observe = true
	}
}

// WithSessionLogger sets the controller logger.
func WithSessionLogger(l Logger) SessionControllerOption {
	return func(c *SessionController) {
		c.logger = normalizeLogger(l)
	}
}

// NewSessionController creates the controller and starts its
// initialization tasks. Call Close to release them.
func NewSessionController(ctx context.Context, service *Service, opts ...SessionControllerOption) *SessionController {
	c := &SessionController{
		service:    service,
		slot:       NewStateSlot(SessionState{}),
		transition: LastWriteWins,
		logger:     defLogger{},
		scope:      newScope(ctx),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.scope.launch(func(ctx context.Context) {
		c.publish(SourceCurrentUser, c.service.GetCurrentUser(ctx))
	})

	c.scope.launch(func(ctx context.Context) {
		if res := c.service.ReloadSession(ctx); res.IsSuccess() {
			c.publish(SourceReload, res.Value)
		}
	})

	if c.observe {
		c.scope.launch(func(ctx context.Context) {
			for user := range c.service.ObserveSession(ctx) {
				c.publish(SourceObserver, user)
			}
		})
	}

	return c
}

// publish is the only path through which a user reaches the slot.
func (c *SessionController) publish(source SessionSource, user *User) {
	c.slot.Update(func(s SessionState) SessionState {
		return c.transition(s, source, user)
	})
}

// State returns the current session state.
func (c *SessionController) State() SessionState {
	return c.slot.Get()
}

// Watch follows session state changes.
func (c *SessionController) Watch() (<-chan SessionState, func()) {
	return c.slot.Watch()
}

// Refresh reloads the session and publishes the outcome.
func (c *SessionController) Refresh() {
	c.slot.Update(func(s SessionState) SessionState {
		s.Refreshing = true
		return s
	})

	c.scope.launch(func(ctx context.Context) {
		res := c.service.ReloadSession(ctx)
		c.slot.Update(func(s SessionState) SessionState {
			s.Refreshing = false
			if res.IsSuccess() {
				return c.transition(s, SourceRefresh, res.Value)
			}
			s.Error = res.Message
			return s
		})
	})
}

// SignOut ends the session. Navigation is expected to move away once
// SignedOut is set.
func (c *SessionController) SignOut() {
	c.scope.launch(func(ctx context.Context) {
		err := c.service.SignOut(ctx)
		c.slot.Update(func(s SessionState) SessionState {
			if err != nil {
				c.logger.Error("sign out failed", "error", err)
				s.Error = messageOf(err)
				return s
			}
			s.SignedOut = true
			return c.transition(s, SourceSignOut, nil)
		})
	})
}

// ClearError dismisses the current error.
func (c *SessionController) ClearError() {
	c.slot.Update(func(s SessionState) SessionState {
		s.Error = ""
		return s
	})
}

// Wait blocks until all in-flight tasks finished. With the session
// observer enabled it only returns after Close.
func (c *SessionController) Wait() {
	c.scope.wait()
}

// Close cancels the controller tasks and waits for them.
func (c *SessionController) Close() {
	c.scope.close()
}
