package account

import "context"

// DirectoryState is the directory slot. FilteredUsers is derived from
// AllUsers, Filter and Query and is recomputed in full on every change of
// any of them.
type DirectoryState struct {
	AllUsers      []User
	FilteredUsers []User
	Query         string
	Filter        VerificationFilter
	Loading       bool
	Error         string
	// Closed is set once the directory stream ended.
	Closed bool
}

func (s DirectoryState) recompute() DirectoryState {
	s.FilteredUsers = FilterUsers(s.AllUsers, s.Filter, s.Query)
	return s
}

// DirectoryController holds the live directory subscription for its
// lifetime. The subscription is acquired in NewDirectoryController and
// released by Close.
type DirectoryController struct {
	service *Service
	session *SessionController
	slot    *StateSlot[DirectoryState]
	logger  Logger
	scope   *scope
}

// DirectoryControllerOption customizes a DirectoryController.
type DirectoryControllerOption func(*DirectoryController)

// WithDirectorySession routes Refresh into the given session controller.
func WithDirectorySession(session *SessionController) DirectoryControllerOption {
	return func(c *DirectoryController) {
		c.session = session
	}
}

// WithDirectoryLogger sets the controller logger.
func WithDirectoryLogger(l Logger) DirectoryControllerOption {
	return func(c *DirectoryController) {
		c.logger = normalizeLogger(l)
	}
}

// NewDirectoryController subscribes to the directory.
func NewDirectoryController(ctx context.Context, service *Service, opts ...DirectoryControllerOption) *DirectoryController {
	c := &DirectoryController{
		service: service,
		slot:    NewStateSlot(DirectoryState{Filter: FilterAll, Loading: true}),
		logger:  defLogger{},
		scope:   newScope(ctx),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	results := c.service.GetAllUsers(c.scope.ctx)
	c.scope.launch(func(ctx context.Context) {
		defer c.slot.Update(func(s DirectoryState) DirectoryState {
			s.Loading = false
			s.Closed = true
			return s
		})

		for res := range results {
			c.apply(res)
		}
	})

	return c
}

func (c *DirectoryController) apply(res Result[[]User]) {
	c.slot.Update(func(s DirectoryState) DirectoryState {
		s.Loading = false
		switch res.Status {
		case StatusSuccess:
			s.AllUsers = res.Value
			if s.AllUsers == nil {
				s.AllUsers = []User{}
			}
			s.Error = ""
			return s.recompute()
		case StatusError:
			c.logger.Error("directory stream failed", "error", res.Err)
			s.Error = res.Message
		}
		return s
	})
}

// State returns the current directory state.
func (c *DirectoryController) State() DirectoryState {
	return c.slot.Get()
}

// Watch follows directory state changes.
func (c *DirectoryController) Watch() (<-chan DirectoryState, func()) {
	return c.slot.Watch()
}

// AwaitLoaded blocks until the first snapshot or error arrived, or ctx is
// done.
func (c *DirectoryController) AwaitLoaded(ctx context.Context) (DirectoryState, error) {
	states, stop := c.Watch()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return c.State(), ctx.Err()
		case s, ok := <-states:
			if !ok {
				return c.State(), nil
			}
			if !s.Loading {
				return s, nil
			}
		}
	}
}

// SetQuery updates the search text and recomputes the visible list.
func (c *DirectoryController) SetQuery(query string) {
	c.slot.Update(func(s DirectoryState) DirectoryState {
		s.Query = query
		return s.recompute()
	})
}

// SetFilter updates the verification filter and recomputes the visible
// list.
func (c *DirectoryController) SetFilter(filter VerificationFilter) {
	c.slot.Update(func(s DirectoryState) DirectoryState {
		s.Filter = filter
		return s.recompute()
	})
}

// Refresh reloads the session user. It does not touch the directory
// subscription.
func (c *DirectoryController) Refresh() {
	if c.session != nil {
		c.session.Refresh()
		return
	}

	c.scope.launch(func(ctx context.Context) {
		if res := c.service.ReloadSession(ctx); res.IsError() {
			c.slot.Update(func(s DirectoryState) DirectoryState {
				s.Error = res.Message
				return s
			})
		}
	})
}

// ClearError dismisses the current error.
func (c *DirectoryController) ClearError() {
	c.slot.Update(func(s DirectoryState) DirectoryState {
		s.Error = ""
		return s
	})
}

// Wait blocks until the tasks started by the controller returned. The
// subscription task only returns once the stream ended or Close was
// called.
func (c *DirectoryController) Wait() {
	c.scope.wait()
}

// Close cancels the subscription and waits for the controller tasks.
func (c *DirectoryController) Close() {
	c.scope.close()
}
