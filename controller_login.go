package account

import "context"

// LoginState backs the sign in form.
type LoginState struct {
	Email    string
	Password string
	Loading  bool
	Success  bool
	User     *User
	Error    string
}

// LoginController drives the sign in form.
type LoginController struct {
	service *Service
	slot    *StateSlot[LoginState]
	scope   *scope
}

// NewLoginController creates a sign in form controller.
func NewLoginController(ctx context.Context, service *Service) *LoginController {
	return &LoginController{
		service: service,
		slot:    NewStateSlot(LoginState{}),
		scope:   newScope(ctx),
	}
}

func (c *LoginController) State() LoginState { return c.slot.Get() }

func (c *LoginController) Watch() (<-chan LoginState, func()) { return c.slot.Watch() }

// SetEmail stores the email and clears any shown error.
func (c *LoginController) SetEmail(email string) {
	c.slot.Update(func(s LoginState) LoginState {
		s.Email = email
		s.Error = ""
		return s
	})
}

// SetPassword stores the password and clears any shown error.
func (c *LoginController) SetPassword(password string) {
	c.slot.Update(func(s LoginState) LoginState {
		s.Password = password
		s.Error = ""
		return s
	})
}

// Submit runs SignIn with the current field values.
func (c *LoginController) Submit() {
	current := c.slot.Update(func(s LoginState) LoginState {
		s.Loading = true
		s.Error = ""
		return s
	})

	c.scope.launch(func(ctx context.Context) {
		res := c.service.SignIn(ctx, current.Email, current.Password)
		c.slot.Update(func(s LoginState) LoginState {
			s.Loading = false
			switch res.Status {
			case StatusSuccess:
				s.Success = true
				s.User = res.Value
				s.Error = ""
			case StatusError:
				s.Error = res.Message
			}
			return s
		})
	})
}

func (c *LoginController) ClearError() {
	c.slot.Update(func(s LoginState) LoginState {
		s.Error = ""
		return s
	})
}

func (c *LoginController) Wait() { c.scope.wait() }

func (c *LoginController) Close() { c.scope.close() }
