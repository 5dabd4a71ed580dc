package account

import "context"

// ForgotPasswordState backs the password reset request form.
type ForgotPasswordState struct {
	Email   string
	Loading bool
	Success bool
	Error   string
}

// ForgotPasswordController drives the password reset request form.
type ForgotPasswordController struct {
	service *Service
	slot    *StateSlot[ForgotPasswordState]
	scope   *scope
}

func NewForgotPasswordController(ctx context.Context, service *Service) *ForgotPasswordController {
	return &ForgotPasswordController{
		service: service,
		slot:    NewStateSlot(ForgotPasswordState{}),
		scope:   newScope(ctx),
	}
}

func (c *ForgotPasswordController) State() ForgotPasswordState { return c.slot.Get() }

func (c *ForgotPasswordController) SetEmail(email string) {
	c.slot.Update(func(s ForgotPasswordState) ForgotPasswordState {
		s.Email = email
		s.Error = ""
		return s
	})
}

// Submit requests the reset email for the current address.
func (c *ForgotPasswordController) Submit() {
	current := c.slot.Update(func(s ForgotPasswordState) ForgotPasswordState {
		s.Loading = true
		s.Error = ""
		return s
	})

	c.scope.launch(func(ctx context.Context) {
		res := c.service.SendPasswordReset(ctx, current.Email)
		c.slot.Update(func(s ForgotPasswordState) ForgotPasswordState {
			s.Loading = false
			switch res.Status {
			case StatusSuccess:
				s.Success = true
				s.Error = ""
			case StatusError:
				s.Error = res.Message
			}
			return s
		})
	})
}

func (c *ForgotPasswordController) ClearError() {
	c.slot.Update(func(s ForgotPasswordState) ForgotPasswordState {
		s.Error = ""
		return s
	})
}

// ResetSuccess re-arms the form after the success notice was shown.
func (c *ForgotPasswordController) ResetSuccess() {
	c.slot.Update(func(s ForgotPasswordState) ForgotPasswordState {
		s.Success = false
		return s
	})
}

func (c *ForgotPasswordController) Wait() { c.scope.wait() }

func (c *ForgotPasswordController) Close() { c.scope.close() }
