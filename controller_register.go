package account

import "context"

// RegisterState backs the sign up form. The validation slices hold one
// entry per rule so the form can show progress rule by rule.
type RegisterState struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string

	NameValidations            []FieldValidation
	EmailValidations           []FieldValidation
	PasswordValidations        []FieldValidation
	ConfirmPasswordValidations []FieldValidation

	FormValid bool
	Loading   bool
	Success   bool
	User      *User
	Error     string
}

func (s RegisterState) withFormValidity() RegisterState {
	s.FormValid = FormValid(
		s.NameValidations,
		s.EmailValidations,
		s.PasswordValidations,
		s.ConfirmPasswordValidations,
	)
	return s
}

// RegisterController drives the sign up form. Every field edit recomputes
// that field's rules and the form validity.
type RegisterController struct {
	service   *Service
	validator Validator
	slot      *StateSlot[RegisterState]
	scope     *scope
}

// NewRegisterController creates a sign up form controller.
func NewRegisterController(ctx context.Context, service *Service) *RegisterController {
	return &RegisterController{
		service: service,
		slot:    NewStateSlot(RegisterState{}),
		scope:   newScope(ctx),
	}
}

func (c *RegisterController) State() RegisterState { return c.slot.Get() }

func (c *RegisterController) Watch() (<-chan RegisterState, func()) { return c.slot.Watch() }

func (c *RegisterController) SetName(name string) {
	c.slot.Update(func(s RegisterState) RegisterState {
		s.Name = name
		s.Error = ""
		s.NameValidations = c.validator.NameRules(name)
		return s.withFormValidity()
	})
}

func (c *RegisterController) SetEmail(email string) {
	c.slot.Update(func(s RegisterState) RegisterState {
		s.Email = email
		s.Error = ""
		s.EmailValidations = c.validator.EmailRules(email)
		return s.withFormValidity()
	})
}

// SetPassword also re-checks the confirmation against the new password
// once a confirmation was typed.
func (c *RegisterController) SetPassword(password string) {
	c.slot.Update(func(s RegisterState) RegisterState {
		s.Password = password
		s.Error = ""
		s.PasswordValidations = c.validator.PasswordRules(password)
		if s.ConfirmPassword != "" {
			s.ConfirmPasswordValidations = c.validator.ConfirmPasswordRules(password, s.ConfirmPassword)
		}
		return s.withFormValidity()
	})
}

func (c *RegisterController) SetConfirmPassword(confirm string) {
	c.slot.Update(func(s RegisterState) RegisterState {
		s.ConfirmPassword = confirm
		s.Error = ""
		s.ConfirmPasswordValidations = c.validator.ConfirmPasswordRules(s.Password, confirm)
		return s.withFormValidity()
	})
}

// Submit runs SignUp when the form is valid. An invalid form only sets
// the error.
func (c *RegisterController) Submit() {
	var valid bool
	current := c.slot.Update(func(s RegisterState) RegisterState {
		valid = s.FormValid
		if !valid {
			s.Error = MsgFormInvalid
			return s
		}
		s.Loading = true
		s.Error = ""
		return s
	})

	if !valid {
		return
	}

	c.scope.launch(func(ctx context.Context) {
		res := c.service.SignUp(ctx, current.Name, current.Email, current.Password)
		c.slot.Update(func(s RegisterState) RegisterState {
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

func (c *RegisterController) ClearError() {
	c.slot.Update(func(s RegisterState) RegisterState {
		s.Error = ""
		return s
	})
}

func (c *RegisterController) Wait() { c.scope.wait() }

func (c *RegisterController) Close() { c.scope.close() }
