package account

import "context"

// SignUp validates the form, creates the identity account, stores the
// profile and then asks the provider to send a verification email.
//
// When the profile store rejects the record the identity account already
// exists upstream. The result is an error and no compensation is made; the
// profile is written again on the next sign in or session reload.
//
// The verification email is fire-and-forget: its failure is logged and the
// result is still Success.
func (s *Service) SignUp(ctx context.Context, name, email, password string) Result[*User] {
	if isBlank(name) || isBlank(email) || isBlank(password) {
		return Failure[*User](ValidationError(MsgAllFieldsRequired))
	}

	if runeLen(name) < MinNameLength {
		return Failure[*User](ValidationError(MsgNameTooShort))
	}

	if !IsValidEmail(email) {
		return Failure[*User](ValidationError(MsgEmailFormat))
	}

	if runeLen(password) < MinPasswordLength {
		return Failure[*User](ValidationError(MsgSignUpPasswordShort))
	}

	user, err := s.identity.SignUp(ctx, name, email, password)
	if err != nil {
		return Failure[*User](IdentityError(err, MsgSignUpFallback))
	}

	if user == nil {
		return Failure[*User](InconsistentStateError(MsgSignUpProfileEmpty))
	}

	if err := s.directory.Upsert(ctx, *user); err != nil {
		s.logger.Error("sign up profile write failed", "user_id", user.ID, "error", err)
		s.record(ctx, ActivityEventSignUpProfileFailure, user.ID, map[string]any{"error": err.Error()})
		return Failure[*User](DirectoryError(nil, MsgSaveProfileFailed))
	}

	if err := s.identity.SendEmailVerification(ctx); err != nil {
		s.logger.Error("verification email failed", "user_id", user.ID, "error", err)
	}

	s.record(ctx, ActivityEventSignUpSuccess, user.ID, nil)

	return Success(user)
}
