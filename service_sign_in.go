package account

import "context"

// SignIn validates the credentials, authenticates against the identity
// provider and, on success, pushes the user into the directory on a best
// effort basis. Checks run in order and the first failure wins.
func (s *Service) SignIn(ctx context.Context, email, password string) Result[*User] {
	if isBlank(email) || isBlank(password) {
		return Failure[*User](ValidationError(MsgCredentialsRequired))
	}

	if !IsValidEmail(email) {
		return Failure[*User](ValidationError(MsgEmailFormat))
	}

	if runeLen(password) < MinPasswordLength {
		return Failure[*User](ValidationError(MsgSignInPasswordShort))
	}

	user, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		s.record(ctx, ActivityEventSignInFailure, "", map[string]any{"email": email})
		return Failure[*User](IdentityError(err, MsgSignInFallback))
	}

	if user == nil {
		s.record(ctx, ActivityEventSignInFailure, "", map[string]any{"email": email})
		return Failure[*User](InconsistentStateError(MsgSignInFailed))
	}

	s.syncProfile(ctx, user, "sign_in")
	s.record(ctx, ActivityEventSignInSuccess, user.ID, nil)

	return Success(user)
}
