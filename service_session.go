package account

import "context"

// SendPasswordReset validates email and asks the provider to send a reset
// link. Provider messages are passed through verbatim.
func (s *Service) SendPasswordReset(ctx context.Context, email string) Result[struct{}] {
	if isBlank(email) {
		return Failure[struct{}](ValidationError(MsgEmailRequired))
	}

	if !IsValidEmail(email) {
		return Failure[struct{}](ValidationError(MsgEmailFormat))
	}

	if err := s.identity.SendPasswordReset(ctx, email); err != nil {
		return Failure[struct{}](IdentityError(err, MsgPasswordResetFailed))
	}

	s.record(ctx, ActivityEventPasswordResetRequested, "", map[string]any{"email": email})

	return Success(struct{}{})
}

// ReloadSession refreshes the session user from the provider and mirrors it
// into the directory. The directory write does not affect the result.
func (s *Service) ReloadSession(ctx context.Context) Result[*User] {
	user, err := s.identity.ReloadSession(ctx)
	if err != nil {
		return Failure[*User](IdentityError(err, MsgReloadFallback))
	}

	if user == nil {
		return Failure[*User](InconsistentStateError(MsgReloadEmpty))
	}

	s.syncProfile(ctx, user, "reload_session")

	return Success(user)
}

// GetCurrentUser prefers a fresh reload and falls back to the provider's
// cached session user when the reload does not succeed. It never fails;
// the returned user may be nil.
func (s *Service) GetCurrentUser(ctx context.Context) *User {
	if res := s.ReloadSession(ctx); res.IsSuccess() {
		return res.Value
	}
	return s.identity.GetCurrentUser(ctx)
}

// SignOut ends the provider session. Directory data is left untouched.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.identity.SignOut(ctx); err != nil {
		return IdentityError(err, MsgSignOutFailed)
	}

	s.record(ctx, ActivityEventSignOut, "", nil)
	return nil
}

// HasSession reports whether the provider holds a session user. It only
// reads the provider cache.
func (s *Service) HasSession(ctx context.Context) bool {
	return s.identity.GetCurrentUser(ctx) != nil
}

// ObserveSession forwards the provider session stream.
func (s *Service) ObserveSession(ctx context.Context) <-chan *User {
	return s.identity.ObserveSession(ctx)
}
