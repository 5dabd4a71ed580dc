package account

import "context"

// Route is a top level screen.
type Route string

const (
	RouteLogin          Route = "login"
	RouteRegister       Route = "register"
	RouteForgotPassword Route = "forgot_password"
	RouteHome           Route = "home"
)

// StartRoute decides the initial screen once at startup: home when the
// provider already holds a session user, login otherwise.
func (s *Service) StartRoute(ctx context.Context) Route {
	if s.HasSession(ctx) {
		return RouteHome
	}
	return RouteLogin
}
