// Package account provides the orchestration layer of a user directory
// application: sign up, sign in, password reset, session reload and a live,
// filterable list of users.
//
// Ports:
//   - IdentityPort is the identity provider. It authenticates credentials,
//     owns the session user and sends verification and reset emails. The
//     identity package ships a local implementation.
//   - DirectoryPort is the profile store holding one denormalized record per
//     user. The store package ships a SQL implementation.
//
// Use cases:
//   - Service validates input before any I/O, calls the ports and returns a
//     Result. Nothing is retried and nothing panics past the Service.
//   - Side effects such as mirroring the session user into the directory or
//     sending the verification email are best-effort; failures are logged.
//
// State controllers:
//   - SessionController, DirectoryController and the form controllers keep a
//     single StateSlot each, updated only through atomic transitions.
//     Actions never block the caller. Close releases every task a controller
//     started, including the directory subscription.
package account
