// Package identity provides the account identity lifecycle: registration with
// uniqueness enforcement, password login, and time-bounded email verification
// tokens that gate account activation.
//
// Account lifecycle:
//   - Accounts are created pending with a fresh verification token and a 24h
//     expiry. A successful verification clears the token and marks the account
//     active; the transition never runs in reverse.
//   - Pending accounts can still authenticate. Activation only certifies
//     mailbox ownership, it is not a login gate.
//
// Sessions:
//   - Service operations report their outcome through a one-shot notification
//     record written to a Session, a typed key/value facade over whatever
//     per-request store the host application uses. Notifications are consumed
//     exactly once via TakeNotification.
//   - The Session is passed explicitly into every operation; nothing in this
//     package reaches for global state.
//
// Collaborators:
//   - Accounts (persistence), Notifier (verification delivery), TokenIssuer
//     and PasswordAuthenticator are capability interfaces, injected so hosts
//     can swap stores and transports and tests can run against fakes.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing registration,
//     login, and activation outcomes. Sinks run best-effort (errors are
//     logged) so you can forward to a database or queue without blocking
//     authentication.
package identity
