package identity

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// User-facing notification texts. Operations surface outcomes through these
// plus a typed error, never through a propagated exception.
const (
	MsgCredentialInUse    = "The email or username is already in use."
	MsgRegistrationFailed = "Could not register the account, please try again."
	MsgVerificationSent   = "We sent a verification email to the address you provided, check it to activate your account."
	MsgWelcome            = "Welcome, %s."
	MsgNoAccountForEmail  = "No account found for this email."
	MsgIncorrectPassword  = "Incorrect password."
	MsgTokenInvalid       = "The verification token is invalid or has already been used."
	MsgTokenExpired       = "The verification token has expired."
	MsgAccountActivated   = "Your account has been activated. You can now log in."
	MsgActivationFailed   = "Could not activate the account. Please try again."
	MsgLoginRequired      = "You must log in to access this page."
	MsgDeliveryFailed     = "Could not send the verification email, please request a new one."
)

// Service orchestrates the identity lifecycle against injected capabilities.
type Service struct {
	repo     RepositoryManager
	hasher   PasswordAuthenticator
	tokens   TokenIssuer
	notifier Notifier
	logger   Logger
	sink     ActivitySink
	now      func() time.Time
}

var _ IdentityService = (*Service)(nil)

// NewService returns a Service wired with default capabilities: bcrypt
// hashing, crypto/rand hex tokens, and a no-op notifier. Swap them with the
// With builders.
func NewService(repo RepositoryManager) *Service {
	return &Service{
		repo:     repo,
		hasher:   BcryptAuthenticator{},
		tokens:   NewTokenIssuer(),
		notifier: noopNotifier{},
		logger:   defLogger{},
		sink:     noopActivitySink{},
		now:      time.Now,
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Service) WithNotifier(notifier Notifier) *Service {
	s.notifier = normalizeNotifier(notifier)
	return s
}

func (s *Service) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Service {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

func (s *Service) WithTokenIssuer(tokens TokenIssuer) *Service {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting identity events.
func (s *Service) WithActivitySink(sink ActivitySink) *Service {
	s.sink = normalizeActivitySink(sink)
	return s
}

// WithClock injects a custom clock (useful for tests). Keep it in sync with
// the clock the token issuer uses.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Register creates a pending account with a fresh verification token and
// asks the notifier to deliver it. Either credential already in use denies
// the registration. A delivery failure after the insert committed does NOT
// roll the account back: the call still reports success, with
// ErrDeliveryFailure for callers that care.
func (s *Service) Register(ctx context.Context, session *Session, email, username, password string) (bool, error) {
	session = ensureSession(session)

	payload := RegisterRequest{Email: email, Username: username, Password: password}
	if err := payload.Validate(); err != nil {
		session.SetNotification(SeverityError, err.Error())
		return false, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	_, err := s.repo.Accounts().GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		session.SetNotification(SeverityError, MsgCredentialInUse)
		s.emitEvent(ctx, ActivityEventRegistrationDenied, "", email, map[string]any{
			"username": username,
		})
		return false, ErrDuplicateCredential
	}

	if !repository.IsRecordNotFound(err) {
		s.logger.Error("Register uniqueness lookup failed: %v", err)
		session.SetNotification(SeverityError, MsgRegistrationFailed)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check credential availability")
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		s.logger.Error("Register password hashing failed: %v", err)
		session.SetNotification(SeverityError, MsgRegistrationFailed)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	token, expiresAt, err := s.tokens.Issue()
	if err != nil {
		s.logger.Error("Register token issuance failed: %v", err)
		session.SetNotification(SeverityError, MsgRegistrationFailed)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification token")
	}

	account := &Account{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		Token:          &token,
		TokenExpiresAt: &expiresAt,
		Status:         AccountStatusPending,
	}

	if account, err = s.repo.Accounts().RegisterPending(ctx, account); err != nil {
		s.logger.Error("Register insert failed: %v", err)
		session.SetNotification(SeverityError, MsgRegistrationFailed)
		return false, ErrPersistenceFailure.Clone().WithMetadata(map[string]any{
			"email": email,
		})
	}

	s.emitEvent(ctx, ActivityEventRegistered, account.ID.String(), email, map[string]any{
		"username": username,
	})

	if err := s.notifier.SendVerification(ctx, email, token); err != nil {
		s.logger.Error("Register verification delivery failed: %v", err)
		session.SetNotification(SeverityError, MsgDeliveryFailed)
		s.emitEvent(ctx, ActivityEventDeliveryFailure, account.ID.String(), email, map[string]any{
			"error": err.Error(),
		})
		// The account stays committed, the caller still sees a successful
		// registration. ErrDeliveryFailure carries the distinction.
		return true, ErrDeliveryFailure
	}

	session.SetNotification(SeveritySuccess, MsgVerificationSent)
	s.emitEvent(ctx, ActivityEventVerificationSent, account.ID.String(), email, nil)

	return true, nil
}

// Login authenticates the email/password pair. Pending accounts can log in,
// activation certifies mailbox ownership and is not a login gate.
func (s *Service) Login(ctx context.Context, session *Session, email, password string) (bool, error) {
	session = ensureSession(session)

	payload := LoginRequest{Identifier: email, Password: password}
	if err := payload.Validate(); err != nil {
		session.SetNotification(SeverityError, err.Error())
		return false, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	account, err := s.repo.Accounts().GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			session.SetNotification(SeverityError, MsgNoAccountForEmail)
			s.emitEvent(ctx, ActivityEventLoginFailure, "", email, map[string]any{
				"error": ErrAccountNotFound.Message,
			})
			return false, ErrAccountNotFound
		}

		s.logger.Error("Login account lookup failed: %v", err)
		session.SetNotification(SeverityError, MsgNoAccountForEmail)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during login")
	}

	if err := s.hasher.ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		// Authentication flags are left untouched, no partial mutation.
		session.SetNotification(SeverityError, MsgIncorrectPassword)
		s.emitEvent(ctx, ActivityEventLoginFailure, account.ID.String(), email, map[string]any{
			"error": ErrMismatchedHashAndPassword.Message,
		})
		return false, ErrMismatchedHashAndPassword
	}

	session.MarkAuthenticated(account.Username, account.Email)
	session.SetNotification(SeveritySuccess, fmt.Sprintf(MsgWelcome, account.Username))
	s.emitEvent(ctx, ActivityEventLoginSuccess, account.ID.String(), email, nil)

	return true, nil
}

// VerifyAccount consumes a verification token: within its validity window it
// clears the token pair and activates the account. The activation update is
// conditional on the token still being stored, so a concurrent verify of the
// same token can only succeed once.
func (s *Service) VerifyAccount(ctx context.Context, session *Session, token string) (bool, error) {
	session = ensureSession(session)

	account, err := s.repo.Accounts().GetByToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			session.SetNotification(SeverityError, MsgTokenInvalid)
			s.emitEvent(ctx, ActivityEventVerificationFailed, "", "", map[string]any{
				"error": ErrTokenNotFound.Message,
			})
			return false, ErrTokenNotFound
		}

		s.logger.Error("VerifyAccount token lookup failed: %v", err)
		session.SetNotification(SeverityError, MsgActivationFailed)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up verification token")
	}

	if account.TokenExpired(s.now()) {
		// The expired token stays stored until a fresh registration
		// overwrites it, matching upstream behavior.
		session.SetNotification(SeverityError, MsgTokenExpired)
		s.emitEvent(ctx, ActivityEventVerificationFailed, account.ID.String(), account.Email, map[string]any{
			"error": ErrTokenExpired.Message,
		})
		return false, ErrTokenExpired
	}

	if err := s.repo.Accounts().Activate(ctx, account.ID, token); err != nil {
		if repository.IsRecordNotFound(err) {
			// Lost the race against another verify, the token is gone.
			session.SetNotification(SeverityError, MsgTokenInvalid)
			return false, ErrTokenNotFound
		}

		s.logger.Error("VerifyAccount activation failed: %v", err)
		session.SetNotification(SeverityError, MsgActivationFailed)
		return false, ErrPersistenceFailure.Clone().WithMetadata(map[string]any{
			"id": account.ID.String(),
		})
	}

	session.SetNotification(SeveritySuccess, MsgAccountActivated)
	s.emitEvent(ctx, ActivityEventAccountActivated, account.ID.String(), account.Email, nil)

	return true, nil
}

// CheckSession gates access to authenticated surfaces. It has no side effect
// on success; on failure it leaves a notification asking the caller to log
// in. Redirecting is the host's business.
func (s *Service) CheckSession(session *Session) bool {
	session = ensureSession(session)

	if session.IsLoggedIn() {
		return true
	}

	session.SetNotification(SeverityError, MsgLoginRequired)
	return false
}

// Logout clears the authentication keys from the session.
func (s *Service) Logout(session *Session) {
	ensureSession(session).ClearAuthentication()
}

func (s *Service) emitEvent(ctx context.Context, eventType ActivityEventType, accountID, email string, metadata map[string]any) {
	sink := normalizeActivitySink(s.sink)
	event := ActivityEvent{
		EventType: eventType,
		AccountID: accountID,
		Email:     email,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func ensureSession(session *Session) *Session {
	if session == nil {
		return NewSession(nil)
	}
	return session
}
