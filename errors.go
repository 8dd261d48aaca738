package identity

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeDuplicateCredential tags registration conflicts
	TextCodeDuplicateCredential = "DUPLICATE_CREDENTIAL"
	// TextCodeInvalidCreds tags failed password comparisons
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeAccountNotFound tags lookups with no matching account
	TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	// TextCodeTokenNotFound tags unknown or already consumed verification tokens
	TextCodeTokenNotFound = "TOKEN_NOT_FOUND"
	// TextCodeTokenExpired tags verification tokens past their expiry
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodePersistenceFailure tags repository writes that did not commit
	TextCodePersistenceFailure = "PERSISTENCE_FAILURE"
	// TextCodeDeliveryFailure tags verification messages that could not be sent
	TextCodeDeliveryFailure = "DELIVERY_FAILURE"
	// TextCodeNotAuthenticated tags session checks without a prior login
	TextCodeNotAuthenticated = "NOT_AUTHENTICATED"
	// TextCodeEmptyPassword tags empty password input
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
)

// ErrDuplicateCredential is returned when a registration reuses a username or email.
var ErrDuplicateCredential = goerrors.New("email or username already in use", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateCredential).
	WithCode(goerrors.CodeConflict)

// ErrMismatchedHashAndPassword is returned when a login password does not match the stored hash.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotFound is returned when no account matches the given email.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTokenNotFound is returned when a verification token is unknown or already consumed.
var ErrTokenNotFound = goerrors.New("verification token not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTokenExpired is returned when a verification token is past its expiry.
var ErrTokenExpired = goerrors.New("verification token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrPersistenceFailure is returned when the repository fails to commit an insert or update.
var ErrPersistenceFailure = goerrors.New("could not persist account", goerrors.CategoryInternal).
	WithTextCode(TextCodePersistenceFailure).
	WithCode(goerrors.CodeInternal)

// ErrDeliveryFailure is returned when the verification message could not be
// delivered. The registration that triggered the delivery stays committed.
var ErrDeliveryFailure = goerrors.New("could not deliver verification message", goerrors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailure).
	WithCode(goerrors.CodeInternal)

// ErrNotAuthenticated is returned by session checks when no login happened.
var ErrNotAuthenticated = goerrors.New("session is not authenticated", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// IsDuplicateCredential will check for registration conflicts
func IsDuplicateCredential(err error) bool {
	return hasTextCode(err, TextCodeDuplicateCredential)
}

// IsTokenExpired will check for expired verification tokens
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenNotFound will check for unknown or consumed tokens
func IsTokenNotFound(err error) bool {
	return hasTextCode(err, TextCodeTokenNotFound)
}

// IsDeliveryFailure will check for failed verification deliveries
func IsDeliveryFailure(err error) bool {
	return hasTextCode(err, TextCodeDeliveryFailure)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}

	return false
}
