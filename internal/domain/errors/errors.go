package errors

import (
	"net/http"

	"etwin/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError carrying the same error code, so copies made by
// WithDetails still compare equal to the predefined value.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == other.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Authorization
	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"the current auth context is not allowed to perform this action",
		"",
	)
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"authentication is required",
		"",
	)

	// Uniqueness conflicts
	ErrEmailAlreadyInUse = NewBaseError(
		http.StatusConflict,
		"EMAIL_ALREADY_IN_USE",
		"the email address is already used by another account",
		"",
	)
	ErrUsernameAlreadyInUse = NewBaseError(
		http.StatusConflict,
		"USERNAME_ALREADY_IN_USE",
		"the username is already used by another account",
		"",
	)
	ErrRemoteAccountAlreadyLinked = NewBaseError(
		http.StatusConflict,
		"REMOTE_ACCOUNT_ALREADY_IN_USE",
		"the remote account is already linked to another user",
		"",
	)
	ErrOauthClientKeyInUse = NewBaseError(
		http.StatusConflict,
		"OAUTH_CLIENT_KEY_IN_USE",
		"the oauth client key is already in use",
		"",
	)
	ErrUserAlreadyLinked = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_LINKED",
		"the user is already linked to another account on this server",
		"",
	)

	// Missing entities
	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"user not found",
		"",
	)
	ErrLinkNotFound = NewBaseError(
		http.StatusNotFound,
		"LINK_NOT_FOUND",
		"no current link matches this user and remote account",
		"",
	)
	ErrOauthClientNotFound = NewBaseError(
		http.StatusNotFound,
		"OAUTH_CLIENT_NOT_FOUND",
		"oauth client not found",
		"",
	)

	// Credential mismatches
	ErrInvalidPassword = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_PASSWORD",
		"invalid password",
		"",
	)
	ErrNoPassword = NewBaseError(
		http.StatusUnauthorized,
		"NO_PASSWORD",
		"password authentication is not available for this user",
		"",
	)
	ErrInvalidSecret = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_SECRET",
		"invalid client secret",
		"",
	)
	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"the token signature or expiration is invalid",
		"",
	)

	// Remote services
	ErrInvalidHammerfestCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_HAMMERFEST_CREDENTIALS",
		"hammerfest rejected the credentials",
		"",
	)
	ErrInvalidDinoparcCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_DINOPARC_CREDENTIALS",
		"dinoparc rejected the credentials",
		"",
	)
	ErrInvalidTwinoidToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TWINOID_TOKEN",
		"twinoid rejected the access token",
		"",
	)
	ErrInvalidHammerfestSession = NewBaseError(
		http.StatusUnprocessableEntity,
		"INVALID_HAMMERFEST_SESSION",
		"the hammerfest session key is not valid",
		"",
	)
	ErrInvalidHammerfestRef = NewBaseError(
		http.StatusNotFound,
		"INVALID_HAMMERFEST_REF",
		"hammerfest user not found",
		"",
	)
	ErrInvalidDinoparcRef = NewBaseError(
		http.StatusNotFound,
		"INVALID_DINOPARC_REF",
		"dinoparc user not found",
		"",
	)
	ErrInvalidTwinoidRef = NewBaseError(
		http.StatusNotFound,
		"INVALID_TWINOID_REF",
		"twinoid user not found",
		"",
	)
	ErrRemoteUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"REMOTE_UNAVAILABLE",
		"the remote service could not be reached",
		"",
	)

	// Misc
	ErrInvalidInput = NewBaseError(
		http.StatusBadRequest,
		"INVALID_INPUT",
		"invalid input",
		"",
	)
	ErrNotImplemented = NewBaseError(
		http.StatusNotImplemented,
		"NOT_IMPLEMENTED",
		"not implemented",
		"",
	)
	ErrAssertion = NewBaseError(
		http.StatusInternalServerError,
		"ASSERTION_ERROR",
		"internal invariant violated",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
