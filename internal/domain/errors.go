package domain

import "fmt"

// Error is a user-facing error with a stable code, matched with errors.Is.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so that any *Error compares equal to its sentinel.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	// ErrInput - caller supplied a malformed argument
	ErrInput = &Error{Code: "INPUT", Message: "invalid input"}

	// ErrAuthentication - the token was rejected
	ErrAuthentication = &Error{Code: "AUTHENTICATION", Message: "bad GitHub authorization token"}

	// ErrNotFound - organization or repository does not exist
	ErrNotFound = &Error{Code: "NOT_FOUND", Message: "resource not found"}
)

// NewInputError describes a rejected argument value.
func NewInputError(field, value, reason string) *Error {
	return &Error{
		Code:    ErrInput.Code,
		Message: fmt.Sprintf("invalid %s %q: %s", field, value, reason),
	}
}

// NewAuthenticationError wraps the client error that rejected the token.
func NewAuthenticationError(err error) *Error {
	return &Error{
		Code:    ErrAuthentication.Code,
		Message: "bad GitHub authorization token (check that it is valid and not expired)",
		Err:     err,
	}
}

// NewNotFoundError names the missing resource, e.g. "organization acme".
func NewNotFoundError(resource string, err error) *Error {
	return &Error{
		Code:    ErrNotFound.Code,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}
