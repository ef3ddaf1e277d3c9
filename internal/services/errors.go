// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Error identities. Every failed precondition wraps exactly one of these with
// a human-readable reason, so callers branch with errors.Is.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrAlreadyListed         = errors.New("already listed")
	ErrNotListed             = errors.New("not listed")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrNothingToWithdraw     = errors.New("nothing to withdraw")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrOperationPaused       = errors.New("operation paused")
	ErrNotFound              = errors.New("not found")
)

func fail(kind error, reason string) error {
	return fmt.Errorf("%w: %s", kind, reason)
}

// Reason strips the identity prefix and returns the human reason of a
// service error, or the full message for anything else.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var r interface{ Unwrap() error }
	if errors.As(err, &r) {
		msg := err.Error()
		prefix := r.Unwrap().Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}
