package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console session core
var (
	// Authentication errors. Login failures collapse to ErrInvalidCredentials
	// regardless of cause so callers cannot distinguish an unknown username
	// from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrRefreshFailed  = errors.New("token refresh failed")

	// Authorization errors
	ErrForbidden = errors.New("insufficient permissions")

	// Storage errors
	ErrStorageUnavailable = errors.New("credential storage unavailable")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
