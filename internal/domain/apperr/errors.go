// Package apperr holds the failure taxonomy shared by every layer.
// Coordinators and stores return these sentinels (possibly wrapped with %w);
// only the HTTP layer translates them into status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrInternal        = errors.New("internal error")

	// ErrInvalidCredentials is returned by login for both an unknown email
	// and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

var kinds = []error{
	ErrUnauthenticated,
	ErrForbidden,
	ErrConflict,
	ErrNotFound,
	ErrValidation,
	ErrInternal,
	ErrInvalidCredentials,
	ErrInvalidToken,
	ErrTokenExpired,
}

// Kind returns the taxonomy sentinel err belongs to, or nil when it carries none.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Internal wraps an unexpected backend fault. Errors that already carry a
// taxonomy kind are returned unchanged so a Conflict never turns into Internal.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
