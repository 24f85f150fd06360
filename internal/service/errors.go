// Package service provides business logic for the application.
package service

import "errors"

// Service errors. Handlers map these to HTTP status codes; duplicate
// scans are a normal outcome and deliberately have no error here.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrBindingNotFound    = errors.New("tag binding not found")
	ErrPersonNotFound     = errors.New("person not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("storage unavailable")
)

// unavailable wraps a store failure so callers can match
// ErrUnavailable with errors.Is and decide their own retry policy.
func unavailable(err error) error {
	return errors.Join(ErrUnavailable, err)
}
