package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user with the same email already
	// exists within the company
	ErrDuplicateEmail = errors.New("user with this email already exists in company")

	// ErrDuplicateAuthentication is returned when an authentication record
	// already exists for the user and provider
	ErrDuplicateAuthentication = errors.New("authentication already exists for user and provider")
)
