package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Registration
	ErrCompanyNotFound   = errors.New("company not found")
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrDataAccess marks datastore failures that abort a whole dispatch job.
	ErrDataAccess = errors.New("data access failure")

	ErrInvalidExecContext = errors.New("invalid execution context")
)
