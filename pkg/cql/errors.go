package cql

import "errors"

var (
	// ErrInvalidArgument is returned when a clause is built from a value that
	// can never produce a valid query, e.g. an empty user or ordering by label.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation is returned when a mutation is requested on a clause
	// that cannot carry it, such as negating a literal clause.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvariantViolation signals a value outside one of the closed
	// enumerations. It is not reachable through the exported constructors.
	ErrInvariantViolation = errors.New("invariant violation")
)
