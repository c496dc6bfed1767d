// Package sentinel holds the errors stores return. Services translate them
// into domain errors once, at the store boundary.
package sentinel

import "errors"

var (
	// ErrNotFound: the key, token or owner index does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: the store refused a value, such as a token id beyond BIGINT.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyUsed: a write-once record was written before.
	ErrAlreadyUsed = errors.New("already used")
	// ErrInvalidState: the store cannot proceed, e.g. the token id space is exhausted.
	ErrInvalidState = errors.New("invalid state")
)
