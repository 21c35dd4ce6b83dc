// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrMalformedInput marks an input record missing a required field.
	// Per-record recoverable: the record is skipped and reported, the
	// batch continues.
	ErrMalformedInput = errors.New("malformed input record")

	// ErrCatalogInconsistency marks a catalog whose rules would make
	// matching non-deterministic. Fatal at catalog load time.
	ErrCatalogInconsistency = errors.New("catalog inconsistency")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ContractViolationError marks an internal invariant breach between
// pipeline stages. Always a programming error: fatal, never caught or
// retried.
type ContractViolationError struct {
	Invariant string
	Detail    string
}

func (e *ContractViolationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("contract violation: %s: %s", e.Invariant, e.Detail)
	}
	return fmt.Sprintf("contract violation: %s", e.Invariant)
}

// NewContractViolation creates a contract violation error.
func NewContractViolation(invariant, detail string) error {
	return &ContractViolationError{Invariant: invariant, Detail: detail}
}

// IsContractViolation reports whether err is (or wraps) a contract
// violation.
func IsContractViolation(err error) bool {
	var cv *ContractViolationError
	return errors.As(err, &cv)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
