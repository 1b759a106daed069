package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested chain, key or variable doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidChainID is returned when a chain ID is zero or unparsable
	ErrInvalidChainID = errors.New("invalid chain ID")

	// ErrUnresolvedVariable is matched by every UnresolvedVariableError
	ErrUnresolvedVariable = errors.New("unresolved variable")

	// ErrFormat is matched by every FormatError
	ErrFormat = errors.New("format error")

	// ErrBackendUnavailable is returned when a key backend can't be reached or answers ambiguously
	ErrBackendUnavailable = errors.New("key backend unavailable")

	// ErrKeyNotFound is returned when a key backend has no entry for the reference
	ErrKeyNotFound = errors.New("key not found in backend")

	// ErrNoHealthyEndpoint is matched by every NoHealthyEndpointError
	ErrNoHealthyEndpoint = errors.New("no healthy endpoint")

	// ErrNonInteractive is returned when a prompt is needed but prompting is disabled
	ErrNonInteractive = errors.New("interactive prompt not available in non-interactive mode")

	// ErrDanglingKey is returned when a chain references a key name with no key behind it
	ErrDanglingKey = errors.New("dangling key reference")
)

// UnresolvedVariableError names the placeholder that had no value
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable ${%s}", e.Name)
}

func (e *UnresolvedVariableError) Is(target error) bool {
	return target == ErrUnresolvedVariable
}

// FormatError reports a malformed placeholder or variable name. Templates
// may embed secrets, so only the position of the fault is reported.
type FormatError struct {
	// Position is the 1-based byte offset of the fault; 0 when not applicable
	Position int
	Reason   string
}

func (e *FormatError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("malformed template at position %d: %s", e.Position, e.Reason)
	}
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// KeyBackendError wraps a failure of a specific key backend so the user sees which one failed
type KeyBackendError struct {
	Kind string
	Key  string
	Err  error
}

func (e *KeyBackendError) Error() string {
	return fmt.Sprintf("%s backend failed for key '%s': %v", e.Kind, e.Key, e.Err)
}

func (e *KeyBackendError) Unwrap() error {
	return e.Err
}
