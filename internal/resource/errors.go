package resource

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrRequestPending is returned when a mutating store request is already
	// in flight for the controller.
	ErrRequestPending = errors.New("another change is still being saved")
	// ErrUnknownResource is returned for a page name no schema defines.
	ErrUnknownResource = errors.New("unknown resource")
)

// ValidationError reports missing or malformed form fields. Nothing is
// written when it is returned.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// StoreError wraps a RecordStore failure on list, create, update, patch or
// delete. The local collection is left at its last known good state.
type StoreError struct {
	Op       string
	Resource string
	Cause    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// TransitionError reports a page action that is not allowed in the current
// state, e.g. submitting while browsing.
type TransitionError struct {
	From    State
	To      State
	Allowed []State
}

func (e *TransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, s.String())
	}
	return fmt.Sprintf("cannot go from %s to %s (allowed: %s)", e.From, e.To, strings.Join(allowed, ", "))
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err is a *StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
