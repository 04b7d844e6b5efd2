package errors

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes sync failure classes for callers without string
// matching.
type ErrorKind string

const (
	KindAuthRequired            ErrorKind = "auth_required"
	KindCollaboratorUnavailable ErrorKind = "collaborator_unavailable"
	KindPersistenceFailure      ErrorKind = "persistence_failure"
	KindValidation              ErrorKind = "validation"
)

// SyncError carries a machine-distinguishable kind plus a human-readable
// message. The wrapped error never reaches API responses.
type SyncError struct {
	Kind      ErrorKind
	Message   string
	Err       error
	Retryable bool
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(kind ErrorKind, message string, err error, retryable bool) *SyncError {
	return &SyncError{
		Kind:      kind,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}

func NewAuthRequired(message string, err error) *SyncError {
	return NewSyncError(KindAuthRequired, message, err, false)
}

func NewCollaboratorUnavailable(message string, err error) *SyncError {
	return NewSyncError(KindCollaboratorUnavailable, message, err, true)
}

func NewPersistenceFailure(message string, err error) *SyncError {
	return NewSyncError(KindPersistenceFailure, message, err, false)
}

// KindOf returns the error kind, or empty string for untyped errors.
func KindOf(err error) ErrorKind {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Kind
	}
	return ""
}

// IsRetryable reports whether the error is a transient collaborator failure.
func IsRetryable(err error) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Retryable
	}
	return false
}
