package reconcile

import (
	"errors"
	"fmt"
)

// ErrMissingKey is the reason attached to source records without a natural key.
var ErrMissingKey = errors.New("missing natural key")

// ErrUnknownKind is returned when a pass is requested for an unregistered kind.
var ErrUnknownKind = errors.New("unknown record kind")

// ErrorClass categorises a SyncError for callers that report them.
type ErrorClass string

const (
	ClassTransport  ErrorClass = "transport"
	ClassSnapshot   ErrorClass = "snapshot"
	ClassApply      ErrorClass = "apply"
	ClassValidation ErrorClass = "validation"
	ClassCancelled  ErrorClass = "cancelled"
)

// TransportError is a failure of the source adapter fetch. It is fatal to the pass.
type TransportError struct {
	Kind     RecordKind
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SnapshotError is a failure to read the local collection. It is fatal to the pass.
type SnapshotError struct {
	Kind RecordKind
	Err  error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s failed: %v", e.Kind, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// RecordApplyError is an insert or update failure for a single record.
type RecordApplyError struct {
	Kind RecordKind
	Key  string
	Op   Action
	Err  error
}

func (e *RecordApplyError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Kind, e.Key, e.Err)
}

func (e *RecordApplyError) Unwrap() error { return e.Err }

// ValidationError marks a malformed source record. It is skipped and reported.
type ValidationError struct {
	Kind   RecordKind
	Key    string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record %q: %v", e.Kind, e.Key, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// classify maps an error to the class reported in SyncResult.Errors.
func classify(err error) ErrorClass {
	var (
		transport  *TransportError
		snapshot   *SnapshotError
		validation *ValidationError
	)
	switch {
	case errors.As(err, &validation), errors.Is(err, ErrUnknownKind):
		return ClassValidation
	case errors.Is(err, errCancelled):
		return ClassCancelled
	case errors.As(err, &transport):
		return ClassTransport
	case errors.As(err, &snapshot):
		return ClassSnapshot
	default:
		return ClassApply
	}
}

// errCancelled wraps context errors that stopped a pass.
var errCancelled = errors.New("sync cancelled")

func cancelled(kind RecordKind, cause error) error {
	return fmt.Errorf("%w: %s: %w", errCancelled, kind, cause)
}

// IsCancelled reports whether err is a pass cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, errCancelled)
}
