package reconcile

import (
	"errors"
	"time"
)

// RecordOutcome is the result of applying one MatchDecision.
type RecordOutcome struct {
	Kind   RecordKind
	Key    string
	Action Action
	Err    error
}

// SyncError is one reportable error of a sync run.
// Key is empty for pass-level failures.
type SyncError struct {
	Kind    RecordKind `json:"kind"`
	Key     string     `json:"key"`
	Class   ErrorClass `json:"class"`
	Message string     `json:"message"`

	err  error
	pass bool
}

func (e SyncError) Error() string { return e.Message }

// Unwrap returns the underlying typed error, when known.
func (e SyncError) Unwrap() error { return e.err }

// SyncResult is the aggregate outcome of one or more passes.
type SyncResult struct {
	Kinds          []RecordKind `json:"kinds"`
	FetchedCount   int          `json:"fetched_count"`
	InsertedCount  int          `json:"inserted_count"`
	UpdatedCount   int          `json:"updated_count"`
	UnchangedCount int          `json:"unchanged_count"`
	SkippedCount   int          `json:"skipped_count"`
	Errors         []SyncError  `json:"errors"`
	OverallSuccess bool         `json:"overall_success"`
	Cancelled      bool         `json:"cancelled"`
	StartedAt      time.Time    `json:"started_at"`
	FinishedAt     time.Time    `json:"finished_at"`
}

// NewResult creates an empty, successful result for the given kinds.
func NewResult(kinds ...RecordKind) *SyncResult {
	return &SyncResult{
		Kinds:          append([]RecordKind{}, kinds...),
		Errors:         []SyncError{},
		OverallSuccess: true,
	}
}

// Record folds a single record outcome into the result.
func (r *SyncResult) Record(o RecordOutcome) {
	if o.Err != nil {
		if o.Action == ActionSkip {
			r.SkippedCount++
		}
		r.addError(o.Kind, o.Key, o.Err, false)
		return
	}

	switch o.Action {
	case ActionInsert:
		r.InsertedCount++
	case ActionUpdate:
		r.UpdatedCount++
	case ActionUnchanged:
		r.UnchangedCount++
	case ActionSkip:
		r.SkippedCount++
	}
}

// Fail marks the result as a pass-level failure for kind.
func (r *SyncResult) Fail(kind RecordKind, err error) {
	r.OverallSuccess = false
	if IsCancelled(err) {
		r.Cancelled = true
	}
	r.addError(kind, "", err, true)
}

// MarkCancelled records that a pass stopped scheduling writes after
// cancellation. OverallSuccess is left untouched.
func (r *SyncResult) MarkCancelled(kind RecordKind, err error) {
	r.Cancelled = true
	r.addError(kind, "", err, false)
}

func (r *SyncResult) addError(kind RecordKind, key string, err error, pass bool) {
	r.Errors = append(r.Errors, SyncError{
		Kind:    kind,
		Key:     key,
		Class:   classify(err),
		Message: err.Error(),
		err:     err,
		pass:    pass,
	})
}

// PassErrors returns the pass-level failures in the order they were recorded.
func (r *SyncResult) PassErrors() []error {
	var errs []error
	for _, e := range r.Errors {
		if e.pass && e.err != nil {
			errs = append(errs, e.err)
		}
	}
	return errs
}

// Err returns the pass-level failures joined into one error, or nil when every
// pass fetched successfully. Record-level errors are data and are not returned.
func (r *SyncResult) Err() error {
	return errors.Join(r.PassErrors()...)
}

// Merge combines results in the given order. Counts are summed, errors are
// concatenated and OverallSuccess is AND-reduced.
func Merge(results ...*SyncResult) *SyncResult {
	out := NewResult()
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Kinds = append(out.Kinds, r.Kinds...)
		out.FetchedCount += r.FetchedCount
		out.InsertedCount += r.InsertedCount
		out.UpdatedCount += r.UpdatedCount
		out.UnchangedCount += r.UnchangedCount
		out.SkippedCount += r.SkippedCount
		out.Errors = append(out.Errors, r.Errors...)
		out.OverallSuccess = out.OverallSuccess && r.OverallSuccess
		out.Cancelled = out.Cancelled || r.Cancelled

		if !r.StartedAt.IsZero() && (out.StartedAt.IsZero() || r.StartedAt.Before(out.StartedAt)) {
			out.StartedAt = r.StartedAt
		}
		if r.FinishedAt.After(out.FinishedAt) {
			out.FinishedAt = r.FinishedAt
		}
	}
	return out
}
