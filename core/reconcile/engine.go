package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reconciler runs sync passes that bring a Store in line with a Source.
//
// Passes over the same kind are serialized; passes over different kinds may
// run concurrently since they touch disjoint record sets.
type Reconciler struct {
	source Source
	store  Store
	logger *zap.Logger
	cfg    Config

	locks map[RecordKind]*sync.Mutex

	// sleep waits between fetch attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Reconciler over the given source and store.
func New(source Source, store Store, logger *zap.Logger, cfg Config) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}

	locks := make(map[RecordKind]*sync.Mutex, len(DefaultKinds))
	for _, k := range DefaultKinds {
		locks[k] = &sync.Mutex{}
	}

	return &Reconciler{
		source: source,
		store:  store,
		logger: logger,
		cfg:    cfg.withDefaults(),
		locks:  locks,
		sleep:  sleepContext,
	}
}

// Synchronize runs one pass per requested kind in DefaultKinds order and
// merges the results. With no kinds, every kind is synchronized.
func (r *Reconciler) Synchronize(ctx context.Context, kinds ...RecordKind) *SyncResult {
	selected := NormalizeKinds(kinds)
	if len(kinds) == 0 {
		selected = append([]RecordKind(nil), DefaultKinds...)
	}

	results := make([]*SyncResult, 0, len(kinds))
	for _, k := range kinds {
		if !k.IsValid() {
			res := NewResult(k)
			res.Fail(k, fmt.Errorf("%w: %q", ErrUnknownKind, k))
			results = append(results, res)
		}
	}
	for _, k := range selected {
		results = append(results, r.SyncKind(ctx, k))
	}

	merged := Merge(results...)
	r.logger.Info("Synchronization finished",
		zap.Any("kinds", merged.Kinds),
		zap.Int("fetched", merged.FetchedCount),
		zap.Int("inserted", merged.InsertedCount),
		zap.Int("updated", merged.UpdatedCount),
		zap.Int("errors", len(merged.Errors)),
		zap.Bool("success", merged.OverallSuccess),
	)
	return merged
}

// SyncKind runs a complete fetch, match and apply pass for a single kind.
func (r *Reconciler) SyncKind(ctx context.Context, kind RecordKind) *SyncResult {
	lock, ok := r.locks[kind]
	if !ok {
		res := NewResult(kind)
		res.Fail(kind, fmt.Errorf("%w: %q", ErrUnknownKind, kind))
		return res
	}
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	plan, err := r.Plan(ctx, kind)
	if err != nil {
		res := NewResult(kind)
		res.StartedAt = started
		res.Fail(kind, err)
		res.FinishedAt = time.Now()
		r.logger.Error("Sync pass failed",
			zap.String("kind", string(kind)),
			zap.String("phase", string(PhaseFailed)),
			zap.Error(err),
		)
		return res
	}

	res := r.Apply(ctx, plan)
	res.StartedAt = started
	return res
}

// Plan fetches source records, snapshots the local collection once and
// computes the match decisions. It performs no writes.
func (r *Reconciler) Plan(ctx context.Context, kind RecordKind) (*Plan, error) {
	schema, ok := SchemaFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	l := r.logger.With(zap.String("kind", string(kind)))

	l.Debug("Sync pass", zap.String("phase", string(PhaseFetching)))
	source, err := r.fetch(ctx, kind)
	if err != nil {
		return nil, err
	}

	local, err := r.store.FindAll(ctx, kind)
	if err != nil {
		return nil, &SnapshotError{Kind: kind, Err: err}
	}

	l.Debug("Sync pass", zap.String("phase", string(PhaseMatching)),
		zap.Int("source", len(source)),
		zap.Int("local", len(local)),
	)
	plan := Match(schema, source, local)
	if plan.Duplicates > 0 {
		l.Warn("Dropped duplicate source records", zap.Int("count", plan.Duplicates))
	}
	return plan, nil
}

// fetch calls the source with bounded retry and exponential backoff.
// Cancellation is never retried.
func (r *Reconciler) fetch(ctx context.Context, kind RecordKind) ([]SourceRecord, error) {
	backoff := r.cfg.FetchBackoff
	var lastErr error

	for attempt := 1; attempt <= r.cfg.FetchAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(kind, err)
		}

		records, err := r.source.Fetch(ctx, kind)
		if err == nil {
			return records, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(kind, ctxErr)
		}
		lastErr = err

		if attempt == r.cfg.FetchAttempts {
			break
		}

		r.logger.Warn("Fetch failed, retrying",
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if err := r.sleep(ctx, backoff); err != nil {
			return nil, cancelled(kind, err)
		}
		backoff *= 2
		if backoff > r.cfg.MaxFetchBackoff {
			backoff = r.cfg.MaxFetchBackoff
		}
	}

	return nil, &TransportError{Kind: kind, Attempts: r.cfg.FetchAttempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
