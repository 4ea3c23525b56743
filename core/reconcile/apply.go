package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Apply executes the insert and update decisions of a plan against the store.
//
// Each write is isolated: a failing record is reported in the result and the
// pass continues. Once ctx is cancelled no further writes are scheduled, while
// writes already in flight run to completion. Outcomes are folded in decision
// order regardless of completion order.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan) *SyncResult {
	res := NewResult(plan.Kind)
	res.StartedAt = time.Now()
	res.FetchedCount = plan.Fetched

	l := r.logger.With(zap.String("kind", string(plan.Kind)))
	l.Debug("Sync pass", zap.String("phase", string(PhaseApplying)),
		zap.Int("inserts", plan.Count(ActionInsert)),
		zap.Int("updates", plan.Count(ActionUpdate)),
	)

	// In-flight writes must not be torn by cancellation.
	writeCtx := context.WithoutCancel(ctx)

	outcomes := make([]RecordOutcome, len(plan.Decisions))
	done := make([]bool, len(plan.Decisions))
	var stopErr error

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)

	for i, d := range plan.Decisions {
		if d.Action != ActionInsert && d.Action != ActionUpdate {
			outcomes[i] = RecordOutcome{Kind: plan.Kind, Key: d.Record.Key, Action: d.Action, Err: d.Err}
			done[i] = true
			continue
		}

		if stopErr != nil {
			continue
		}
		if stopErr = ctx.Err(); stopErr != nil {
			continue
		}

		// g.Go waits for a free worker, so ctx is checked again once the
		// write actually starts.
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = r.applyOne(writeCtx, plan.Kind, d)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	notStarted := 0
	for i, o := range outcomes {
		if !done[i] {
			notStarted++
			continue
		}
		if o.Err != nil {
			l.Warn("Record not reconciled",
				zap.String("key", o.Key),
				zap.String("action", string(o.Action)),
				zap.Error(o.Err),
			)
		}
		res.Record(o)
	}
	if notStarted > 0 && stopErr == nil {
		stopErr = ctx.Err()
	}

	if stopErr != nil {
		res.MarkCancelled(plan.Kind, cancelled(plan.Kind, stopErr))
		l.Warn("Sync pass cancelled", zap.Int("not_started", notStarted))
	}

	res.FinishedAt = time.Now()
	l.Info("Sync pass finished",
		zap.String("phase", string(PhaseDone)),
		zap.Int("fetched", res.FetchedCount),
		zap.Int("inserted", res.InsertedCount),
		zap.Int("updated", res.UpdatedCount),
		zap.Int("unchanged", res.UnchangedCount),
		zap.Int("errors", len(res.Errors)),
	)
	return res
}

// applyOne writes a single decision through the store.
func (r *Reconciler) applyOne(ctx context.Context, kind RecordKind, d MatchDecision) RecordOutcome {
	out := RecordOutcome{Kind: kind, Key: d.Record.Key, Action: d.Action}

	switch d.Action {
	case ActionInsert:
		if _, err := r.store.Insert(ctx, kind, d.Record); err != nil {
			out.Err = &RecordApplyError{Kind: kind, Key: d.Record.Key, Op: ActionInsert, Err: err}
		}
	case ActionUpdate:
		if err := r.store.Update(ctx, kind, d.LocalID, d.Changed.Clone()); err != nil {
			out.Err = &RecordApplyError{Kind: kind, Key: d.Record.Key, Op: ActionUpdate, Err: err}
		}
	}
	return out
}
