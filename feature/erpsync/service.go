package erpsync

import (
	"context"
	"strings"
	"sync"
	"time"

	"device-manager/core/logger"
	"device-manager/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Trigger names what started a run.
const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
	TriggerCLI       = "cli"
)

// Syncer runs reconciliation passes. *reconcile.Reconciler implements it.
type Syncer interface {
	Synchronize(ctx context.Context, kinds ...reconcile.RecordKind) *reconcile.SyncResult
}

// Run is one synchronization with its identity and outcome.
type Run struct {
	ID      string                `json:"id"`
	Trigger string                `json:"trigger"`
	Report  string                `json:"report,omitempty"`
	Result  *reconcile.SyncResult `json:"result"`
}

// Service coordinates synchronization runs.
type Service struct {
	syncer  Syncer
	archive *Archive
	logger  *zap.Logger

	group singleflight.Group

	mu   sync.RWMutex
	last *Run
}

// NewService creates a sync service. archive may be nil to skip archiving.
func NewService(syncer Syncer, archive *Archive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{syncer: syncer, archive: archive, logger: logger}
}

// Synchronize runs a sync over kinds (all kinds when empty). Concurrent calls
// for the same kind set share a single run and its result; the run uses the
// context of the first caller.
func (s *Service) Synchronize(ctx context.Context, kinds []reconcile.RecordKind, trigger string) *Run {
	v, _, shared := s.group.Do(runKey(kinds), func() (any, error) {
		return s.run(ctx, kinds, trigger), nil
	})

	run := v.(*Run)
	if shared {
		logger.WithRun(s.logger, run.ID, trigger).Debug("Joined in-flight sync run")
	}
	return run
}

// Last returns the most recent run, or nil before the first one.
func (s *Service) Last() *Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Archive returns the report archive, or nil when archiving is disabled.
func (s *Service) Archive() *Archive {
	return s.archive
}

func (s *Service) run(ctx context.Context, kinds []reconcile.RecordKind, trigger string) *Run {
	run := &Run{ID: uuid.NewString(), Trigger: trigger}
	l := logger.WithRun(s.logger, run.ID, trigger)

	l.Info("Sync run started", zap.Any("kinds", kinds))
	started := time.Now()
	run.Result = s.syncer.Synchronize(ctx, kinds...)

	if s.archive != nil {
		// The archive write must not be lost to a cancelled run.
		name, err := s.archive.Save(context.WithoutCancel(ctx), run)
		if err != nil {
			l.Warn("Failed to archive sync report", zap.Error(err))
		} else {
			run.Report = name
		}
	}

	s.mu.Lock()
	s.last = run
	s.mu.Unlock()

	l.Info("Sync run finished",
		zap.Bool("success", run.Result.OverallSuccess),
		zap.Bool("cancelled", run.Result.Cancelled),
		zap.Int("errors", len(run.Result.Errors)),
		zap.Duration("duration", time.Since(started)),
	)
	return run
}

// runKey identifies a kind set independent of order and repetition.
func runKey(kinds []reconcile.RecordKind) string {
	if len(kinds) == 0 {
		kinds = reconcile.DefaultKinds
	}

	valid := reconcile.NormalizeKinds(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range valid {
		parts = append(parts, string(k))
	}
	for _, k := range kinds {
		if !k.IsValid() {
			parts = append(parts, "!"+string(k))
		}
	}
	return strings.Join(parts, ",")
}
