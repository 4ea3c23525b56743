package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"device-manager/core/config"
	"device-manager/core/database"
	"device-manager/core/logger"
	"device-manager/core/reconcile"
	"device-manager/feature/erpsync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	syncKinds  string
	syncDryRun bool
)

// syncCmd runs one synchronization with the ERP.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the local catalog with the Omie ERP",
	Long: `Fetches orders, clients and products from the ERP and reconciles them
into the local database. New records are inserted and changed records updated;
records missing from the ERP are left untouched.

Examples:
  # Synchronize everything
  sync

  # Only orders and clients
  sync --kinds orders,clients

  # Show what would change without writing
  sync --dry-run`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncKinds, "kinds", "", "Comma separated kinds to sync (orders, clients, products)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan only, no writes")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kinds, unknown := reconcile.ParseKinds(syncKinds)
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", reconcile.ErrUnknownKind, strings.Join(unknown, ", "))
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := prepareCatalog(db); err != nil {
		return err
	}

	if syncDryRun {
		r, err := newReconciler(cfg, db, l)
		if err != nil {
			return err
		}
		for _, kind := range kinds {
			plan, err := r.Plan(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to plan %s: %w", kind, err)
			}
			printPlanReport(l, plan)
		}
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	svc, err := newSyncService(ctx, cfg, db, l)
	if err != nil {
		return err
	}

	run := svc.Synchronize(ctx, kinds, erpsync.TriggerCLI)
	printSyncReport(l, run)

	if !run.Result.OverallSuccess {
		return fmt.Errorf("synchronization failed: %w", run.Result.Err())
	}
	return nil
}

// printPlanReport prints the decisions of a dry-run plan.
func printPlanReport(l *zap.Logger, plan *reconcile.Plan) {
	l.Info("Sync plan",
		zap.String("kind", string(plan.Kind)),
		zap.Int("fetched", plan.Fetched),
		zap.Int("duplicates", plan.Duplicates),
		zap.Int("insert", plan.Count(reconcile.ActionInsert)),
		zap.Int("update", plan.Count(reconcile.ActionUpdate)),
		zap.Int("unchanged", plan.Count(reconcile.ActionUnchanged)),
		zap.Int("skip", plan.Count(reconcile.ActionSkip)),
	)

	// Show sample of writes (max 5 for logger)
	maxShow := 5
	shown := 0
	for _, d := range plan.Decisions {
		if d.Action != reconcile.ActionInsert && d.Action != reconcile.ActionUpdate {
			continue
		}
		if shown == maxShow {
			l.Info("Additional changes not shown", zap.Int("count", plan.Count(reconcile.ActionInsert)+plan.Count(reconcile.ActionUpdate)-maxShow))
			break
		}
		l.Info("Planned change",
			zap.String("action", string(d.Action)),
			zap.String("key", d.Record.Key),
			zap.Any("changed", d.Changed),
		)
		shown++
	}
}

// printSyncReport prints the outcome of a sync run.
func printSyncReport(l *zap.Logger, run *erpsync.Run) {
	res := run.Result
	l.Info("Sync report",
		zap.String("run_id", run.ID),
		zap.Any("kinds", res.Kinds),
		zap.Int("fetched", res.FetchedCount),
		zap.Int("inserted", res.InsertedCount),
		zap.Int("updated", res.UpdatedCount),
		zap.Int("unchanged", res.UnchangedCount),
		zap.Int("skipped", res.SkippedCount),
		zap.Bool("success", res.OverallSuccess),
		zap.Bool("cancelled", res.Cancelled),
		zap.String("report", run.Report),
	)
	for _, e := range res.Errors {
		l.Warn("Sync error",
			zap.String("kind", string(e.Kind)),
			zap.String("key", e.Key),
			zap.String("class", string(e.Class)),
			zap.String("message", e.Message),
		)
	}
}
