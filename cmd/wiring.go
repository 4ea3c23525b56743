package cmd

import (
	"context"
	"fmt"

	"device-manager/core/config"
	"device-manager/core/omie"
	"device-manager/core/reconcile"
	"device-manager/core/storage"
	"device-manager/feature/catalog"
	"device-manager/feature/erpsync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// prepareCatalog migrates the catalog tables and verifies their columns.
func prepareCatalog(db *gorm.DB) error {
	if err := catalog.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	if err := catalog.VerifySchema(db); err != nil {
		return fmt.Errorf("catalog schema check failed: %w", err)
	}
	return nil
}

// newReconciler wires the ERP source and the catalog store into the engine.
func newReconciler(cfg *config.Config, db *gorm.DB, l *zap.Logger) (*reconcile.Reconciler, error) {
	client, err := omie.NewClient(cfg.Omie, l.Named("omie"))
	if err != nil {
		return nil, err
	}
	return reconcile.New(omie.NewSource(client), catalog.NewStore(db), l.Named("reconcile"), cfg.Reconcile), nil
}

// newArchive returns the sync report archive, or nil when archiving is off.
func newArchive(ctx context.Context, cfg *config.Config) (*erpsync.Archive, error) {
	if !cfg.Storage.ArchiveReports {
		return nil, nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return nil, err
	}
	return erpsync.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.ReportPrefix), nil
}

// newSyncService builds the sync service on top of the engine and archive.
func newSyncService(ctx context.Context, cfg *config.Config, db *gorm.DB, l *zap.Logger) (*erpsync.Service, error) {
	r, err := newReconciler(cfg, db, l)
	if err != nil {
		return nil, err
	}

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		l.Warn("Sync report archive unavailable", zap.Error(err))
		archive = nil
	}

	return erpsync.NewService(r, archive, l.Named("erpsync")), nil
}
