package cmd

import (
	"context"
	"fmt"
	"log"

	"revision-validator/core/config"
	"revision-validator/core/database"
	"revision-validator/core/logger"
	"revision-validator/core/storage"
	"revision-validator/feature/integrity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Flags shared by the commands that touch the ledger.
var (
	ledgerPath  string
	ledgerSheet string
)

// setup loads the configuration, applies path flags and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if ledgerPath != "" {
		cfg.Files.Ledger = ledgerPath
	}
	if ledgerSheet != "" {
		cfg.Files.LedgerSheet = ledgerSheet
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}

// connectParts opens the parts database. A failure is not fatal: the parts
// source reports every lookup as unreachable and the run carries on.
func connectParts(cfg *config.Config, logg *zap.Logger) *gorm.DB {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Warn("Parts database unavailable, database revisions will fail",
			zap.String("driver", cfg.Database.Driver),
			zap.String("host", cfg.Database.Host),
			zap.Error(err))
		return nil
	}
	logg.Info("Connected to parts database", zap.String("driver", cfg.Database.Driver))
	return db
}

// openStorage returns the diagnostics upload client, or nil when uploads are
// disabled or the bucket cannot be prepared.
func openStorage(ctx context.Context, cfg *config.Config, logg *zap.Logger) storage.Client {
	if !cfg.Storage.Enabled {
		return nil
	}
	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Warn("Snapshot uploads disabled", zap.Error(err))
		return nil
	}
	if err := storage.EnsureBucket(ctx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		logg.Warn("Snapshot uploads disabled", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		return nil
	}
	return store
}

func integrityOptions(cfg *config.Config) integrity.Options {
	return integrity.Options{
		Table:       cfg.Parts.Table,
		KeyColumn:   cfg.Parts.KeyColumn,
		LedgerPath:  cfg.Files.Ledger,
		LedgerSheet: cfg.Files.LedgerSheet,
		Bucket:      cfg.Storage.Bucket,
		Prefix:      cfg.Storage.Prefix,
		Region:      cfg.Storage.Region,
	}
}

func closeDB(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		log.Printf("failed to close database: %v", err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "Ledger workbook (overrides files.ledger)")
	RootCmd.PersistentFlags().StringVar(&ledgerSheet, "ledger-sheet", "", "Ledger sheet name (overrides files.ledger_sheet)")
}
