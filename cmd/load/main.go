// The load command imports the extractor's JSON output into the
// komponen_gizi, tkpi and nilai_gizi tables.
package main

import (
	"context"
	"os"

	"tkpi-etl/config"
	"tkpi-etl/models"
	"tkpi-etl/services"
	"tkpi-etl/storage"
	"tkpi-etl/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug())

	logger.Info("=== TKPI loader starting ===")

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	if err := cfg.ValidateDB(); err != nil {
		return err
	}

	// Input problems are fatal before any database work.
	rows, err := storage.ReadRowsJSON(cfg.JSONPath)
	if err != nil {
		return err
	}
	logger.Info("Read %d items from %s", len(rows), cfg.JSONPath)

	store, err := storage.NewSQLStore(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing database: %v", err)
		}
		logger.Info("Database connection closed")
	}()
	logger.Info("Connected to %s", cfg.DBDriver)

	if cfg.BootstrapSchema {
		if err := store.BootstrapSchema(ctx); err != nil {
			return err
		}
		logger.Info("Schema bootstrapped")
	}

	loader := services.NewLoader(store, models.NutrientComponents, logger)
	report, err := loader.Load(ctx, rows)
	if err != nil {
		return err
	}

	services.NewReportService().Print(report)
	logger.Info("Import finished")
	return nil
}
