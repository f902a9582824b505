// The extract command scrapes the TKPI composition table from a saved HTML
// page (or a live URL rendered in headless Chrome) into a JSON array of rows.
package main

import (
	"context"
	"os"
	"strings"

	"tkpi-etl/config"
	"tkpi-etl/models"
	"tkpi-etl/scraper/tkpi"
	"tkpi-etl/storage"
	"tkpi-etl/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug())

	logger.Info("=== TKPI extractor starting ===")

	if err := run(cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	extractor := tkpi.New(logger)

	var (
		rows []models.RawRow
		err  error
	)
	if tkpi.IsURL(cfg.SourceURL) {
		renderer := tkpi.NewRenderer(cfg.ChromeBin, cfg.RenderTimeout, logger)
		html, renderErr := renderer.Render(context.Background(), cfg.SourceURL)
		if renderErr != nil {
			return renderErr
		}
		rows, err = extractor.Extract(strings.NewReader(html))
	} else {
		logger.Info("Reading %s", cfg.HTMLPath)
		rows, err = extractor.ExtractFile(cfg.HTMLPath)
	}
	if err != nil {
		return err
	}

	if err := storage.WriteRowsJSON(cfg.JSONPath, rows); err != nil {
		return err
	}
	logger.Info("Extracted %d rows to %s", len(rows), cfg.JSONPath)

	if cfg.CSVPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVPath, models.Header)
		if err != nil {
			return err
		}
		defer csvWriter.Close()

		if err := csvWriter.WriteRows(rows); err != nil {
			return err
		}
		logger.Info("Rows also saved to %s", cfg.CSVPath)
	}
	return nil
}
