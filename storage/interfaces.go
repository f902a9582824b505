package storage

import (
	"context"

	"tkpi-etl/models"
)

// NutrientStore is the interface the loader writes TKPI data through.
type NutrientStore interface {
	// SeedComponents upserts the component dictionary by name and returns
	// every stored component's id keyed by name.
	SeedComponents(ctx context.Context, components []models.NutrientComponent) (map[string]int64, error)
	// UpsertFood writes one food item and its values atomically and returns
	// the food item's persistent id.
	UpsertFood(ctx context.Context, food *models.FoodItem, values []models.NutrientValue) (string, error)
	Counts(ctx context.Context) (models.TableCounts, error)
	FoodByCode(ctx context.Context, code string) (*models.FoodItem, error)
	ValuesByCode(ctx context.Context, code string) (map[string]float64, error)
	Close() error
}

// RowWriter is the interface for persisting scraped rows in a tabular format.
type RowWriter interface {
	WriteRows(rows []models.RawRow) error
	Close() error
}
