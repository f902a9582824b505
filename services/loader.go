package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"tkpi-etl/models"
	"tkpi-etl/storage"
	"tkpi-etl/utils"
)

// Loader upserts decoded TKPI rows into the component, food and value tables.
type Loader struct {
	store      storage.NutrientStore
	cleaner    *Cleaner
	components []models.NutrientComponent
	logger     *utils.Logger
}

// NewLoader creates a Loader that seeds the given component dictionary.
func NewLoader(store storage.NutrientStore, components []models.NutrientComponent, logger *utils.Logger) *Loader {
	return &Loader{
		store:      store,
		cleaner:    NewCleaner(logger),
		components: components,
		logger:     logger,
	}
}

// Load seeds the component dictionary and then upserts rows one at a time in
// input order. Rows without a code or name are skipped. The first storage
// error stops the run; rows written before it stay committed.
func (l *Loader) Load(ctx context.Context, rows []models.Row) (*models.LoadReport, error) {
	l.logger.Info("[loader] Seeding %d nutrient components...", len(l.components))
	lookup, err := l.store.SeedComponents(ctx, l.components)
	if err != nil {
		return nil, fmt.Errorf("loader: seed components: %w", err)
	}

	names := make(map[int64]string, len(lookup))
	for name, id := range lookup {
		names[id] = name
	}

	report := &models.LoadReport{RowsRead: len(rows)}
	startUnparseable := l.cleaner.Unparseable()
	lastCode := ""

	for i, row := range rows {
		n := i + 1
		code, okCode := identity(row, models.FieldCode)
		name, okName := identity(row, models.FieldName)
		if !okCode || !okName {
			l.logger.Warn("[loader] Skipping item #%d: missing %q or %q", n, models.FieldCode, models.FieldName)
			report.RowsSkipped++
			continue
		}

		l.logger.Info("[loader] [%d/%d] %s (code %s)", n, len(rows), name, code)

		food := l.foodItem(code, name, row)
		values, absent := l.nutrientValues(row, lookup)

		if _, err := l.store.UpsertFood(ctx, food, values); err != nil {
			report.UnparseableValues = l.cleaner.Unparseable() - startUnparseable
			return report, fmt.Errorf("loader: item #%d: %w", n, err)
		}

		for _, v := range values {
			l.logger.Info("[loader]   -> Saving %s: %s = %v", code, names[v.ComponentID], v.Value)
		}
		lastCode = code
		report.RowsLoaded++
		report.ValuesWritten += len(values)
		report.ValuesAbsent += absent
	}

	report.UnparseableValues = l.cleaner.Unparseable() - startUnparseable

	counts, err := l.store.Counts(ctx)
	if err != nil {
		return report, fmt.Errorf("loader: count rows: %w", err)
	}
	report.Counts = counts

	if lastCode != "" {
		stored, err := l.readBack(ctx, lastCode)
		if err != nil {
			return report, err
		}
		report.LastStored = stored
	}
	return report, nil
}

// readBack fetches a loaded item and its values from the store.
func (l *Loader) readBack(ctx context.Context, code string) (*models.StoredItem, error) {
	food, err := l.store.FoodByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("loader: read back %s: %w", code, err)
	}
	values, err := l.store.ValuesByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("loader: read back %s: %w", code, err)
	}
	return &models.StoredItem{Food: food, Values: values}, nil
}

func (l *Loader) foodItem(code, name string, row models.Row) *models.FoodItem {
	food := &models.FoodItem{
		Code:           code,
		Name:           name,
		RawOrProcessed: l.cleaner.Text(row[models.FieldRawOrProcessed]),
		FoodGroup:      l.cleaner.Text(row[models.FieldFoodGroup]),
		Source:         l.cleaner.Text(row[models.FieldSource]),
	}
	if bdd, ok := l.cleaner.ParseDecimal(row[models.FieldBDD]); ok {
		food.BDD = sql.NullFloat64{Float64: bdd, Valid: true}
	}
	return food
}

// nutrientValues returns a value for every row field that names a stored
// component and holds a number, ordered by component id, plus the count of
// such fields that were blank, "-" or unparseable.
func (l *Loader) nutrientValues(row models.Row, lookup map[string]int64) ([]models.NutrientValue, int) {
	values := make([]models.NutrientValue, 0, len(lookup))
	absent := 0
	for field, raw := range row {
		id, known := lookup[field]
		if !known {
			continue
		}
		v, ok := l.cleaner.ParseDecimal(raw)
		if !ok {
			absent++
			continue
		}
		values = append(values, models.NutrientValue{ComponentID: id, Value: v})
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].ComponentID < values[j].ComponentID
	})
	return values, absent
}

// identity returns a non-empty string field. Identity fields are kept as
// written; only surrounding whitespace decides emptiness.
func identity(row models.Row, field string) (string, bool) {
	s, ok := row[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
