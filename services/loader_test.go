package services

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"tkpi-etl/models"
	"tkpi-etl/storage"
	"tkpi-etl/utils"
)

func newSQLiteStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	ctx := context.Background()
	s, err := storage.NewSQLStore(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.BootstrapSchema(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

// fullRow returns a row carrying all 28 header fields with valid values.
func fullRow(code, name string) models.Row {
	row := models.Row{
		models.FieldNumber:         "1",
		models.FieldCode:           code,
		models.FieldName:           name,
		models.FieldBDD:            "100",
		models.FieldRawOrProcessed: "Tunggal",
		models.FieldFoodGroup:      "Serealia",
		models.FieldSource:         "TKPI 2019",
	}
	for i, c := range models.NutrientComponents {
		row[c.Name] = strings.Repeat("1", i%3+1) + ",5"
	}
	row["Energi"] = "1.787,0"
	return row
}

func TestLoadEndToEndSkipsRowWithoutCode(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	var out bytes.Buffer
	l := NewLoader(s, models.NutrientComponents, utils.NewLoggerTo(&out, &out))

	incomplete := fullRow("", "Tanpa kode")
	delete(incomplete, models.FieldCode)

	report, err := l.Load(ctx, []models.Row{fullRow("AP001", "Beras giling, mentah"), incomplete})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if report.RowsRead != 2 || report.RowsLoaded != 1 || report.RowsSkipped != 1 {
		t.Errorf("report rows: %+v", report)
	}
	if report.ValuesWritten != 21 {
		t.Errorf("values written: got %d, want 21", report.ValuesWritten)
	}
	if report.Counts.Foods != 1 || report.Counts.Values != 21 || report.Counts.Components != 21 {
		t.Errorf("table counts: %+v", report.Counts)
	}
	if !strings.Contains(out.String(), "Skipping item #2") {
		t.Errorf("expected skip diagnostic, got:\n%s", out.String())
	}
	// Per-value progress is printed at the default level.
	if !strings.Contains(out.String(), "-> Saving AP001: Energi = 1787") {
		t.Errorf("expected per-value progress line, got:\n%s", out.String())
	}

	if report.LastStored == nil || report.LastStored.Food.Code != "AP001" {
		t.Fatalf("last stored item: got %+v", report.LastStored)
	}
	if len(report.LastStored.Values) != 21 || report.LastStored.Values["Energi"] != 1787 {
		t.Errorf("last stored values: %v", report.LastStored.Values)
	}

	vals, err := s.ValuesByCode(ctx, "AP001")
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if vals["Energi"] != 1787 {
		t.Errorf("Energi: got %v, want 1787", vals["Energi"])
	}
	if vals["Air"] != 1.5 {
		t.Errorf("Air: got %v, want 1.5", vals["Air"])
	}

	food, err := s.FoodByCode(ctx, "AP001")
	if err != nil {
		t.Fatalf("food: %v", err)
	}
	if !food.BDD.Valid || food.BDD.Float64 != 100 {
		t.Errorf("bdd: got %+v", food.BDD)
	}
	if food.FoodGroup.String != "Serealia" || food.Source.String != "TKPI 2019" {
		t.Errorf("descriptive fields: %+v", food)
	}
}

func TestLoadOmitsAbsentValues(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	l := NewLoader(s, models.NutrientComponents, newTestLogger())

	row := fullRow("AP002", "Jagung kuning")
	row["Serat"] = "-"
	row["Abu"] = ""
	row["Niasin"] = "n/a"
	row["Vitamin C"] = 12.0
	row[models.FieldBDD] = "-"

	report, err := l.Load(ctx, []models.Row{row})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.ValuesWritten != 17 || report.ValuesAbsent != 4 {
		t.Errorf("written/absent: got %d/%d, want 17/4", report.ValuesWritten, report.ValuesAbsent)
	}
	if report.UnparseableValues != 1 {
		t.Errorf("unparseable: got %d, want 1", report.UnparseableValues)
	}

	vals, _ := s.ValuesByCode(ctx, "AP002")
	for _, name := range []string{"Serat", "Abu", "Niasin", "Vitamin C"} {
		if _, ok := vals[name]; ok {
			t.Errorf("%s should not be stored", name)
		}
	}

	food, _ := s.FoodByCode(ctx, "AP002")
	if food.BDD.Valid {
		t.Errorf("bdd should be NULL, got %v", food.BDD.Float64)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	l := NewLoader(s, models.NutrientComponents, newTestLogger())
	rows := []models.Row{fullRow("AP001", "Beras"), fullRow("AP002", "Jagung")}

	first, err := l.Load(ctx, rows)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	before, _ := s.FoodByCode(ctx, "AP001")

	second, err := l.Load(ctx, rows)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	after, _ := s.FoodByCode(ctx, "AP001")

	if first.Counts != second.Counts {
		t.Errorf("counts changed: %+v -> %+v", first.Counts, second.Counts)
	}
	if *before != *after {
		t.Errorf("food row changed: %+v -> %+v", before, after)
	}
}

func TestLoadOverwritesDescriptiveFields(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	l := NewLoader(s, models.NutrientComponents, newTestLogger())

	if _, err := l.Load(ctx, []models.Row{fullRow("AP001", "Beras")}); err != nil {
		t.Fatalf("first load: %v", err)
	}
	before, _ := s.FoodByCode(ctx, "AP001")

	changed := fullRow("AP001", "Beras giling")
	changed[models.FieldFoodGroup] = "Serealia dan hasil olahannya"
	changed["Protein"] = "-"
	report, err := l.Load(ctx, []models.Row{changed})
	if err != nil {
		t.Fatalf("second load: %v", err)
	}

	after, _ := s.FoodByCode(ctx, "AP001")
	if after.ID != before.ID {
		t.Errorf("id changed: %q -> %q", before.ID, after.ID)
	}
	if after.Name != "Beras giling" || after.FoodGroup.String != "Serealia dan hasil olahannya" {
		t.Errorf("fields not overwritten: %+v", after)
	}
	if report.Counts.Foods != 1 {
		t.Errorf("foods: got %d, want 1", report.Counts.Foods)
	}

	// A value that turns absent keeps the one stored by the earlier run.
	vals, _ := s.ValuesByCode(ctx, "AP001")
	if _, ok := vals["Protein"]; !ok {
		t.Error("earlier Protein value should be retained")
	}
}

// failingStore fails UpsertFood for one code.
type failingStore struct {
	failCode string
	upserts  []string
}

func (f *failingStore) SeedComponents(_ context.Context, cs []models.NutrientComponent) (map[string]int64, error) {
	lookup := make(map[string]int64, len(cs))
	for i, c := range cs {
		lookup[c.Name] = int64(i + 1)
	}
	return lookup, nil
}

func (f *failingStore) UpsertFood(_ context.Context, food *models.FoodItem, _ []models.NutrientValue) (string, error) {
	if food.Code == f.failCode {
		return "", errors.New("connection reset")
	}
	f.upserts = append(f.upserts, food.Code)
	return "id-" + food.Code, nil
}

func (f *failingStore) Counts(context.Context) (models.TableCounts, error) {
	return models.TableCounts{}, nil
}

func (f *failingStore) FoodByCode(_ context.Context, code string) (*models.FoodItem, error) {
	return &models.FoodItem{Code: code}, nil
}

func (f *failingStore) ValuesByCode(context.Context, string) (map[string]float64, error) {
	return nil, nil
}

func (f *failingStore) Close() error { return nil }

func TestLoadAbortsOnStoreError(t *testing.T) {
	store := &failingStore{failCode: "AP002"}
	l := NewLoader(store, models.NutrientComponents, newTestLogger())

	rows := []models.Row{fullRow("AP001", "a"), fullRow("AP002", "b"), fullRow("AP003", "c")}
	report, err := l.Load(context.Background(), rows)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "item #2") || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error should name the item and cause, got %v", err)
	}
	if len(store.upserts) != 1 || store.upserts[0] != "AP001" {
		t.Errorf("rows after the failure must not be processed, got %v", store.upserts)
	}
	if report == nil || report.RowsLoaded != 1 {
		t.Errorf("report should reflect the committed row, got %+v", report)
	}
	if report != nil && report.LastStored != nil {
		t.Error("an aborted run should not read back an item")
	}
}

func TestLoadWithoutLoadedRowsHasNoLastStored(t *testing.T) {
	s := newSQLiteStore(t)
	report, err := NewLoader(s, models.NutrientComponents, newTestLogger()).Load(context.Background(), []models.Row{{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.RowsSkipped != 1 || report.LastStored != nil {
		t.Errorf("report: %+v", report)
	}
}

func TestLoadReadsExtractorOutput(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tkpi.json")

	raw := make(models.RawRow, 0, len(models.Header))
	for _, h := range models.Header {
		v := "2,5"
		switch h {
		case models.FieldCode:
			v = "AP001"
		case models.FieldName:
			v = "Beras"
		case models.FieldRawOrProcessed, models.FieldFoodGroup, models.FieldSource:
			v = "x"
		}
		raw = append(raw, models.Field{Name: h, Value: v})
	}
	if err := storage.WriteRowsJSON(path, []models.RawRow{raw}); err != nil {
		t.Fatalf("write json: %v", err)
	}

	rows, err := storage.ReadRowsJSON(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}

	s := newSQLiteStore(t)
	report, err := NewLoader(s, models.NutrientComponents, newTestLogger()).Load(ctx, rows)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.RowsLoaded != 1 || report.ValuesWritten != 21 {
		t.Errorf("report: %+v", report)
	}
}

func TestReportPrint(t *testing.T) {
	var out bytes.Buffer
	NewReportServiceTo(&out).Print(&models.LoadReport{
		RowsRead:      2,
		RowsLoaded:    1,
		RowsSkipped:   1,
		ValuesWritten: 21,
		Counts:        models.TableCounts{Components: 21, Foods: 1, Values: 21},
		LastStored: &models.StoredItem{
			Food:   &models.FoodItem{Code: "AP001", Name: "Beras giling, mentah"},
			Values: map[string]float64{"Energi": 357, "Air": 12},
		},
	})

	text := out.String()
	for _, want := range []string{
		"TKPI IMPORT SUMMARY", "Items skipped", "nilai_gizi", "21",
		"Last item stored", "AP001", "Beras giling, mentah", "357 kcal",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
