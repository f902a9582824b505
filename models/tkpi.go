package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
)

// Field names that the loader treats as identity or descriptive attributes
// rather than nutrient components.
const (
	FieldNumber         = "nomor"
	FieldCode           = "kode_baru"
	FieldName           = "nama_bahan_makanan"
	FieldBDD            = "BDD"
	FieldRawOrProcessed = "mentah_olahan"
	FieldFoodGroup      = "kelompok_makanan"
	FieldSource         = "sumber"
)

// Header is the ordered column layout of the TKPI composition table.
var Header = []string{
	FieldNumber, FieldCode, FieldName, "Air", "Energi", "Protein", "Lemak", "Karbohidrat", "Serat", "Abu",
	"Kalsium (Ca)", "Fosfor (P)", "Besi (Fe)", "Natrium (Na)", "Kalium (Ka)", "Tembaga (Cu)", "Seng (Zn)",
	"Retinol (vit. A)", "β-karoten", "Karoten total", "Thiamin (vit. B1)", "Riboflavin (vit. B2)", "Niasin",
	"Vitamin C", FieldBDD, FieldRawOrProcessed, FieldFoodGroup, FieldSource,
}

// Field is one named cell of a scraped row.
type Field struct {
	Name  string
	Value string
}

// RawRow holds one scraped table row in header order. It is what the
// extractor writes to JSON, one object per food item.
type RawRow []Field

// Get returns the value stored under name.
func (r RawRow) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes the row as an object whose keys keep header order.
func (r RawRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(f.Name); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		if err := enc.Encode(f.Value); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Row is one JSON object as read back by the loader. Values keep whatever
// JSON type the file carried.
type Row map[string]any

// FoodItem is a row of the tkpi table.
type FoodItem struct {
	ID             string          `db:"id"`
	Code           string          `db:"kode_baru"`
	Name           string          `db:"nama_bahan_makanan"`
	BDD            sql.NullFloat64 `db:"bdd"`
	RawOrProcessed sql.NullString  `db:"mentah_olahan"`
	FoodGroup      sql.NullString  `db:"kelompok_makanan"`
	Source         sql.NullString  `db:"sumber"`
}

// NutrientValue is a row of the nilai_gizi table.
type NutrientValue struct {
	ID          string  `db:"id"`
	FoodID      string  `db:"tkpi_id"`
	ComponentID int64   `db:"komponen_gizi_id"`
	Value       float64 `db:"nilai"`
}

// TableCounts holds row counts of the three TKPI tables.
type TableCounts struct {
	Components int64
	Foods      int64
	Values     int64
}

// LoadReport summarises one loader run.
type LoadReport struct {
	RowsRead          int
	RowsLoaded        int
	RowsSkipped       int
	ValuesWritten     int
	ValuesAbsent      int
	UnparseableValues int
	Counts            TableCounts

	// LastStored is the last loaded item as read back from the database.
	LastStored *StoredItem
}

// StoredItem is a food item together with its stored values keyed by
// component name.
type StoredItem struct {
	Food   *FoodItem
	Values map[string]float64
}
