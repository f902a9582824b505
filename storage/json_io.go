package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tkpi-etl/models"
)

// WriteRowsJSON writes rows to path as a two-space indented JSON array.
// Non-ASCII text and HTML characters are written as-is.
func WriteRowsJSON(path string, rows []models.RawRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("json: create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("json: create file %q: %w", path, err)
	}

	if rows == nil {
		rows = []models.RawRow{}
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("json: encode rows: %w", err)
	}
	return f.Close()
}

// ReadRowsJSON reads a JSON array of row objects from path.
func ReadRowsJSON(path string) ([]models.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}

	var rows []models.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("json: parse %q: %w", path, err)
	}
	return rows, nil
}
