package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"tkpi-etl/models"
)

var _ RowWriter = (*CSVWriter)(nil)

// CSVWriter writes scraped rows to a CSV file for spreadsheet review.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	header []string
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w, header: header}, nil
}

// WriteRows writes one line per row with cells in header order. Fields a
// row does not carry are left empty.
func (c *CSVWriter) WriteRows(rows []models.RawRow) error {
	line := make([]string, len(c.header))
	for _, r := range rows {
		for i, name := range c.header {
			line[i], _ = r.Get(name)
		}
		if err := c.writer.Write(line); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
