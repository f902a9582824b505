package tkpi

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tkpi-etl/models"
	"tkpi-etl/utils"
)

// Extractor converts TKPI composition tables into rows keyed by a fixed header.
type Extractor struct {
	header []string
	logger *utils.Logger
}

// New creates an Extractor for the standard TKPI header.
func New(logger *utils.Logger) *Extractor {
	return NewWithHeader(models.Header, logger)
}

// NewWithHeader creates an Extractor that accepts rows with exactly
// len(header) cells.
func NewWithHeader(header []string, logger *utils.Logger) *Extractor {
	return &Extractor{header: header, logger: logger}
}

// ExtractFile reads and parses a saved HTML page.
func (e *Extractor) ExtractFile(path string) ([]models.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tkpi: open %q: %w", path, err)
	}
	defer f.Close()

	return e.Extract(f)
}

// Extract parses HTML and returns every table row whose cell count equals
// the header length, in document order. Other rows are skipped.
func (e *Extractor) Extract(r io.Reader) ([]models.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("tkpi: parse html: %w", err)
	}

	rows := make([]models.RawRow, 0)
	skipped := 0

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() != len(e.header) {
			skipped++
			return
		}

		row := make(models.RawRow, 0, len(e.header))
		cells.Each(func(i int, td *goquery.Selection) {
			row = append(row, models.Field{Name: e.header[i], Value: e.cellText(i, td)})
		})
		rows = append(rows, row)
	})

	e.logger.Debug("[tkpi] %d rows matched, %d rows skipped", len(rows), skipped)
	return rows, nil
}

// cellText returns the trimmed cell text. The food name column is often
// wrapped in a link to the detail page; the link text wins when present.
func (e *Extractor) cellText(i int, td *goquery.Selection) string {
	if e.header[i] == models.FieldName {
		if a := td.Find("a").First(); a.Length() > 0 {
			return strings.TrimSpace(a.Text())
		}
	}
	return strings.TrimSpace(td.Text())
}
