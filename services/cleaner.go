package services

import (
	"database/sql"
	"math"
	"strconv"
	"strings"

	"tkpi-etl/utils"
)

// notMeasured marks a value the source table leaves blank on purpose.
const notMeasured = "-"

// Cleaner turns locale-formatted TKPI cell values into typed values.
type Cleaner struct {
	logger      *utils.Logger
	unparseable int
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// ParseDecimal converts an Indonesian-formatted number such as "1.787,0"
// (dot thousands separator, comma decimal separator) to a float64.
// It reports false for non-string input, blank cells, "-" and anything that
// does not parse to a finite number.
func (c *Cleaner) ParseDecimal(v any) (float64, bool) {
	raw, ok := v.(string)
	if !ok {
		return 0, false
	}

	s := strings.TrimSpace(raw)
	if s == "" || s == notMeasured {
		return 0, false
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		c.unparseable++
		c.logger.Warn("[cleaner] Cannot convert value %q to a number", raw)
		return 0, false
	}
	return f, true
}

// Text trims a descriptive cell value. Non-string and blank values are NULL.
func (c *Cleaner) Text(v any) sql.NullString {
	s, ok := v.(string)
	if !ok {
		return sql.NullString{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Unparseable returns how many values ParseDecimal rejected with a warning.
func (c *Cleaner) Unparseable() int {
	return c.unparseable
}
