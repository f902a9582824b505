package services

import (
	"fmt"
	"io"
	"os"
	"strings"

	"tkpi-etl/models"
)

// ReportService renders the summary of a loader run.
type ReportService struct {
	out io.Writer
}

func NewReportService() *ReportService {
	return &ReportService{out: os.Stdout}
}

// NewReportServiceTo creates a ReportService writing to w.
func NewReportServiceTo(w io.Writer) *ReportService {
	return &ReportService{out: w}
}

func (s *ReportService) Print(r *models.LoadReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	w := s.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  TKPI IMPORT SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Input\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Items read        : \033[1m%d\033[0m\n", r.RowsRead)
	fmt.Fprintf(w, "  Items loaded      : \033[1m%d\033[0m\n", r.RowsLoaded)
	fmt.Fprintf(w, "  Items skipped     : \033[1m%d\033[0m\n", r.RowsSkipped)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Nutrient values\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Written           : \033[1;32m%d\033[0m\n", r.ValuesWritten)
	fmt.Fprintf(w, "  Blank or \"-\"      : \033[1m%d\033[0m\n", r.ValuesAbsent)
	fmt.Fprintf(w, "  Unparseable       : \033[1;31m%d\033[0m\n", r.UnparseableValues)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Database rows\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  %-18s %d\n", "komponen_gizi", r.Counts.Components)
	fmt.Fprintf(w, "  %-18s %d\n", "tkpi", r.Counts.Foods)
	fmt.Fprintf(w, "  %-18s %d\n", "nilai_gizi", r.Counts.Values)

	if item := r.LastStored; item != nil && item.Food != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "\033[1;33m  Last item stored\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  kode_baru         : %s\n", item.Food.Code)
		fmt.Fprintf(w, "  Name              : %s\n", item.Food.Name)
		fmt.Fprintf(w, "  Values stored     : %d\n", len(item.Values))
		if v, ok := item.Values["Energi"]; ok {
			fmt.Fprintf(w, "  Energi            : %g kcal\n", v)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}
