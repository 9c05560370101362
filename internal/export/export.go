package export

import (
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/belegwerk/belegscan/internal/model"
)

// Formats supported by Write.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// columns defines the ordered output columns.
var columns = []string{"file_name", "raw_amount", "normalized_amount", "period"}

// Write renders results to outputPath in the given format.
func Write(results []model.Result, outputPath, format string) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(results, outputPath)
	case FormatXLSX:
		return WriteXLSX(results, outputPath)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

// buildRow maps a Result to its output cells.
func buildRow(r model.Result) []string {
	return []string{r.FileName, r.RawAmount, formatAmount(r.NormalizedAmount), r.Period}
}

// formatAmount renders the value with two decimals and a dot separator,
// or empty when no amount was found.
func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
