package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/belegwerk/belegscan/internal/model"
)

// WriteCSV writes results as a CSV file with a header row.
func WriteCSV(results []model.Result, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range results {
		if err := w.Write(buildRow(r)); err != nil {
			return eris.Wrapf(err, "export: write row for %s", r.FileName)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}
