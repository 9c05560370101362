package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/belegwerk/belegscan/internal/model"
)

// WriteXLSX writes results as a single-sheet XLSX workbook. Found amounts
// become numeric cells so spreadsheet formulas work on them directly.
func WriteXLSX(results []model.Result, outputPath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Belege")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().Value = col
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().Value = r.FileName
		row.AddCell().Value = r.RawAmount
		if r.NormalizedAmount != nil {
			row.AddCell().SetFloatWithFormat(*r.NormalizedAmount, "0.00")
		} else {
			row.AddCell().Value = ""
		}
		row.AddCell().Value = r.Period
	}

	return eris.Wrap(file.Save(outputPath), "export: save xlsx")
}
