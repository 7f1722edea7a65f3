package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Rapport"

var rowHeaders = []interface{}{"Anställd ID", "Namn", "Avdelning", "Bruttolön", "Skatt", "Nettolön", "Semesterdagar"}

// WriteXLSX writes the report as an excel workbook with a single "Rapport" sheet: a summary followed by one row per employee.
func WriteXLSX(rep Monthly, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	summary := [][]interface{}{
		{"Månadsrapport", rep.Year, rep.Month},
		{"Antal anställda", rep.AntalAnstallda},
		{"Total lönekostnad", rep.TotalLonekostnad.InexactFloat64()},
		{"Total skatt", rep.TotalSkatt.InexactFloat64()},
		{"Total nettolön", rep.TotalNettolon.InexactFloat64()},
		{"Semesteruttag (dagar)", rep.SemesterUttagDagar},
		{},
		rowHeaders,
	}
	for _, r := range rep.Rader {
		summary = append(summary, []interface{}{
			r.EmployeeID, r.Namn, r.Avdelning, r.Bruttolon.InexactFloat64(), r.Skatt.InexactFloat64(), r.Nettolon.InexactFloat64(), r.SemesterDagar,
		})
	}

	for i, values := range summary {
		if len(values) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		if err = f.SetSheetRow(sheetName, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheetName, "A1", "A6", style)
		_ = f.SetRowStyle(sheetName, 8, 8, style)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "C", 24)
	_ = f.SetColWidth(sheetName, "D", "G", 14)

	return errors.Wrap(f.Write(w), "writing workbook")
}
