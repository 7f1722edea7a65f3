package payslip

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/lonesystem/core"
)

const (
	pageMargin = 20.0
	labelWidth = 110.0
	valueWidth = 60.0
	rowHeight  = 9.0
)

// header color: #0ea5e9
var accent = [3]int{14, 165, 233}

// RenderPDF renders the payslip as an A4 PDF document.
func RenderPDF(p Payslip) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetCreationDate(time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC))
	pdf.SetTitle("Lönespecifikation "+p.Period(), true)
	pdf.SetAuthor("Lönesystem", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252: å, ä, ö

	// title
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(0, 12, tr("LÖNESPEC"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(71, 85, 105)
	pdf.CellFormat(0, 8, tr(p.Period()), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	// employee info
	pdf.SetTextColor(30, 41, 59)
	info := [][2]string{
		{"Namn", p.Employee.Namn},
		{"Personnummer", p.Employee.Personnummer},
		{"Avdelning", p.Employee.Avdelning},
	}
	for _, row := range info {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, rowHeight, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, rowHeight, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// salary table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(labelWidth, rowHeight, tr("Beskrivning"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueWidth, rowHeight, tr("Belopp (kr)"), "1", 1, "R", true, 0, "")

	deductions := p.Tax.TotalSkatt.Neg()
	rows := []struct {
		label string
		value decimal.Decimal
		bold  bool
	}{
		{"Bruttolön", p.Tax.Manadslon, false},
		{"Kommunalskatt (" + p.municipalPercent + "%)", p.Tax.Kommunalskatt.Neg(), false},
		{"Statlig skatt (" + p.statePercent + "% över " + p.stateThreshold + " kr/år)", p.Tax.StatligSkatt.Neg(), false},
		{"Totala avdrag", deductions, true},
		{"Nettolön", p.Tax.Nettolon, true},
	}
	pdf.SetTextColor(30, 41, 59)
	for i, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		fill := i%2 == 1
		pdf.SetFillColor(241, 245, 249)
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(labelWidth, rowHeight, tr(row.label), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(valueWidth, rowHeight, tr(core.FormatSEK(row.value)), "1", 1, "R", fill, 0, "")
	}

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.MultiCell(0, 5, tr("Skatten är beräknad enligt en förenklad modell och utgör ingen slutlig skatteberäkning."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "rendering payslip pdf")
	}
	return buf.Bytes(), nil
}
