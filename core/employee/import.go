package employee

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"
)

const maxImportRows = 10000

var (
	ErrNoWorksheet    = errors.New("no worksheet found")
	ErrEmptyWorksheet = errors.New("worksheet is empty")
	ErrMissingColumns = errors.New("header row must contain the columns namn, personnummer, lon and avdelning")

	requiredColumns = []string{"namn", "personnummer", "lon", "avdelning"}
	columnAliases   = map[string]string{
		"name":        "namn",
		"lön":         "lon",
		"salary":      "lon",
		"department":  "avdelning",
		"e-post":      "epost",
		"email":       "epost",
		"personal id": "personnummer",
	}
)

// ParsedRow is a spreadsheet row mapped to a NewEmployee, not validated yet.
type ParsedRow struct {
	Row         int
	NewEmployee NewEmployee
}

// ReadSpreadsheet returns the cells of the first worksheet of an xlsx (default) or legacy xls file.
func ReadSpreadsheet(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading spreadsheet")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, errors.Wrap(err, "opening xls workbook")
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrNoWorksheet
		}
		rows := workbook.ReadAllCells(maxImportRows)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "opening xlsx workbook")
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, ErrNoWorksheet
		}
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, errors.Wrap(err, "reading xlsx rows")
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	}
}

func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if alias, ok := columnAliases[h]; ok {
		return alias
	}
	return h
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseRows maps the rows following the header row to NewEmployees.
// Blank rows are skipped; rows with an unreadable salary are reported as errors.
func ParseRows(rows [][]string) ([]ParsedRow, []ImportError) {
	if len(rows) == 0 {
		return nil, []ImportError{{Row: 1, Detail: ErrEmptyWorksheet.Error()}}
	}

	cols := map[string]int{"epost": -1}
	for idx, header := range rows[0] {
		cols[normalizeHeader(header)] = idx
	}
	for _, col := range requiredColumns {
		if _, ok := cols[col]; !ok {
			return nil, []ImportError{{Row: 1, Detail: ErrMissingColumns.Error()}}
		}
	}

	parsed := make([]ParsedRow, 0, len(rows)-1)
	var errs []ImportError
	for i, row := range rows[1:] {
		rowNum := i + 2
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}

		ne := NewEmployee{
			Namn:         cellValue(row, cols["namn"]),
			Personnummer: cellValue(row, cols["personnummer"]),
			Avdelning:    cellValue(row, cols["avdelning"]),
		}
		if epost := cellValue(row, cols["epost"]); epost != "" {
			ne.Epost = null.StringFrom(epost)
		}
		if lon := normalizeAmount(cellValue(row, cols["lon"])); lon != "" {
			d, err := decimal.NewFromString(lon)
			if err != nil {
				errs = append(errs, ImportError{Row: rowNum, Detail: "lon: invalid amount"})
				continue
			}
			ne.Lon = decimal.NewNullDecimal(d)
		}
		parsed = append(parsed, ParsedRow{Row: rowNum, NewEmployee: ne})
	}
	return parsed, errs
}

// normalizeAmount accepts Swedish formatted amounts: "35 000,50" and "35000.50" are equivalent.
func normalizeAmount(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), "kr")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
