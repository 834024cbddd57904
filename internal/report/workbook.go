// Package report reads and writes the consolidated SmartMart workbook.
//
// The backend renders the workbook; the console checks it with Inspect
// before handing it to the user, and Build renders the same layout locally
// from API listings when the backend export is unavailable.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidWorkbook is returned for bytes that are not the expected report.
var ErrInvalidWorkbook = errors.New("invalid workbook")

// Sheet names of the consolidated report, in order.
const (
	SheetSummary    = "Resumo"
	SheetProducts   = "Produtos"
	SheetCategories = "Categorias"
	SheetSales      = "Vendas"
)

// ExpectedSheets lists the sheets every report must contain.
var ExpectedSheets = []string{SheetSummary, SheetProducts, SheetCategories, SheetSales}

// SheetInfo describes one sheet of an inspected workbook.
type SheetInfo struct {
	Name     string `json:"name"`
	DataRows int    `json:"data_rows"` // Rows below the header row
	Columns  int    `json:"columns"`
}

// Summary is what Inspect learned about a workbook.
type Summary struct {
	Sheets []SheetInfo       `json:"sheets"`
	Totals map[string]string `json:"totals,omitempty"` // Label -> value from the summary sheet
	Size   int               `json:"size"`
}

// Sheet returns the info for name.
func (s *Summary) Sheet(name string) (SheetInfo, bool) {
	for _, sh := range s.Sheets {
		if sh.Name == name {
			return sh, true
		}
	}
	return SheetInfo{}, false
}

// Inspect opens data as an XLSX workbook, checks that the report sheets are
// present and summarizes them.
func Inspect(data []byte) (*Summary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidWorkbook)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	var missing []string
	for _, name := range ExpectedSheets {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing sheets %s", ErrInvalidWorkbook, strings.Join(missing, ", "))
	}

	summary := &Summary{Size: len(data)}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %s: %v", ErrInvalidWorkbook, name, err)
		}

		info := SheetInfo{Name: name}
		for _, row := range rows {
			if len(row) > info.Columns {
				info.Columns = len(row)
			}
		}
		if name != SheetSummary && len(rows) > 1 {
			info.DataRows = len(rows) - 1
		}
		summary.Sheets = append(summary.Sheets, info)

		if name == SheetSummary {
			summary.Totals = readTotals(rows)
		}
	}

	return summary, nil
}

// readTotals picks the label/value pairs of the summary block.
func readTotals(rows [][]string) map[string]string {
	totals := make(map[string]string)
	for _, row := range rows {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			continue
		}
		label := strings.TrimSuffix(strings.TrimSpace(row[0]), ":")
		totals[label] = strings.TrimSpace(row[1])
	}
	return totals
}
