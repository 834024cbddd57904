package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/smartmart/internal/api"
)

// Data is everything the consolidated report is rendered from.
type Data struct {
	Products   []api.Product
	Categories []api.Category
	Sales      []api.Sale
	Stats      api.DashboardStats
}

// Summary labels written to and read back from the summary sheet.
const (
	LabelReportDate   = "Data do Relatório"
	LabelSalesCount   = "Total de Vendas"
	LabelRevenue      = "Receita Total"
	LabelProductCount = "Produtos Cadastrados"
	LabelCategories   = "Categorias Ativas"
)

const (
	headerColor = "1F4E78"
	moneyFormat = `"R$" #,##0.00`
)

// Build renders the consolidated workbook: a summary sheet followed by one
// sheet per listing.
func Build(d Data, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range ExpectedSheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	format := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	if err := writeSummary(f, d, now); err != nil {
		return nil, err
	}

	products := make([][]any, len(d.Products))
	for i, p := range d.Products {
		products[i] = []any{p.ID, p.Name, deref(p.Description), p.Price, deref(p.Brand), p.CategoryID}
	}
	if err := writeTable(f, SheetProducts, headerStyle, moneyStyle, 4,
		[]string{"ID", "Nome", "Descrição", "Preço", "Marca", "Categoria ID"}, products); err != nil {
		return nil, err
	}

	categories := make([][]any, len(d.Categories))
	for i, c := range d.Categories {
		categories[i] = []any{c.ID, c.Name}
	}
	if err := writeTable(f, SheetCategories, headerStyle, moneyStyle, 0,
		[]string{"ID", "Nome"}, categories); err != nil {
		return nil, err
	}

	sales := make([][]any, len(d.Sales))
	for i, s := range d.Sales {
		sales[i] = []any{s.ID, s.ProductID, s.Quantity, s.TotalPrice, s.Date}
	}
	if err := writeTable(f, SheetSales, headerStyle, moneyStyle, 4,
		[]string{"ID", "Produto ID", "Quantidade", "Total (R$)", "Data"}, sales); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, d Data, now time.Time) error {
	cells := []struct {
		cell  string
		value any
	}{
		{"A1", "RELATÓRIO SMARTMART SOLUTIONS"},
		{"A3", LabelReportDate + ":"},
		{"B3", now.Format("02/01/2006 15:04")},
		{"A5", "RESUMO EXECUTIVO"},
		{"A6", LabelSalesCount},
		{"B6", d.Stats.TotalSalesCount},
		{"A7", LabelRevenue},
		{"B7", FormatBRL(decimal.NewFromFloat(d.Stats.TotalRevenue))},
		{"A8", LabelProductCount},
		{"B8", len(d.Products)},
		{"A9", LabelCategories},
		{"B9", len(d.Categories)},
	}
	for _, c := range cells {
		if err := f.SetCellValue(SheetSummary, c.cell, c.value); err != nil {
			return fmt.Errorf("summary %s: %w", c.cell, err)
		}
	}
	if err := f.MergeCell(SheetSummary, "A1", "D1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	return f.SetColWidth(SheetSummary, "A", "B", 25)
}

// writeTable writes a header row and data rows starting at A1. moneyCol is
// the 1-based column formatted as currency, 0 for none. Empty tables get no
// header, like the backend export.
func writeTable(f *excelize.File, sheet string, headerStyle, moneyStyle, moneyCol int, headers []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for r, row := range rows {
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, r+2, err)
		}
	}

	if moneyCol > 0 {
		top, _ := excelize.CoordinatesToCellName(moneyCol, 2)
		bottom, _ := excelize.CoordinatesToCellName(moneyCol, len(rows)+1)
		if err := f.SetCellStyle(sheet, top, bottom, moneyStyle); err != nil {
			return fmt.Errorf("%s money style: %w", sheet, err)
		}
	}
	return nil
}

// FormatBRL renders an amount as "R$ 1,234.56".
func FormatBRL(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s.%s", sign, b.String(), frac)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
