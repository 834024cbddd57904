package api

import (
	"context"
	"fmt"
)

// Fallback download names when the backend sends no Content-Disposition.
const (
	ReportFileName         = "smartmart-report.xlsx"
	ProductsReportFileName = "produtos.csv"
	SalesReportFileName    = "vendas.csv"
	CollectionFileName     = "SmartMart.postman_collection.json"
)

// ExportXLSX downloads the consolidated spreadsheet report.
func (c *Client) ExportXLSX(ctx context.Context) (*Download, error) {
	d, err := c.download(ctx, "/reports/export.xlsx", ReportFileName)
	if err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	return d, nil
}

// ExportProductsCSV downloads the server-rendered products CSV.
func (c *Client) ExportProductsCSV(ctx context.Context) (*Download, error) {
	d, err := c.download(ctx, "/reports/export-products.csv", ProductsReportFileName)
	if err != nil {
		return nil, fmt.Errorf("export products csv: %w", err)
	}
	return d, nil
}

// ExportSalesCSV downloads the server-rendered sales CSV.
func (c *Client) ExportSalesCSV(ctx context.Context) (*Download, error) {
	d, err := c.download(ctx, "/reports/export-sales.csv", SalesReportFileName)
	if err != nil {
		return nil, fmt.Errorf("export sales csv: %w", err)
	}
	return d, nil
}

// Collection downloads the API-client collection descriptor.
func (c *Client) Collection(ctx context.Context) (*Download, error) {
	d, err := c.download(ctx, "/postman/collection", CollectionFileName)
	if err != nil {
		return nil, fmt.Errorf("download collection: %w", err)
	}
	return d, nil
}
