package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListSales returns every sale.
func (c *Client) ListSales(ctx context.Context) ([]Sale, error) {
	var out []Sale
	if err := c.doJSON(ctx, http.MethodGet, "/sales", nil, &out); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return out, nil
}

// CreateSale records a sale.
func (c *Client) CreateSale(ctx context.Context, in SaleInput) (*Sale, error) {
	var out Sale
	if err := c.doJSON(ctx, http.MethodPost, "/sales", in, &out); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return &out, nil
}

// UpdateSale edits sale id.
func (c *Client) UpdateSale(ctx context.Context, id int, in SaleUpdate) (*Sale, error) {
	var out Sale
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/sales/%d", id), in, &out); err != nil {
		return nil, fmt.Errorf("update sale %d: %w", id, err)
	}
	return &out, nil
}

// Stats returns the dashboard sales summary.
func (c *Client) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.doJSON(ctx, http.MethodGet, "/dashboard/stats", nil, &out); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &out, nil
}
