package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.doJSON(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	var out Category
	if err := c.doJSON(ctx, http.MethodPost, "/categories", in, &out); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &out, nil
}

// UpdateCategory replaces category id.
func (c *Client) UpdateCategory(ctx context.Context, id int, in CategoryInput) (*Category, error) {
	var out Category
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), in, &out); err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return &out, nil
}
