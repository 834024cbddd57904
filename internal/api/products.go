package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListProducts returns every product.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.doJSON(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// CreateProduct creates a product and returns it with its id.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodPost, "/products", in, &out); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &out, nil
}

// UpdateProduct replaces product id.
func (c *Client) UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), in, &out); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &out, nil
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}
