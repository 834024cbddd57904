package api

import "github.com/JonMunkholm/smartmart/internal/core"

// Product as returned by the backend.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Brand       *string `json:"brand,omitempty"`
	CategoryID  int     `json:"category_id"`
	Stock       *int    `json:"stock,omitempty"`
}

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Brand       *string `json:"brand,omitempty"`
	CategoryID  int     `json:"category_id"`
}

// Category as returned by the backend.
type Category struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Sale as returned by the backend. Date is YYYY-MM-DD.
type Sale struct {
	ID         int     `json:"id"`
	ProductID  int     `json:"product_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Date       string  `json:"date"`
}

// SaleInput is the create payload for a sale.
type SaleInput struct {
	ProductID  int     `json:"product_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Date       string  `json:"date"`
}

// SaleUpdate is the inline-edit payload for an existing sale. ProductID is
// left zero by the sales page, which only edits quantity, price and date.
type SaleUpdate struct {
	ProductID  int     `json:"product_id,omitempty"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Date       string  `json:"date"`
}

// DashboardStats is the backend's aggregate sales summary.
type DashboardStats struct {
	TotalSalesCount int     `json:"total_sales_count"`
	TotalRevenue    float64 `json:"total_revenue"`
}

// ImportResult is returned by the CSV import endpoint.
type ImportResult struct {
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
}

// ToRecord flattens a product for the CSV encoder.
func (p Product) ToRecord() core.Record {
	return core.Record{
		"id":          p.ID,
		"name":        p.Name,
		"category_id": p.CategoryID,
		"price":       p.Price,
		"stock":       p.Stock,
		"description": p.Description,
		"brand":       p.Brand,
	}
}

// ToRecord flattens a category for the CSV encoder.
func (c Category) ToRecord() core.Record {
	return core.Record{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
	}
}

// ToRecord flattens a sale for the CSV encoder.
func (s Sale) ToRecord() core.Record {
	return core.Record{
		"id":          s.ID,
		"product_id":  s.ProductID,
		"quantity":    s.Quantity,
		"total_price": s.TotalPrice,
		"date":        s.Date,
	}
}

// ProductRecords converts a product listing for export.
func ProductRecords(products []Product) []core.Record {
	out := make([]core.Record, len(products))
	for i, p := range products {
		out[i] = p.ToRecord()
	}
	return out
}

// CategoryRecords converts a category listing for export.
func CategoryRecords(categories []Category) []core.Record {
	out := make([]core.Record, len(categories))
	for i, c := range categories {
		out[i] = c.ToRecord()
	}
	return out
}

// SaleRecords converts a sales listing for export.
func SaleRecords(sales []Sale) []core.Record {
	out := make([]core.Record, len(sales))
	for i, s := range sales {
		out[i] = s.ToRecord()
	}
	return out
}
