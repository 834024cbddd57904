package pages

import (
	"context"
	"io"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
)

// Backend is the part of the REST client the controllers use.
// *api.Client implements it.
type Backend interface {
	ListProducts(ctx context.Context) ([]api.Product, error)
	CreateProduct(ctx context.Context, in api.ProductInput) (*api.Product, error)
	UpdateProduct(ctx context.Context, id int, in api.ProductInput) (*api.Product, error)
	DeleteProduct(ctx context.Context, id int) error

	ListCategories(ctx context.Context) ([]api.Category, error)
	CreateCategory(ctx context.Context, in api.CategoryInput) (*api.Category, error)
	UpdateCategory(ctx context.Context, id int, in api.CategoryInput) (*api.Category, error)

	ListSales(ctx context.Context) ([]api.Sale, error)
	CreateSale(ctx context.Context, in api.SaleInput) (*api.Sale, error)
	UpdateSale(ctx context.Context, id int, in api.SaleUpdate) (*api.Sale, error)
	Stats(ctx context.Context) (*api.DashboardStats, error)

	UploadCSV(ctx context.Context, kind core.Kind, filename string, r io.Reader) (*api.ImportResult, error)

	ExportXLSX(ctx context.Context) (*api.Download, error)
	ExportProductsCSV(ctx context.Context) (*api.Download, error)
	ExportSalesCSV(ctx context.Context) (*api.Download, error)
	Collection(ctx context.Context) (*api.Download, error)
}

var _ Backend = (*api.Client)(nil)
