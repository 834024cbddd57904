package pages

import (
	"context"
	"io"
	"sync"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
)

type stubUpload struct {
	kind core.Kind
	name string
	body string
}

// stubBackend is an in-memory Backend. errs is keyed by method name.
type stubBackend struct {
	mu         sync.Mutex
	products   []api.Product
	categories []api.Category
	sales      []api.Sale
	stats      api.DashboardStats
	xlsx       []byte
	errs       map[string]error
	calls      map[string]int
	uploads    []stubUpload
	created    []api.SaleInput

	// listProducts, when set, replaces ListProducts; n is the 1-based call number.
	listProducts func(ctx context.Context, n int) ([]api.Product, error)
}

func newStub() *stubBackend {
	return &stubBackend{
		products: []api.Product{
			{ID: 1, Name: "TV", Price: 2999.9, CategoryID: 1, Brand: strPtr("Acme")},
			{ID: 2, Name: "Radio", Price: 150, CategoryID: 2},
		},
		categories: []api.Category{{ID: 1, Name: "Eletrônicos"}, {ID: 2, Name: "Áudio"}},
		sales: []api.Sale{
			{ID: 1, ProductID: 1, Quantity: 1, TotalPrice: 2999.9, Date: "2024-01-10"},
			{ID: 2, ProductID: 2, Quantity: 2, TotalPrice: 300, Date: "2024-01-09"},
		},
		stats: api.DashboardStats{TotalSalesCount: 2, TotalRevenue: 3299.9},
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func strPtr(s string) *string { return &s }

func (s *stubBackend) hit(method string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	return s.calls[method], s.errs[method]
}

func (s *stubBackend) setErr(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[method] = err
}

func (s *stubBackend) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *stubBackend) ListProducts(ctx context.Context) ([]api.Product, error) {
	n, err := s.hit("ListProducts")
	if s.listProducts != nil {
		return s.listProducts(ctx, n)
	}
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Product(nil), s.products...), nil
}

func (s *stubBackend) CreateProduct(_ context.Context, in api.ProductInput) (*api.Product, error) {
	if _, err := s.hit("CreateProduct"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := api.Product{ID: len(s.products) + 1, Name: in.Name, Price: in.Price, CategoryID: in.CategoryID, Brand: in.Brand}
	s.products = append(s.products, p)
	return &p, nil
}

func (s *stubBackend) UpdateProduct(_ context.Context, id int, in api.ProductInput) (*api.Product, error) {
	if _, err := s.hit("UpdateProduct"); err != nil {
		return nil, err
	}
	return &api.Product{ID: id, Name: in.Name, Price: in.Price, CategoryID: in.CategoryID}, nil
}

func (s *stubBackend) DeleteProduct(_ context.Context, id int) error {
	_, err := s.hit("DeleteProduct")
	return err
}

func (s *stubBackend) ListCategories(context.Context) ([]api.Category, error) {
	if _, err := s.hit("ListCategories"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Category(nil), s.categories...), nil
}

func (s *stubBackend) CreateCategory(_ context.Context, in api.CategoryInput) (*api.Category, error) {
	if _, err := s.hit("CreateCategory"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := api.Category{ID: len(s.categories) + 1, Name: in.Name}
	s.categories = append(s.categories, c)
	return &c, nil
}

func (s *stubBackend) UpdateCategory(_ context.Context, id int, in api.CategoryInput) (*api.Category, error) {
	if _, err := s.hit("UpdateCategory"); err != nil {
		return nil, err
	}
	return &api.Category{ID: id, Name: in.Name}, nil
}

func (s *stubBackend) ListSales(context.Context) ([]api.Sale, error) {
	if _, err := s.hit("ListSales"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Sale(nil), s.sales...), nil
}

func (s *stubBackend) CreateSale(_ context.Context, in api.SaleInput) (*api.Sale, error) {
	if _, err := s.hit("CreateSale"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, in)
	sale := api.Sale{ID: len(s.sales) + 1, ProductID: in.ProductID, Quantity: in.Quantity, TotalPrice: in.TotalPrice, Date: in.Date}
	s.sales = append(s.sales, sale)
	return &sale, nil
}

func (s *stubBackend) UpdateSale(_ context.Context, id int, in api.SaleUpdate) (*api.Sale, error) {
	if _, err := s.hit("UpdateSale"); err != nil {
		return nil, err
	}
	return &api.Sale{ID: id, Quantity: in.Quantity, TotalPrice: in.TotalPrice, Date: in.Date}, nil
}

func (s *stubBackend) Stats(context.Context) (*api.DashboardStats, error) {
	if _, err := s.hit("Stats"); err != nil {
		return nil, err
	}
	st := s.stats
	return &st, nil
}

func (s *stubBackend) UploadCSV(_ context.Context, kind core.Kind, filename string, r io.Reader) (*api.ImportResult, error) {
	if _, err := s.hit("UploadCSV"); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, stubUpload{kind: kind, name: filename, body: string(body)})
	return &api.ImportResult{Message: "Importação concluída", Inserted: 1}, nil
}

func (s *stubBackend) ExportXLSX(context.Context) (*api.Download, error) {
	if _, err := s.hit("ExportXLSX"); err != nil {
		return nil, err
	}
	return &api.Download{Data: s.xlsx, FileName: api.ReportFileName}, nil
}

func (s *stubBackend) ExportProductsCSV(context.Context) (*api.Download, error) {
	if _, err := s.hit("ExportProductsCSV"); err != nil {
		return nil, err
	}
	return &api.Download{Data: []byte("id,name"), FileName: api.ProductsReportFileName}, nil
}

func (s *stubBackend) ExportSalesCSV(context.Context) (*api.Download, error) {
	if _, err := s.hit("ExportSalesCSV"); err != nil {
		return nil, err
	}
	return &api.Download{Data: []byte("id,product_id"), FileName: api.SalesReportFileName}, nil
}

func (s *stubBackend) Collection(context.Context) (*api.Download, error) {
	if _, err := s.hit("Collection"); err != nil {
		return nil, err
	}
	return &api.Download{Data: []byte(`{"info":{}}`), FileName: api.CollectionFileName}, nil
}

var _ Backend = (*stubBackend)(nil)
