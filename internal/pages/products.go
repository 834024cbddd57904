package pages

import (
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
)

// ErrNoCategories is returned when a product is created before any category exists.
var ErrNoCategories = errors.New("no categories loaded")

// ProductFilter narrows the product table. Zero values match everything.
type ProductFilter struct {
	Search     string // Case-insensitive substring of name or brand
	CategoryID int
}

// Match reports whether p passes the filter.
func (f ProductFilter) Match(p api.Product) bool {
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	return p.Brand != nil && strings.Contains(strings.ToLower(*p.Brand), q)
}

// FilterProducts returns the products matching f, in order.
func FilterProducts(products []api.Product, f ProductFilter) []api.Product {
	out := make([]api.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// ProductsState is the view state of the products screen.
type ProductsState struct {
	Status
	Products   []api.Product
	Categories []api.Category
	Filter     ProductFilter
}

// Visible returns the products that pass the current filter.
func (s ProductsState) Visible() []api.Product {
	return FilterProducts(s.Products, s.Filter)
}

// ProductsPage controls the products screen.
type ProductsPage struct {
	page

	products   []api.Product
	categories []api.Category
	filter     ProductFilter
}

// NewProductsPage creates the controller for one activation of the screen.
func NewProductsPage(d Deps) *ProductsPage {
	return &ProductsPage{page: page{env: newEnv(d)}}
}

// State returns a snapshot of the view state.
func (p *ProductsPage) State() ProductsState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return ProductsState{
		Status:     p.status,
		Products:   append([]api.Product(nil), p.products...),
		Categories: append([]api.Category(nil), p.categories...),
		Filter:     p.filter,
	}
}

// SetFilter updates the table filter.
func (p *ProductsPage) SetFilter(f ProductFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f
}

// Activate loads the screen.
func (p *ProductsPage) Activate(ctx context.Context) error {
	return p.Refresh(ctx)
}

// Refresh fetches products and categories together. If either fails the
// whole view goes to the error state with no data.
func (p *ProductsPage) Refresh(ctx context.Context) error {
	token := p.begin()

	var (
		products   []api.Product
		categories []api.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = p.backend.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = p.backend.ListCategories(gctx)
		return err
	})
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.seq.apply(token) {
		p.logger.DebugContext(ctx, "stale products response discarded", "token", token)
		return err
	}
	if p.seq.latest(token) {
		p.status.Loading = false
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "load products failed", "error", err)
		p.products = nil
		p.categories = nil
		p.status.Error = p.msg(msgLoadProducts)
		return err
	}
	p.products = products
	p.categories = categories
	p.status.Error = ""
	return nil
}

// Upload classifies a products CSV and, when it matches, imports it and
// reloads the listing.
func (p *ProductsPage) Upload(ctx context.Context, name string, r io.Reader) (*api.ImportResult, error) {
	p.setUploading(true)
	defer p.setUploading(false)

	res, err := p.classifyAndForward(ctx, core.KindProducts, name, r)
	if err != nil {
		p.uploadFailed(ctx, err)
		return nil, err
	}

	// A failed reload keeps its load-error banner over the import notice.
	if err := p.Refresh(ctx); err == nil {
		p.setNotice(res.Message)
	}
	return res, nil
}

// Save creates a product when id is zero and updates product id otherwise.
// Creating is refused while no categories are loaded.
func (p *ProductsPage) Save(ctx context.Context, id int, form ProductForm) (*api.Product, error) {
	in, err := form.Validate()
	if err != nil {
		p.setError(p.msg(msgInvalidForm))
		return nil, err
	}

	var saved *api.Product
	if id == 0 {
		p.mu.Lock()
		noCategories := len(p.categories) == 0
		p.mu.Unlock()
		if noCategories {
			p.setError(p.msg(msgNeedCategory))
			return nil, ErrNoCategories
		}
		saved, err = p.backend.CreateProduct(ctx, in)
	} else {
		saved, err = p.backend.UpdateProduct(ctx, id, in)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "save product failed", "id", id, "error", err)
		p.setError(p.userMessage(err, msgSaveProduct))
		return nil, err
	}

	_ = p.Refresh(ctx)
	return saved, nil
}

// Delete removes product id and reloads the listing.
func (p *ProductsPage) Delete(ctx context.Context, id int) error {
	if err := p.backend.DeleteProduct(ctx, id); err != nil {
		p.logger.WarnContext(ctx, "delete product failed", "id", id, "error", err)
		p.setError(p.userMessage(err, msgDeleteProduct))
		return err
	}
	_ = p.Refresh(ctx)
	return nil
}

// ExportCSV encodes the loaded products, ignoring the filter.
func (p *ProductsPage) ExportCSV() (*Export, error) {
	p.mu.Lock()
	records := api.ProductRecords(p.products)
	p.mu.Unlock()
	return p.encode(core.KindProducts, records)
}

// ExportServerCSV downloads the backend-rendered products CSV.
func (p *ProductsPage) ExportServerCSV(ctx context.Context) (*api.Download, error) {
	d, err := p.backend.ExportProductsCSV(ctx)
	if err != nil {
		p.setError(p.userMessage(err, msgReport))
		return nil, err
	}
	return d, nil
}
