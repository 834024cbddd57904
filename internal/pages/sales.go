package pages

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
)

// SalesState is the view state of the sales screen.
type SalesState struct {
	Status
	Sales    []api.Sale
	Products []api.Product // Choices for the new-sale form
}

// SalesPage controls the sales screen.
type SalesPage struct {
	page

	sales    []api.Sale
	products []api.Product
	now      func() time.Time
}

// NewSalesPage creates the controller for one activation of the screen.
func NewSalesPage(d Deps) *SalesPage {
	return &SalesPage{page: page{env: newEnv(d)}, now: time.Now}
}

// State returns a snapshot of the view state.
func (p *SalesPage) State() SalesState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return SalesState{
		Status:   p.status,
		Sales:    append([]api.Sale(nil), p.sales...),
		Products: append([]api.Product(nil), p.products...),
	}
}

// Activate loads the sales listing and, separately, the product choices.
// Only a failure of the sales listing reaches the error banner.
func (p *SalesPage) Activate(ctx context.Context) error {
	err := p.Refresh(ctx)
	p.RefreshProducts(ctx)
	return err
}

// Refresh reloads the sales listing.
func (p *SalesPage) Refresh(ctx context.Context) error {
	token := p.begin()
	sales, err := p.backend.ListSales(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.seq.apply(token) {
		p.logger.DebugContext(ctx, "stale sales response discarded", "token", token)
		return err
	}
	if p.seq.latest(token) {
		p.status.Loading = false
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "load sales failed", "error", err)
		p.sales = nil
		p.status.Error = p.msg(msgLoadSales)
		return err
	}
	p.sales = sales
	p.status.Error = ""
	return nil
}

// RefreshProducts reloads the product choices. Failures are logged and the
// previous choices kept.
func (p *SalesPage) RefreshProducts(ctx context.Context) {
	products, err := p.backend.ListProducts(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "load product choices failed", "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.products = products
}

// Upload classifies a sales CSV and, when it matches, imports it and
// reloads the listing.
func (p *SalesPage) Upload(ctx context.Context, name string, r io.Reader) (*api.ImportResult, error) {
	p.setUploading(true)
	defer p.setUploading(false)

	res, err := p.classifyAndForward(ctx, core.KindSales, name, r)
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

// Create records a new sale. An empty date means today.
func (p *SalesPage) Create(ctx context.Context, form SaleForm) (*api.Sale, error) {
	in, err := form.Validate(p.now())
	if err != nil {
		p.setError(p.msg(msgInvalidForm))
		return nil, err
	}

	sale, err := p.backend.CreateSale(ctx, in)
	if err != nil {
		p.logger.WarnContext(ctx, "create sale failed", "error", err)
		p.setError(p.userMessage(err, msgCreateSale))
		return nil, err
	}

	_ = p.Refresh(ctx)
	return sale, nil
}

// Update saves the inline edit of sale id.
func (p *SalesPage) Update(ctx context.Context, id int, form SaleEditForm) (*api.Sale, error) {
	in, err := form.Validate()
	if err != nil {
		p.setError(p.msg(msgInvalidForm))
		return nil, err
	}

	sale, err := p.backend.UpdateSale(ctx, id, in)
	if err != nil {
		p.logger.WarnContext(ctx, "update sale failed", "id", id, "error", err)
		p.setError(p.userMessage(err, msgUpdateSale))
		return nil, err
	}

	_ = p.Refresh(ctx)
	return sale, nil
}

// ExportCSV encodes the loaded sales.
func (p *SalesPage) ExportCSV() (*Export, error) {
	p.mu.Lock()
	records := api.SaleRecords(p.sales)
	p.mu.Unlock()
	return p.encode(core.KindSales, records)
}

// ExportServerCSV downloads the backend-rendered sales CSV.
func (p *SalesPage) ExportServerCSV(ctx context.Context) (*api.Download, error) {
	d, err := p.backend.ExportSalesCSV(ctx)
	if err != nil {
		p.setError(p.userMessage(err, msgReport))
		return nil, err
	}
	return d, nil
}
