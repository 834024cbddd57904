package pages

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/report"
)

// TopProductsLimit is how many products the top-products chart shows.
const TopProductsLimit = 10

// SeriesPoint is one bar or slice of a dashboard chart.
type SeriesPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// DashboardSummary is everything the dashboard renders.
type DashboardSummary struct {
	Stats            api.DashboardStats `json:"stats"`
	ProductCount     int                `json:"product_count"`
	CategoryCount    int                `json:"category_count"`
	DailyRevenue     []SeriesPoint      `json:"daily_revenue"`
	RevenueByProduct []SeriesPoint      `json:"revenue_by_product"`
	TopProducts      []SeriesPoint      `json:"top_products"`
	DocsURL          string             `json:"docs_url,omitempty"`
}

// Summarize derives the dashboard charts from the raw listings.
func Summarize(stats api.DashboardStats, products []api.Product, categories []api.Category, sales []api.Sale) DashboardSummary {
	byProduct := revenueByProduct(products, sales)
	top := byProduct
	if len(top) > TopProductsLimit {
		top = top[:TopProductsLimit]
	}

	return DashboardSummary{
		Stats:            stats,
		ProductCount:     len(products),
		CategoryCount:    len(categories),
		DailyRevenue:     dailyRevenue(sales),
		RevenueByProduct: byProduct,
		TopProducts:      append([]SeriesPoint(nil), top...),
	}
}

// dailyRevenue sums sale totals per day, sorted by date.
func dailyRevenue(sales []api.Sale) []SeriesPoint {
	totals := make(map[string]decimal.Decimal)
	for _, s := range sales {
		day := "N/A"
		if len(s.Date) >= 10 {
			day = s.Date[:10]
		} else if s.Date != "" {
			day = s.Date
		}
		totals[day] = totals[day].Add(decimal.NewFromFloat(s.TotalPrice))
	}

	out := make([]SeriesPoint, 0, len(totals))
	for day, v := range totals {
		out = append(out, SeriesPoint{Label: day, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// revenueByProduct sums sale totals per product name, highest first. Sales
// of unknown products are labelled "Produto {id}".
func revenueByProduct(products []api.Product, sales []api.Sale) []SeriesPoint {
	names := make(map[int]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	totals := make(map[string]decimal.Decimal)
	for _, s := range sales {
		name, ok := names[s.ProductID]
		if !ok || name == "" {
			name = fmt.Sprintf("Produto %d", s.ProductID)
		}
		totals[name] = totals[name].Add(decimal.NewFromFloat(s.TotalPrice))
	}

	out := make([]SeriesPoint, 0, len(totals))
	for name, v := range totals {
		out = append(out, SeriesPoint{Label: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// DashboardState is the view state of the dashboard.
type DashboardState struct {
	Status
	Summary *DashboardSummary
}

// DashboardPage controls the dashboard.
type DashboardPage struct {
	page

	summary *DashboardSummary
}

// NewDashboardPage creates the controller for one activation of the screen.
func NewDashboardPage(d Deps) *DashboardPage {
	return &DashboardPage{page: page{env: newEnv(d)}}
}

// State returns a snapshot of the view state.
func (p *DashboardPage) State() DashboardState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return DashboardState{Status: p.status, Summary: p.summary}
}

// Activate loads the dashboard.
func (p *DashboardPage) Activate(ctx context.Context) error {
	return p.Refresh(ctx)
}

// Refresh fetches stats, products, categories and sales together and
// rebuilds the summary. Any failure clears the summary.
func (p *DashboardPage) Refresh(ctx context.Context) error {
	token := p.begin()

	var (
		stats      *api.DashboardStats
		products   []api.Product
		categories []api.Category
		sales      []api.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = p.backend.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = p.backend.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = p.backend.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		sales, err = p.backend.ListSales(gctx)
		return err
	})
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.seq.apply(token) {
		p.logger.DebugContext(ctx, "stale dashboard response discarded", "token", token)
		return err
	}
	if p.seq.latest(token) {
		p.status.Loading = false
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "load dashboard failed", "error", err)
		p.summary = nil
		p.status.Error = p.msg(msgLoadDashboard)
		return err
	}

	summary := Summarize(*stats, products, categories, sales)
	summary.DocsURL = p.docsURL
	p.summary = &summary
	p.status.Error = ""
	return nil
}

// Report downloads the consolidated workbook and checks it before it is
// handed to the user.
func (p *DashboardPage) Report(ctx context.Context) (*api.Download, *report.Summary, error) {
	d, err := p.backend.ExportXLSX(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "report export failed", "error", err)
		p.setError(p.userMessage(err, msgReport))
		return nil, nil, err
	}

	summary, err := report.Inspect(d.Data)
	if err != nil {
		p.logger.ErrorContext(ctx, "report rejected", "bytes", len(d.Data), "error", err)
		p.setError(p.msg(msgReport))
		return nil, nil, err
	}
	return d, summary, nil
}

// Collection downloads the API-client collection descriptor.
func (p *DashboardPage) Collection(ctx context.Context) (*api.Download, error) {
	d, err := p.backend.Collection(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "collection download failed", "error", err)
		p.setError(p.userMessage(err, msgCollection))
		return nil, err
	}
	return d, nil
}

// DocsURL is the external API documentation link.
func (p *DashboardPage) DocsURL() string {
	return p.docsURL
}
