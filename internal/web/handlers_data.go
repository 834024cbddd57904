package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/pages"
	"github.com/JonMunkholm/smartmart/internal/report"
)

// KindInfo describes one importable kind for the SPA.
type KindInfo struct {
	Kind     core.Kind `json:"kind"`
	Label    string    `json:"label"`
	Headers  []string  `json:"headers"`
	FileName string    `json:"file_name"`
}

// handleHealth reports liveness and the import gate.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.imports.Status(),
	})
}

// handleListKinds lists the kinds with their expected headers.
func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	locale := s.depsFor(r).Locale

	specs := core.All()
	out := make([]KindInfo, len(specs))
	for i, spec := range specs {
		out[i] = KindInfo{
			Kind:     spec.Kind,
			Label:    spec.Label(locale),
			Headers:  spec.Headers,
			FileName: spec.FileName,
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleExport encodes the live listing of a kind as CSV.
// ?source=server downloads the backend rendering instead (products, sales).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	deps := s.depsFor(r)
	server := r.URL.Query().Get("source") == "server"

	var (
		export *pages.Export
		banner string
	)
	switch kind {
	case core.KindProducts:
		p := pages.NewProductsPage(deps)
		if server {
			s.passthrough(w, r, p.ExportServerCSV, func() string { return p.State().Error })
			return
		}
		if err = p.Activate(r.Context()); err == nil {
			export, err = p.ExportCSV()
		}
		banner = p.State().Error
	case core.KindCategories:
		p := pages.NewCategoriesPage(deps)
		if err = p.Activate(r.Context()); err == nil {
			export, err = p.ExportCSV()
		}
		banner = p.State().Error
	case core.KindSales:
		p := pages.NewSalesPage(deps)
		if server {
			s.passthrough(w, r, p.ExportServerCSV, func() string { return p.State().Error })
			return
		}
		if err = p.Refresh(r.Context()); err == nil {
			export, err = p.ExportCSV()
		}
		banner = p.State().Error
	default:
		respondError(w, r, core.ErrUnknownKind, http.StatusNotFound)
		return
	}
	if err != nil {
		respondPageError(w, r, err, statusFor(err), banner)
		return
	}

	writeFile(w, r, export.ContentType, export.FileName, export.Data)
}

// handleListProducts returns the products matching ?search= and ?category_id=.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	p := pages.NewProductsPage(s.depsFor(r))

	filter := pages.ProductFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, errBadID, http.StatusBadRequest)
			return
		}
		filter.CategoryID = id
	}
	p.SetFilter(filter)

	if err := p.Activate(r.Context()); err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}

	state := p.State()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"products":   state.Visible(),
		"categories": state.Categories,
		"total":      len(state.Products),
	})
}

// handleDashboard returns the dashboard summary.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p := pages.NewDashboardPage(s.depsFor(r))
	if err := p.Activate(r.Context()); err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}
	writeJSON(w, r, http.StatusOK, p.State().Summary)
}

// handleReport passes the backend workbook through once it has been
// inspected. The sheet row counts are exposed as X-Report-Rows.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	p := pages.NewDashboardPage(s.depsFor(r))
	d, summary, err := p.Report(r.Context())
	if err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}

	if sheet, ok := summary.Sheet(report.SheetSales); ok {
		w.Header().Set("X-Report-Rows", strconv.Itoa(sheet.DataRows))
	}
	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	writeFile(w, r, contentType, d.FileName, d.Data)
}

// handleCollection passes the API-client collection through.
func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	p := pages.NewDashboardPage(s.depsFor(r))
	s.passthrough(w, r, p.Collection, func() string { return p.State().Error })
}

// passthrough sends a backend download unchanged.
func (s *Server) passthrough(w http.ResponseWriter, r *http.Request, fetch func(context.Context) (*api.Download, error), banner func() string) {
	d, err := fetch(r.Context())
	if err != nil {
		respondPageError(w, r, err, statusFor(err), banner())
		return
	}
	writeFile(w, r, d.ContentType, d.FileName, d.Data)
}
