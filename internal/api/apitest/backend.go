// Package apitest provides an in-memory SmartMart backend for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/report"
)

// Upload is one CSV file received by the fake importer.
type Upload struct {
	Kind      string
	FileName  string
	Body      string
	RequestID string
}

type failure struct {
	status int
	detail string
}

// Backend is a fake of the SmartMart REST API backed by slices.
// Handlers are registered per "METHOD /pattern" so tests can inject
// failures and delays on a single route.
type Backend struct {
	Server *httptest.Server

	mu         sync.Mutex
	products   []api.Product
	categories []api.Category
	sales      []api.Sale
	uploads    []Upload
	requestIDs []string
	failures   map[string]failure
	delays     map[string]time.Duration
	calls      map[string]int
}

// New starts a backend seeded with one category, two products and three
// sales. The server is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		failures: make(map[string]failure),
		delays:   make(map[string]time.Duration),
		calls:    make(map[string]int),
	}
	b.Seed(
		[]api.Category{{ID: 1, Name: "Eletrônicos"}},
		[]api.Product{
			{ID: 1, Name: "TV", Price: 2999.9, CategoryID: 1, Brand: ptr("Acme")},
			{ID: 2, Name: "Radio", Price: 150, CategoryID: 1},
		},
		[]api.Sale{
			{ID: 1, ProductID: 1, Quantity: 1, TotalPrice: 2999.9, Date: "2024-01-10"},
			{ID: 2, ProductID: 2, Quantity: 2, TotalPrice: 300, Date: "2024-01-11"},
			{ID: 3, ProductID: 2, Quantity: 1, TotalPrice: 150, Date: "2024-01-10"},
		},
	)

	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// Client returns an API client pointed at the backend.
func (b *Backend) Client(t testing.TB) *api.Client {
	t.Helper()
	c, err := api.NewClient(b.Server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return c
}

// URL returns the backend base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Seed replaces the backend data.
func (b *Backend) Seed(categories []api.Category, products []api.Product, sales []api.Sale) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.categories = append([]api.Category(nil), categories...)
	b.products = append([]api.Product(nil), products...)
	b.sales = append([]api.Sale(nil), sales...)
}

// Fail makes route ("GET /products") answer with status and detail.
// An empty detail sends no JSON body.
func (b *Backend) Fail(route string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, detail: detail}
}

// Recover clears an injected failure.
func (b *Backend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// Delay makes route wait d before answering.
func (b *Backend) Delay(route string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delays[route] = d
}

// Calls returns how many times route was hit.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// Uploads returns the files received by the importer.
func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// RequestIDs returns the X-Request-ID of every request, in arrival order.
func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestIDs...)
}

// Products returns the current product list.
func (b *Backend) Products() []api.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Product(nil), b.products...)
}

// Categories returns the current category list.
func (b *Backend) Categories() []api.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Category(nil), b.categories...)
}

// Sales returns the current sales list.
func (b *Backend) Sales() []api.Sale {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Sale(nil), b.sales...)
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()

	b.handle(r, http.MethodGet, "/products", b.listProducts)
	b.handle(r, http.MethodPost, "/products", b.createProduct)
	b.handle(r, http.MethodPut, "/products/{id}", b.updateProduct)
	b.handle(r, http.MethodDelete, "/products/{id}", b.deleteProduct)

	b.handle(r, http.MethodGet, "/categories", b.listCategories)
	b.handle(r, http.MethodPost, "/categories", b.createCategory)
	b.handle(r, http.MethodPut, "/categories/{id}", b.updateCategory)

	b.handle(r, http.MethodGet, "/sales", b.listSales)
	b.handle(r, http.MethodPost, "/sales", b.createSale)
	b.handle(r, http.MethodPut, "/sales/{id}", b.updateSale)
	b.handle(r, http.MethodGet, "/dashboard/stats", b.stats)

	b.handle(r, http.MethodPost, "/upload/csv/{kind}", b.upload)

	b.handle(r, http.MethodGet, "/reports/export.xlsx", b.exportXLSX)
	b.handle(r, http.MethodGet, "/reports/export-products.csv", b.exportCSV(core.KindProducts))
	b.handle(r, http.MethodGet, "/reports/export-sales.csv", b.exportCSV(core.KindSales))
	b.handle(r, http.MethodGet, "/postman/collection", b.collection)

	return r
}

// handle registers h for method and pattern behind the failure and delay
// injection of the matching route key.
func (b *Backend) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	route := method + " " + pattern
	r.MethodFunc(method, pattern, func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.calls[route]++
		b.requestIDs = append(b.requestIDs, req.Header.Get(api.RequestIDHeader))
		fail, failing := b.failures[route]
		delay := b.delays[route]
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return
			}
		}

		if failing {
			if fail.detail == "" {
				w.WriteHeader(fail.status)
				return
			}
			writeJSON(w, fail.status, map[string]string{"detail": fail.detail})
			return
		}
		h(w, req)
	})
}

func (b *Backend) listProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Products())
}

func (b *Backend) createProduct(w http.ResponseWriter, r *http.Request) {
	var in api.ProductInput
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasCategory(in.CategoryID) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Categoria não encontrada"})
		return
	}
	p := api.Product{
		ID:          b.nextProductID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Brand:       in.Brand,
		CategoryID:  in.CategoryID,
	}
	b.products = append(b.products, p)
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in api.ProductInput
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products[i] = api.Product{
				ID:          id,
				Name:        in.Name,
				Description: in.Description,
				Price:       in.Price,
				Brand:       in.Brand,
				CategoryID:  in.CategoryID,
				Stock:       b.products[i].Stock,
			}
			writeJSON(w, http.StatusOK, b.products[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Produto não encontrado"})
}

func (b *Backend) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Produto removido"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Produto não encontrado"})
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Categories())
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	var in api.CategoryInput
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := 1
	for _, c := range b.categories {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	c := api.Category{ID: id, Name: in.Name, Description: in.Description}
	b.categories = append(b.categories, c)
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in api.CategoryInput
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.categories {
		if b.categories[i].ID == id {
			b.categories[i] = api.Category{ID: id, Name: in.Name, Description: in.Description}
			writeJSON(w, http.StatusOK, b.categories[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Categoria não encontrada"})
}

func (b *Backend) listSales(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Sales())
}

func (b *Backend) createSale(w http.ResponseWriter, r *http.Request) {
	var in api.SaleInput
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasProduct(in.ProductID) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Produto não encontrado"})
		return
	}
	id := 1
	for _, s := range b.sales {
		if s.ID >= id {
			id = s.ID + 1
		}
	}
	s := api.Sale{ID: id, ProductID: in.ProductID, Quantity: in.Quantity, TotalPrice: in.TotalPrice, Date: in.Date}
	b.sales = append(b.sales, s)
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) updateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in api.SaleUpdate
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.sales {
		if b.sales[i].ID == id {
			s := &b.sales[i]
			if in.ProductID != 0 {
				s.ProductID = in.ProductID
			}
			s.Quantity = in.Quantity
			s.TotalPrice = in.TotalPrice
			s.Date = in.Date
			writeJSON(w, http.StatusOK, *s)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Venda não encontrada"})
}

func (b *Backend) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.currentStats())
}

func (b *Backend) currentStats() api.DashboardStats {
	sales := b.Sales()
	var total float64
	for _, s := range sales {
		total += s.TotalPrice
	}
	return api.DashboardStats{TotalSalesCount: len(sales), TotalRevenue: total}
}

// upload accepts a multipart CSV and reports one inserted row per data line.
// Rows are not parsed into records.
func (b *Backend) upload(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	spec, ok := core.Lookup(core.Kind(kind))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Tipo inválido. Use: categories, products, sales"})
		return
	}

	file, header, err := r.FormFile(api.UploadField)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "Field required"}},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Arquivo inválido ou corrompido."})
		return
	}

	inserted := 0
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) != "" {
			inserted++
		}
	}

	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{
		Kind:      kind,
		FileName:  header.Filename,
		Body:      string(data),
		RequestID: r.Header.Get(api.RequestIDHeader),
	})
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, api.ImportResult{
		Message:  fmt.Sprintf("Importação de %s concluída", spec.Label(core.LocalePT)),
		Inserted: inserted,
	})
}

func (b *Backend) exportXLSX(w http.ResponseWriter, _ *http.Request) {
	data, err := report.Build(report.Data{
		Products:   b.Products(),
		Categories: b.Categories(),
		Sales:      b.Sales(),
		Stats:      b.currentStats(),
	}, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=smartmart-report.xlsx")
	_, _ = io.Copy(w, bytes.NewReader(data))
}

func (b *Backend) exportCSV(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var records []core.Record
		if kind == core.KindProducts {
			records = api.ProductRecords(b.Products())
		} else {
			records = api.SaleRecords(b.Sales())
		}
		data, err := core.Encode(kind, records)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		spec, _ := core.Lookup(kind)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+spec.FileName)
		_, _ = w.Write(data)
	}
}

func (b *Backend) collection(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Disposition", "attachment; filename=SmartMart.postman_collection.json")
	writeJSON(w, http.StatusOK, map[string]any{
		"info": map[string]string{"name": "SmartMart Solutions API"},
		"item": []map[string]any{
			{"name": "List Products", "request": map[string]string{"method": "GET", "url": "{{baseUrl}}/products"}},
		},
	})
}

func (b *Backend) hasCategory(id int) bool {
	for _, c := range b.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (b *Backend) hasProduct(id int) bool {
	for _, p := range b.products {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (b *Backend) nextProductID() int {
	id := 1
	for _, p := range b.products {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "Input should be a valid integer"}},
		})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "Invalid JSON body"}},
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ptr[T any](v T) *T {
	return &v
}
