package web

import (
	"net/http"

	"github.com/JonMunkholm/smartmart/internal/pages"
)

// handleSaveProduct creates (POST) or updates (PUT /{id}) a product.
// Creation loads the categories first: a product needs one to exist.
func (s *Server) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	var form pages.ProductForm
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	p := pages.NewProductsPage(s.depsFor(r))
	if id == 0 {
		if err := p.Activate(r.Context()); err != nil {
			respondPageError(w, r, err, statusFor(err), p.State().Error)
			return
		}
	}

	saved, err := p.Save(r.Context(), id, form)
	if err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}
	writeJSON(w, r, savedStatus(id), saved)
}

// handleDeleteProduct deletes a product.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil || id == 0 {
		respondError(w, r, errBadID, http.StatusBadRequest)
		return
	}

	p := pages.NewProductsPage(s.depsFor(r))
	if err := p.Delete(r.Context(), id); err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSaveCategory creates (POST) or updates (PUT /{id}) a category.
func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	var form pages.CategoryForm
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	p := pages.NewCategoriesPage(s.depsFor(r))
	saved, err := p.Save(r.Context(), id, form)
	if err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}
	writeJSON(w, r, savedStatus(id), saved)
}

// handleCreateSale records a sale. An empty date means today.
func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var form pages.SaleForm
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	p := pages.NewSalesPage(s.depsFor(r))
	sale, err := p.Create(r.Context(), form)
	if err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}
	writeJSON(w, r, http.StatusCreated, sale)
}

// handleUpdateSale saves the inline edit of a sale.
func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil || id == 0 {
		respondError(w, r, errBadID, http.StatusBadRequest)
		return
	}
	var form pages.SaleEditForm
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	p := pages.NewSalesPage(s.depsFor(r))
	sale, err := p.Update(r.Context(), id, form)
	if err != nil {
		respondPageError(w, r, err, statusFor(err), p.State().Error)
		return
	}
	writeJSON(w, r, http.StatusOK, sale)
}

func savedStatus(id int) int {
	if id == 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}
