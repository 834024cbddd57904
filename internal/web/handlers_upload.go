package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/logging"
	"github.com/JonMunkholm/smartmart/internal/pages"
)

// ValidateResponse is the classifier verdict for an uploaded file.
type ValidateResponse struct {
	core.Verdict
	File    string `json:"file"`
	Message string `json:"message,omitempty"` // Rejection banner, empty when accepted
}

// ImportResponse is returned after a file was classified and forwarded.
type ImportResponse struct {
	ImportID string    `json:"import_id"`
	Kind     core.Kind `json:"kind"`
	File     string    `json:"file"`
	Message  string    `json:"message"`
	Inserted int       `json:"inserted"`
}

// handleValidate classifies a file without forwarding it. A rejected file
// is a normal 200 response with accepted=false.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	file, header, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	deps := s.depsFor(r)
	verdict := s.classifier.Evaluate(r.Context(), file, kind)

	resp := ValidateResponse{Verdict: verdict, File: header.Filename}
	if !verdict.Accepted {
		resp.Message = core.RejectionMessageIn(deps.Locale, kind)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleImport classifies a file and forwards it to the backend importer
// through the page controller of its kind. At most Import.MaxConcurrent
// imports run at once.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	file, header, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	ticket, release, err := s.imports.Acquire(r.Context(), core.ImportTicket{
		ID:   uuid.NewString(),
		Kind: kind,
		File: header.Filename,
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer release()

	importID := ticket.ID
	ctx := logging.With(r.Context(), "import_id", importID)
	logger := logging.WithFields(ctx, "kind", kind, "file", header.Filename)
	deps := s.depsFor(r)
	deps.Logger = logger

	var (
		up     uploader
		banner func() string
	)
	switch kind {
	case core.KindProducts:
		p := pages.NewProductsPage(deps)
		up, banner = p, func() string { return p.State().Error }
	case core.KindCategories:
		p := pages.NewCategoriesPage(deps)
		up, banner = p, func() string { return p.State().Error }
	case core.KindSales:
		p := pages.NewSalesPage(deps)
		up, banner = p, func() string { return p.State().Error }
	default:
		respondError(w, r, core.ErrUnknownKind, http.StatusNotFound)
		return
	}

	res, err := up.Upload(ctx, header.Filename, file)
	if err != nil {
		respondPageError(w, r, err, statusFor(err), banner())
		return
	}

	logger.Info("import completed", "inserted", res.Inserted)
	writeJSON(w, r, http.StatusOK, ImportResponse{
		ImportID: importID,
		Kind:     kind,
		File:     header.Filename,
		Message:  res.Message,
		Inserted: res.Inserted,
	})
}
