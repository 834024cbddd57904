package web

// handlers_common.go holds the request parsing and response helpers shared
// by the handlers.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/logging"
)

// maxJSONBody bounds form submissions.
const maxJSONBody = 64 << 10

// writeJSON encodes v as JSON with status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// writeFile sends data as an attachment named name.
func writeFile(w http.ResponseWriter, r *http.Request, contentType, name string, data []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("download write failed", "file", name, "error", err)
	}
}

// kindParam resolves the {kind} URL parameter.
func kindParam(r *http.Request) (core.Kind, error) {
	raw := chi.URLParam(r, "kind")
	kind, ok := core.ParseKind(raw)
	if !ok {
		return "", fmt.Errorf("kind %q: %w", raw, core.ErrUnknownKind)
	}
	return kind, nil
}

// idParam parses the {id} URL parameter. Routes without one return 0.
func idParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errBadID, raw)
	}
	return id, nil
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// formFile opens the multipart "file" field, bounded by the import size
// limit. The caller closes the returned file.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, nil, fmt.Errorf("upload: %w", core.ErrFileTooLarge)
		}
		return nil, nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errNoFile
	}
	if header.Size > maxSize {
		file.Close()
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, fmt.Errorf("%s: %w", header.Filename, core.ErrFileTooLarge)
	}
	return file, header, nil
}

// uploader is implemented by the products, categories and sales pages.
type uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (*api.ImportResult, error)
}
