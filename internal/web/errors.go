package web

// errors.go provides unified error responses for the console.
//
// Every error is:
//   - Logged with full technical details and the request id (server-side)
//   - Returned to the client as a JSON envelope with a coded user message
//
// When a page controller already produced a localized banner (the backend's
// detail, a rejection message, a generic "Erro ao ..." text) it is sent as
// "error" so the SPA can show it verbatim; "message", "action" and "code"
// come from core.MapError.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/logging"
	"github.com/JonMunkholm/smartmart/internal/pages"
	"github.com/JonMunkholm/smartmart/internal/report"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errNoFile      = errors.New("no file provided")
	errBadID       = errors.New("invalid id")
	errBadBody     = errors.New("invalid request body")
)

// ErrorResponse is the JSON body of every console error.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Action    string                 `json:"action,omitempty"`
	Code      string                 `json:"code"`
	RequestID string                 `json:"request_id,omitempty"`
	Fields    pages.ValidationErrors `json:"fields,omitempty"`
	Verdict   *core.Verdict          `json:"verdict,omitempty"`
}

// respondError logs err and writes its coded user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	respondPageError(w, r, err, status, "")
}

// respondPageError is respondError with the banner text shown by the page.
// An empty banner falls back to the mapped user message.
func respondPageError(w http.ResponseWriter, r *http.Request, err error, status int, banner string) {
	msg := core.MapError(err)
	requestID := middleware.GetReqID(r.Context())

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	resp := ErrorResponse{
		Error:     banner,
		Message:   msg.Message,
		Action:    msg.Action,
		Code:      msg.Code,
		RequestID: requestID,
	}
	if resp.Error == "" {
		resp.Error = msg.Message
	}

	var verrs pages.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = verrs
		resp.Code = "FORM001"
		resp.Message = "Some fields are invalid"
		resp.Action = "Correct the highlighted fields and try again"
	}
	var rej *pages.RejectionError
	if errors.As(err, &rej) {
		resp.Verdict = &rej.Verdict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// statusFor picks the console status for an error from a page or the backend.
func statusFor(err error) int {
	var apiErr *api.Error
	switch {
	case errors.Is(err, pages.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.As(err, new(pages.ValidationErrors)):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pages.ErrNoCategories):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, report.ErrInvalidWorkbook):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		// Client errors from the backend are the caller's fault; pass them on.
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errNoFile), errors.Is(err, errBadID), errors.Is(err, errBadBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}
