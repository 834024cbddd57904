package web

import (
	"net"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/logging"
	"github.com/JonMunkholm/smartmart/internal/pages"
)

// depsFor builds the page dependencies for one request. The logger carries
// the request id so backend calls made by the page can be correlated.
// ?lang= overrides the configured locale and ?quote= the export quoting.
func (s *Server) depsFor(r *http.Request) pages.Deps {
	locale := s.cfg.CSV.Locale
	if lang := r.URL.Query().Get("lang"); lang != "" {
		locale = core.CanonicalLocale(lang)
	}
	quote := s.cfg.CSV.QuoteExports
	if q, err := strconv.ParseBool(r.URL.Query().Get("quote")); err == nil {
		quote = q
	}

	return pages.Deps{
		Backend:    s.backend,
		Classifier: s.classifier,
		Locale:     locale,
		Quote:      quote,
		DocsURL:    s.cfg.API.DocsURL,
		Logger:     logging.FromContext(r.Context()),
	}
}

// clientIP is the address used for rate limiting, after TrustedRealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
