package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
)

// ErrRejected marks uploads refused by the classifier.
var ErrRejected = errors.New("csv type mismatch")

// RejectionError is returned when an upload does not look like the page's kind.
type RejectionError struct {
	Verdict core.Verdict
	Message string // Localized text shown in the page banner
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s (score %.2f)", ErrRejected, e.Verdict.Reason, e.Verdict.Score)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	Backend    Backend
	Classifier *core.Classifier // Nil uses the default threshold
	Locale     string           // Display locale, "pt-BR" by default
	Quote      bool             // RFC 4180 quoting for CSV exports
	DocsURL    string           // External API documentation link
	Logger     *slog.Logger     // Nil uses slog.Default()
}

// env is embedded by every controller.
type env struct {
	backend    Backend
	classifier *core.Classifier
	locale     string
	quote      bool
	docsURL    string
	logger     *slog.Logger
}

func newEnv(d Deps) env {
	e := env{
		backend:    d.Backend,
		classifier: d.Classifier,
		locale:     core.CanonicalLocale(d.Locale),
		quote:      d.Quote,
		docsURL:    d.DocsURL,
		logger:     d.Logger,
	}
	if e.classifier == nil {
		e.classifier = &core.Classifier{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

func (e env) msg(key messageKey) string {
	return message(e.locale, key)
}

// userMessage is the banner text for a failed mutation: the backend's detail
// verbatim when it sent one, the generic message otherwise.
func (e env) userMessage(err error, fallback messageKey) string {
	if detail, ok := api.DetailOf(err); ok {
		return detail
	}
	return e.msg(fallback)
}

// classifyAndForward runs the classifier over r and, on acceptance, forwards
// the same bytes to the importer for kind.
func (e env) classifyAndForward(ctx context.Context, kind core.Kind, name string, r io.Reader) (*api.ImportResult, error) {
	var buf bytes.Buffer
	verdict := e.classifier.Evaluate(ctx, io.TeeReader(r, &buf), kind)
	if !verdict.Accepted {
		e.logger.InfoContext(ctx, "upload rejected",
			"kind", kind,
			"file", name,
			"score", verdict.Score,
			"reason", verdict.Reason,
		)
		return nil, &RejectionError{
			Verdict: verdict,
			Message: core.RejectionMessageIn(e.locale, kind),
		}
	}

	res, err := e.backend.UploadCSV(ctx, kind, name, &buf)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// encode serializes records for download and returns the file name to use.
func (e env) encode(kind core.Kind, records []core.Record) (*Export, error) {
	data, err := core.EncodeWithOptions(kind, records, core.EncodeOptions{Quote: e.quote})
	if err != nil {
		return nil, err
	}
	spec, _ := core.Lookup(kind)
	return &Export{Data: data, FileName: spec.FileName, ContentType: "text/csv; charset=utf-8"}, nil
}

// Export is a client-side download produced by a controller.
type Export struct {
	Data        []byte
	FileName    string
	ContentType string
}
