package core

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// DefaultMatchThreshold is the header overlap a file needs to be accepted.
const DefaultMatchThreshold = 0.5

// Classifier decides whether an uploaded file plausibly belongs to a Kind
// by comparing its header row with the Kind's Expected Header Set.
//
// Classification is fail-closed: unreadable, oversized, undecodable or
// empty input and unknown kinds all reject. No error ever reaches the caller.
type Classifier struct {
	// Threshold is the minimum Match Score for acceptance, in (0, 1].
	// Zero means DefaultMatchThreshold.
	Threshold float64

	// MaxBytes caps how much of the file is read. Zero means
	// DefaultMaxFileSize, negative disables the cap.
	MaxBytes int64

	// Logger receives the reject reason at debug level. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewClassifier returns a classifier with the given threshold and size cap.
func NewClassifier(threshold float64, maxBytes int64) *Classifier {
	return &Classifier{Threshold: threshold, MaxBytes: maxBytes}
}

var defaultClassifier = &Classifier{}

// Classify runs the default classifier (threshold 0.5, 10 MiB cap).
func Classify(ctx context.Context, r io.Reader, kind Kind) bool {
	return defaultClassifier.Classify(ctx, r, kind)
}

// Classify reports whether the header row of r matches kind.
func (c *Classifier) Classify(ctx context.Context, r io.Reader, kind Kind) bool {
	return c.Evaluate(ctx, r, kind).Accepted
}

// Evaluate classifies r against kind and returns the full verdict.
// Matched and Missing follow the order of the Expected Header Set.
func (c *Classifier) Evaluate(ctx context.Context, r io.Reader, kind Kind) Verdict {
	v := Verdict{Kind: kind}

	spec, ok := Lookup(kind)
	if !ok {
		return c.reject(ctx, v, "unknown kind")
	}

	data, err := ReadAllLimited(ctx, r, c.maxBytes())
	if err != nil {
		return c.reject(ctx, v, "read failed: "+err.Error())
	}

	text, err := DecodeText(data)
	if err != nil {
		return c.reject(ctx, v, err.Error())
	}

	header := ParseHeader(text)
	if header == nil {
		return c.reject(ctx, v, "empty file")
	}
	v.Header = header

	v.Score, v.Matched, v.Missing = scoreHeader(header, spec.Headers)
	if v.Score < c.threshold() {
		return c.reject(ctx, v, "header overlap below threshold")
	}

	v.Accepted = true
	return v
}

func (c *Classifier) reject(ctx context.Context, v Verdict, reason string) Verdict {
	v.Accepted = false
	v.Reason = reason

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "csv rejected",
		"kind", v.Kind,
		"score", v.Score,
		"reason", reason,
	)
	return v
}

func (c *Classifier) threshold() float64 {
	if c.Threshold <= 0 {
		return DefaultMatchThreshold
	}
	return c.Threshold
}

func (c *Classifier) maxBytes() int64 {
	if c.MaxBytes == 0 {
		return DefaultMaxFileSize
	}
	return c.MaxBytes
}

// ParseHeader extracts the header row from file text: the first line of the
// trimmed content, split on commas, each field trimmed and lowercased.
// Returns nil when the content is blank.
//
// Quoted fields containing commas are not handled; such a header splits
// into extra fields and simply scores lower.
func ParseHeader(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	first, _, _ := strings.Cut(text, "\n")
	fields := strings.Split(first, ",")
	for i, f := range fields {
		fields[i] = normalizeHeader(f)
	}
	return fields
}

// HeaderScore returns the Match Score of header against kind's Expected
// Header Set. Header fields are compared after trimming and lowercasing.
// Returns false if kind is not registered.
func HeaderScore(header []string, kind Kind) (float64, bool) {
	spec, ok := Lookup(kind)
	if !ok {
		return 0, false
	}

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	score, _, _ := scoreHeader(normalized, spec.Headers)
	return score, true
}

// scoreHeader computes |expected ∩ header| / |expected|.
func scoreHeader(header, expected []string) (float64, []string, []string) {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	var matched, missing []string
	for _, e := range expected {
		if _, ok := present[e]; ok {
			matched = append(matched, e)
		} else {
			missing = append(missing, e)
		}
	}

	if len(expected) == 0 {
		return 0, matched, missing
	}
	return float64(len(matched)) / float64(len(expected)), matched, missing
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
