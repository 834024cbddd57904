package core

import "errors"

// Kind identifies which tabular schema a CSV file is expected to follow.
// The string value doubles as the path segment of the remote import endpoint.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
	KindSales      Kind = "sales"
)

// ErrUnknownKind is returned when an operation needs a registered Kind.
var ErrUnknownKind = errors.New("unknown record kind")

// ParseKind converts user input ("Products", " sales ") to a Kind.
// The second return value is false for unregistered kinds.
func ParseKind(s string) (Kind, bool) {
	k := Kind(normalizeHeader(s))
	_, ok := Lookup(k)
	return k, ok
}

// KindSpec describes a Record Kind: its fixed header and display metadata.
type KindSpec struct {
	Kind     Kind
	Headers  []string          // Expected Header Set, in export order
	Labels   map[string]string // Display name per locale: "pt-BR" -> "Produtos"
	FileName string            // Download name for CSV exports: "produtos.csv"
}

// Label returns the display name for locale, falling back to the kind itself.
func (s KindSpec) Label(locale string) string {
	if l, ok := s.Labels[CanonicalLocale(locale)]; ok {
		return l
	}
	return string(s.Kind)
}

// Record is one flat row held in memory: field name to scalar value.
// Values are numbers, strings, bools or nil; dates travel as strings.
type Record map[string]any

// Verdict is the detailed outcome of classifying a file against a Kind.
type Verdict struct {
	Kind     Kind     `json:"kind"`
	Accepted bool     `json:"accepted"`
	Score    float64  `json:"score"`
	Matched  []string `json:"matched,omitempty"`
	Missing  []string `json:"missing,omitempty"`
	Header   []string `json:"header,omitempty"`
	Reason   string   `json:"reason,omitempty"` // Why the file was rejected, for logs
}
