package core

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// EncodeOptions tunes the export encoder.
type EncodeOptions struct {
	// Quote enables RFC 4180 quoting of fields that contain commas, quotes
	// or line breaks. Off by default: the baseline format joins raw values.
	Quote bool
}

// Encode serializes records of kind to CSV text using the baseline format.
//
// The first line is the Expected Header Set joined by commas. Each record
// becomes one line with its fields in header order; missing or nil fields
// are empty. Lines are joined with "\n" and there is no trailing newline.
// Values are not escaped.
func Encode(kind Kind, records []Record) ([]byte, error) {
	return EncodeWithOptions(kind, records, EncodeOptions{})
}

// EncodeWithOptions is Encode with explicit options.
func EncodeWithOptions(kind Kind, records []Record, opts EncodeOptions) ([]byte, error) {
	spec, ok := Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("encode %q: %w", kind, ErrUnknownKind)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, spec.Headers)
	for _, rec := range records {
		row := make([]string, len(spec.Headers))
		for i, col := range spec.Headers {
			row[i] = FormatValue(rec[col])
		}
		rows = append(rows, row)
	}

	if opts.Quote {
		return encodeQuoted(rows)
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, ",")
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func encodeQuoted(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// FormatValue renders a scalar in its natural string form.
// Floats use the shortest representation (10, not 10.000000); nil is empty.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case decimal.Decimal:
		return val.String()
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case *float64:
		if val == nil {
			return ""
		}
		return strconv.FormatFloat(*val, 'f', -1, 64)
	case *int:
		if val == nil {
			return ""
		}
		return strconv.Itoa(*val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
