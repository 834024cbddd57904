package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUndecodable is returned when file content is neither UTF-8 nor one of
// the single-byte Latin encodings spreadsheet tools commonly export.
var ErrUndecodable = errors.New("undecodable file encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// latinCharsets maps chardet charset names to decoders.
var latinCharsets = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
}

// DecodeText converts raw upload bytes to text.
//
// A UTF-8 BOM is skipped and valid UTF-8 is returned unchanged. Anything
// else goes through charset detection; Latin-1 family content is decoded,
// every other charset is an error.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return string(data), nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	enc, ok := latinCharsets[strings.ToLower(result.Charset)]
	if !ok {
		return "", fmt.Errorf("%w: detected %s", ErrUndecodable, result.Charset)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return string(decoded), nil
}
