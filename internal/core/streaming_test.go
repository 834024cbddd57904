package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestReadAllLimited(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int64
		wantErr error
	}{
		{"under limit", "hello", 10, nil},
		{"exactly at limit", "hello", 5, nil},
		{"over limit", "hello!", 5, ErrFileTooLarge},
		{"limit disabled", strings.Repeat("x", 1000), 0, nil},
		{"empty", "", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadAllLimited(context.Background(), strings.NewReader(tt.input), tt.max)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.input {
				t.Errorf("got %q, want %q", got, tt.input)
			}
		})
	}
}

func TestReadAllLimited_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadAllLimited(ctx, strings.NewReader("data"), 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCountingReader(t *testing.T) {
	cr := NewCountingReader(bytes.NewReader(make([]byte, 1234)))
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(cr); err != nil {
		t.Fatal(err)
	}
	if cr.BytesRead != 1234 {
		t.Errorf("BytesRead = %d, want 1234", cr.BytesRead)
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain ascii", []byte("id,name"), "id,name"},
		{"utf8 kept", []byte("id,nome,descrição"), "id,nome,descrição"},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, []byte("id")...), "id"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.input)
			if err != nil {
				t.Fatalf("DecodeText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeText_LatinCharsets(t *testing.T) {
	tests := []struct {
		name string
		enc  encoding.Encoding
		text string
	}{
		{
			name: "iso-8859-1 categories",
			enc:  charmap.ISO8859_1,
			text: "id,name,description\n" +
				"1,Eletrônicos,Câmeras, áudio e televisão para a sua casa\n" +
				"2,Papelaria,Cadernos, lápis e canetas de ótima qualidade\n" +
				"3,Decoração,Objetos decorativos e iluminação para ambientes",
		},
		{
			name: "windows-1252 with curly quotes",
			enc:  charmap.Windows1252,
			text: "id,name,description\n" +
				"1,Promoções,“Oferta” de verão: preços a partir de R$ 10 em eletrônicos\n" +
				"2,Decoração,Iluminação e objetos “premium” para a sala de estar\n" +
				"3,Papelaria,Cadernos, lápis e canetas – coleção de inverno",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.enc.NewEncoder().Bytes([]byte(tt.text))
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if utf8.Valid(data) {
				t.Fatal("fixture should not be valid UTF-8")
			}

			got, err := DecodeText(data)
			if err != nil {
				t.Fatalf("DecodeText() error = %v", err)
			}
			if got != tt.text {
				t.Errorf("DecodeText() = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestDecodeText_UnsupportedCharset(t *testing.T) {
	data := utf16Fixture(t, "id,name,description\n1,Eletrônicos,TVs")

	_, err := DecodeText(data)
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("err = %v, want ErrUndecodable", err)
	}
}

func TestClassify_Latin1Accepted(t *testing.T) {
	data, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(
		"id,name,description\n1,Eletrônicos,Câmeras e áudio para a sua casa\n2,Decoração,Iluminação e objetos"))
	if err != nil {
		t.Fatal(err)
	}

	v := NewClassifier(0, 0).Evaluate(context.Background(), bytes.NewReader(data), KindCategories)
	if !v.Accepted {
		t.Fatalf("Latin-1 categories file rejected: %s", v.Reason)
	}
}

func TestClassify_RejectsUndecodableContent(t *testing.T) {
	// The header matches exactly; only the encoding is wrong.
	data := utf16Fixture(t, "id,name,description\n1,Livros,Papel")

	if Classify(context.Background(), bytes.NewReader(data), KindCategories) {
		t.Fatal("UTF-16 content should be rejected")
	}

	v := NewClassifier(0, 0).Evaluate(context.Background(), bytes.NewReader(data), KindCategories)
	if v.Accepted || !strings.Contains(v.Reason, ErrUndecodable.Error()) {
		t.Errorf("verdict = %+v, want an undecodable rejection", v)
	}
}

func utf16Fixture(t *testing.T, text string) []byte {
	t.Helper()
	data, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode utf-16: %v", err)
	}
	return data
}
