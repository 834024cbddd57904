package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    Kind
		want    bool
	}{
		{"half of product headers", "name,price,category_id\nA,10,1", KindProducts, true},
		{"no overlap", "foo,bar\n1,2", KindProducts, false},
		{"two of three category headers", "id,name\n1,Food", KindCategories, true},
		{"exact sales header", "id,product_id,quantity,total_price,date", KindSales, true},
		{"two of five sales headers", "id,date", KindSales, false},
		{"sales file through products", "id,product_id,quantity,total_price,date\n1,2,3,30,2024-01-01", KindProducts, false},
		{"one of three category headers", "name,foo,bar", KindCategories, false},
		{"case and padding ignored", "  ID , NAME ,Description\r\n1,a,b", KindCategories, true},
		{"order ignored", "description,stock,price,category_id,name,id", KindProducts, true},
		{"leading blank lines trimmed", "\n\n  \nid,name,description\n1,a,b", KindCategories, true},
		{"utf8 bom skipped", "\ufeffid,name,description", KindCategories, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(context.Background(), strings.NewReader(tt.content), tt.kind)
			if got != tt.want {
				t.Errorf("Classify(%q, %s) = %v, want %v", tt.content, tt.kind, got, tt.want)
			}
		})
	}
}

func TestClassify_EmptyFileRejectedForEveryKind(t *testing.T) {
	for _, content := range []string{"", "   \n\t\n"} {
		for _, kind := range Kinds() {
			if Classify(context.Background(), strings.NewReader(content), kind) {
				t.Errorf("Classify(%q, %s) = true, want false", content, kind)
			}
		}
	}
}

func TestClassify_UnknownKind(t *testing.T) {
	if Classify(context.Background(), strings.NewReader("id,name,description"), Kind("widgets")) {
		t.Error("unknown kind should be rejected")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestClassify_ReadFailureRejects(t *testing.T) {
	if Classify(context.Background(), failingReader{}, KindProducts) {
		t.Error("read failure should be rejected")
	}
	if Classify(context.Background(), nil, KindProducts) {
		t.Error("nil reader should be rejected")
	}
}

func TestClassify_CancelledContextRejects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if Classify(ctx, strings.NewReader("id,name,description"), KindCategories) {
		t.Error("cancelled context should be rejected")
	}
}

func TestClassifier_SizeLimit(t *testing.T) {
	c := &Classifier{MaxBytes: 16}
	content := "id,name,description\n1,a,b"

	v := c.Evaluate(context.Background(), strings.NewReader(content), KindCategories)
	if v.Accepted {
		t.Fatal("oversized file should be rejected")
	}
	if !strings.Contains(v.Reason, "file too large") {
		t.Errorf("Reason = %q, want size limit", v.Reason)
	}

	c.MaxBytes = -1
	if !c.Classify(context.Background(), strings.NewReader(content), KindCategories) {
		t.Error("negative MaxBytes should disable the limit")
	}
}

func TestClassifier_CustomThreshold(t *testing.T) {
	strict := NewClassifier(1.0, 0)
	lenient := NewClassifier(0.2, 0)
	content := "id,name"

	if strict.Classify(context.Background(), strings.NewReader(content), KindCategories) {
		t.Error("strict classifier should reject partial header")
	}
	if !lenient.Classify(context.Background(), strings.NewReader("id,name,foo"), KindProducts) {
		t.Error("lenient classifier should accept 2 of 6 headers at threshold 0.2")
	}
}

func TestClassifier_Evaluate(t *testing.T) {
	c := &Classifier{}
	v := c.Evaluate(context.Background(), strings.NewReader("Name,Price,category_id,extra\nA,1,1,x"), KindProducts)

	if !v.Accepted {
		t.Fatalf("expected accepted, got %+v", v)
	}
	if v.Score != 0.5 {
		t.Errorf("Score = %v, want 0.5", v.Score)
	}
	wantMatched := []string{"name", "category_id", "price"}
	if strings.Join(v.Matched, ",") != strings.Join(wantMatched, ",") {
		t.Errorf("Matched = %v, want %v", v.Matched, wantMatched)
	}
	wantMissing := []string{"id", "stock", "description"}
	if strings.Join(v.Missing, ",") != strings.Join(wantMissing, ",") {
		t.Errorf("Missing = %v, want %v", v.Missing, wantMissing)
	}
	if len(v.Header) != 4 || v.Header[3] != "extra" {
		t.Errorf("Header = %v", v.Header)
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  \n ", nil},
		{"A, B ,c", []string{"a", "b", "c"}},
		{"id,name\r\n1,x", []string{"id", "name"}},
		{`"id","name, full"`, []string{`"id"`, `"name`, `full"`}},
	}

	for _, tt := range tests {
		got := ParseHeader(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || (got == nil) != (tt.want == nil) {
			t.Errorf("ParseHeader(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestHeaderScore(t *testing.T) {
	tests := []struct {
		header []string
		kind   Kind
		want   float64
		ok     bool
	}{
		{[]string{"id", "name", "description"}, KindCategories, 1, true},
		{[]string{"ID", "Name"}, KindCategories, 2.0 / 3.0, true},
		{[]string{"id", "id", "id"}, KindCategories, 1.0 / 3.0, true},
		{[]string{"foo"}, KindSales, 0, true},
		{nil, KindProducts, 0, true},
		{[]string{"id"}, Kind("nope"), 0, false},
	}

	for _, tt := range tests {
		got, ok := HeaderScore(tt.header, tt.kind)
		if ok != tt.ok || got != tt.want {
			t.Errorf("HeaderScore(%v, %s) = %v, %v; want %v, %v", tt.header, tt.kind, got, ok, tt.want, tt.ok)
		}
	}
}

// The acceptance decision depends only on the set of header fields.
func TestClassify_OrderAndCaseIndependent(t *testing.T) {
	headers := []string{"id", "product_id", "quantity"}
	permutations := [][]string{
		{"id", "product_id", "quantity"},
		{"quantity", "id", "product_id"},
		{"PRODUCT_ID", "Quantity", "iD"},
	}

	want := Classify(context.Background(), strings.NewReader(strings.Join(headers, ",")), KindSales)
	for _, p := range permutations {
		got := Classify(context.Background(), strings.NewReader(strings.Join(p, ",")), KindSales)
		if got != want {
			t.Errorf("Classify(%v) = %v, want %v", p, got, want)
		}
	}
}
