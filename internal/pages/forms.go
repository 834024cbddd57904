package pages

// forms.go holds the stateless checks applied to create/edit forms before
// anything is sent to the backend. Each check collects every problem so the
// form can highlight all invalid fields at once.

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/smartmart/internal/api"
)

// DateLayout is the sale date format the backend stores.
const DateLayout = "2006-01-02"

// ValidationError describes one invalid form field.
type ValidationError struct {
	Field   string `json:"field"`   // Form field name
	Value   string `json:"value"`   // The invalid value
	Message string `json:"message"` // Human-readable error message
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every problem found in a form.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Field returns the message for field, if it failed.
func (v ValidationErrors) Field(field string) (string, bool) {
	for _, e := range v {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}

type checker struct {
	errs ValidationErrors
}

func (c *checker) fail(field, value, msg string) {
	c.errs = append(c.errs, ValidationError{Field: field, Value: value, Message: msg})
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

func (c *checker) required(field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		c.fail(field, value, "required field is empty")
	}
	return v
}

// money parses a non-negative amount. Both "1234.50" and "1234,50" are
// accepted; thousands separators are not.
func (c *checker) money(field, value string) decimal.Decimal {
	v := strings.TrimSpace(value)
	if v == "" {
		c.fail(field, value, "required field is empty")
		return decimal.Zero
	}
	d, err := ParseMoney(v)
	if err != nil {
		c.fail(field, value, "invalid number")
		return decimal.Zero
	}
	if d.IsNegative() {
		c.fail(field, value, "must not be negative")
	}
	return d
}

func (c *checker) positiveInt(field, value string) int {
	v := strings.TrimSpace(value)
	if v == "" {
		c.fail(field, value, "required field is empty")
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.fail(field, value, "invalid number")
		return 0
	}
	if n <= 0 {
		c.fail(field, value, "must be greater than zero")
	}
	return n
}

func (c *checker) date(field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		c.fail(field, value, "required field is empty")
		return ""
	}
	if _, err := time.Parse(DateLayout, v); err != nil {
		c.fail(field, value, "invalid date, use YYYY-MM-DD")
	}
	return v
}

// ParseMoney parses a decimal amount, accepting a comma as the decimal mark.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ProductForm is the raw input of the product modal.
type ProductForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Brand       string `json:"brand"`
	CategoryID  string `json:"category_id"`
}

// Validate checks the form and builds the API payload.
func (f ProductForm) Validate() (api.ProductInput, error) {
	var c checker
	in := api.ProductInput{
		Name:        c.required("name", f.Name),
		Description: optional(f.Description),
		Brand:       optional(f.Brand),
		Price:       c.money("price", f.Price).InexactFloat64(),
		CategoryID:  c.positiveInt("category_id", f.CategoryID),
	}
	return in, c.err()
}

// ProductFormFrom pre-fills the edit modal from an existing product.
func ProductFormFrom(p api.Product) ProductForm {
	f := ProductForm{
		Name:       p.Name,
		Price:      decimal.NewFromFloat(p.Price).String(),
		CategoryID: strconv.Itoa(p.CategoryID),
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Brand != nil {
		f.Brand = *p.Brand
	}
	return f
}

// CategoryForm is the raw input of the category modal.
type CategoryForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the form and builds the API payload.
func (f CategoryForm) Validate() (api.CategoryInput, error) {
	var c checker
	in := api.CategoryInput{
		Name:        c.required("name", f.Name),
		Description: optional(f.Description),
	}
	return in, c.err()
}

// SaleForm is the raw input of the new-sale modal.
type SaleForm struct {
	ProductID  string `json:"product_id"`
	Quantity   string `json:"quantity"`
	TotalPrice string `json:"total_price"`
	Date       string `json:"date"` // Defaults to today when empty
}

// Validate checks the form and builds the API payload. now supplies the
// default date.
func (f SaleForm) Validate(now time.Time) (api.SaleInput, error) {
	var c checker
	date := f.Date
	if strings.TrimSpace(date) == "" {
		date = now.Format(DateLayout)
	}
	in := api.SaleInput{
		ProductID:  c.positiveInt("product_id", f.ProductID),
		Quantity:   c.positiveInt("quantity", f.Quantity),
		TotalPrice: c.money("total_price", f.TotalPrice).InexactFloat64(),
		Date:       c.date("date", date),
	}
	return in, c.err()
}

// SaleEditForm is the inline edit row of the sales table.
type SaleEditForm struct {
	Quantity   string `json:"quantity"`
	TotalPrice string `json:"total_price"`
	Date       string `json:"date"`
}

// Validate checks the edit row and builds the API payload.
func (f SaleEditForm) Validate() (api.SaleUpdate, error) {
	var c checker
	in := api.SaleUpdate{
		Quantity:   c.positiveInt("quantity", f.Quantity),
		TotalPrice: c.money("total_price", f.TotalPrice).InexactFloat64(),
		Date:       c.date("date", f.Date),
	}
	return in, c.err()
}
