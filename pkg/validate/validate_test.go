package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/inventory/pkg/validate"
)

type productInput struct {
	Barcode *string  `json:"barcode" validate:"required,max=12"`
	Name    *string  `json:"name"    validate:"required,max=100"`
	Price   *float64 `json:"price"   validate:"required,gte=0"`
	Stock   *int     `json:"stock"   validate:"nullable,gte=0"`
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func intp(i int) *int         { return &i }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(productInput{
		Barcode: strp("123456789012"),
		Name:    strp("Widget"),
		Price:   f64p(9.99),
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestZeroPriceIsPresent(t *testing.T) {
	errs := validate.Struct(productInput{
		Barcode: strp("000000000001"),
		Name:    strp("Freebie"),
		Price:   f64p(0),
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected price 0 to pass, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	for _, f := range []string{"barcode", "name", "price"} {
		msg, ok := errs[f]
		if !ok {
			t.Errorf("expected %s to be required", f)
			continue
		}
		if !validate.IsRequiredFailure(msg) {
			t.Errorf("expected required failure for %s, got %q", f, msg)
		}
	}
	if _, ok := errs["stock"]; ok {
		t.Error("stock is nullable and must not be reported")
	}
}

func TestMaxLength(t *testing.T) {
	errs := validate.Struct(productInput{
		Barcode: strp("1234567890123"),
		Name:    strp("Widget"),
		Price:   f64p(1),
	})
	msg, ok := errs["barcode"]
	if !ok {
		t.Fatal("expected barcode length error")
	}
	if validate.IsRequiredFailure(msg) {
		t.Errorf("length error reported as required: %q", msg)
	}
}

func TestNegativeRejected(t *testing.T) {
	errs := validate.Struct(productInput{
		Barcode: strp("1"),
		Name:    strp("n"),
		Price:   f64p(-1),
		Stock:   intp(-3),
	})
	if _, ok := errs["price"]; !ok {
		t.Error("expected negative price to fail")
	}
	if _, ok := errs["stock"]; !ok {
		t.Error("expected negative stock to fail")
	}
}

func TestPlainFields(t *testing.T) {
	type in struct {
		Quantity int    `json:"quantity" validate:"gt=0"`
		Username string `json:"username" validate:"required,min=2"`
	}
	if errs := validate.Struct(in{Quantity: 0, Username: "a"}); len(errs) != 2 {
		t.Errorf("expected 2 errors, got: %v", errs)
	}
	if errs := validate.Struct(in{Quantity: 2, Username: "admin"}); validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}
