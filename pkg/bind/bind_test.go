package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/bind"
)

type createInput struct {
	Barcode *string  `json:"barcode" validate:"required,max=12"`
	Name    *string  `json:"name"    validate:"required,max=100"`
	Price   *float64 `json:"price"   validate:"required,gte=0"`
}

type sellInput struct {
	Quantity *int `json:"quantity" validate:"nullable,gte=1"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
}

func TestJSONDecodesValidBody(t *testing.T) {
	var in createInput
	require.NoError(t, bind.JSON(post(`{"barcode":"111","name":"Pen","price":0}`), &in))
	assert.Equal(t, "111", *in.Barcode)
	assert.Equal(t, 0.0, *in.Price)
}

func TestJSONMissingField(t *testing.T) {
	var in createInput
	err := bind.JSON(post(`{"barcode":"111","price":2}`), &in)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindMissingField, e.Kind)
	assert.Equal(t, bind.MsgMissingFields, e.Message)
	assert.Contains(t, e.Fields, "name")
}

func TestJSONValidationFailure(t *testing.T) {
	var in createInput
	err := bind.JSON(post(`{"barcode":"1234567890123","name":"Pen","price":2}`), &in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestJSONMalformed(t *testing.T) {
	var in createInput
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(bind.JSON(post(`{"barcode":`), &in)))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(bind.JSON(post(``), &in)))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(bind.JSON(post(`{"price":"cheap"}`), &in)))
}

func TestOptionalJSONAcceptsEmptyBody(t *testing.T) {
	var in sellInput
	require.NoError(t, bind.OptionalJSON(post(``), &in))
	assert.Nil(t, in.Quantity)

	require.NoError(t, bind.OptionalJSON(post(`{"quantity":2}`), &in))
	assert.Equal(t, 2, *in.Quantity)

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(bind.OptionalJSON(post(`{"quantity":0}`), &in)))
}
