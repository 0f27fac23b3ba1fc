// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/validate"
)

// MsgMissingFields is returned when any `required` rule fails.
const MsgMissingFields = "Missing required fields"

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES.
//
// Failures come back as *apperr.Error:
//   - malformed, empty or oversized body → KindBadRequest
//   - any required field absent          → KindMissingField
//   - any other rule                     → KindValidation
func JSON(r *http.Request, dest interface{}) error {
	return decode(r, dest, false)
}

// OptionalJSON is JSON but treats an empty body as "all fields omitted".
func OptionalJSON(r *http.Request, dest interface{}) error {
	return decode(r, dest, true)
}

func decode(r *http.Request, dest interface{}, allowEmpty bool) error {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

		if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.Is(err, io.EOF) && allowEmpty:
			case errors.As(err, &maxErr):
				return apperr.Wrap(apperr.KindBadRequest,
					fmt.Sprintf("Request body too large (max %d bytes)", maxErr.Limit), err)
			default:
				return apperr.Wrap(apperr.KindBadRequest, "Invalid JSON body", err)
			}
		}
	} else if !allowEmpty {
		return apperr.BadRequest("Invalid JSON body")
	}

	errs := validate.Struct(dest)
	if !validate.HasErrors(errs) {
		return nil
	}

	for _, msg := range errs {
		if validate.IsRequiredFailure(msg) {
			return &apperr.Error{Kind: apperr.KindMissingField, Message: MsgMissingFields, Fields: errs}
		}
	}
	return apperr.Validation("Invalid request body", errs)
}
