package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/inventory/pkg/apperr"
	"github.com/shashiranjanraj/inventory/pkg/logger"
)

// Messages shown for errors whose detail must not reach the client.
const (
	MsgInternal         = "An error occurred"
	MsgNotFound         = "Resource not found"
	MsgMethodNotAllowed = "Method not allowed"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON response.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 JSON response.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Message sends {"message": msg} with status 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Error sends {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// NotFound sends the generic 404 body.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, MsgNotFound)
}

// MethodNotAllowed sends the generic 405 body.
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}

// Internal sends the opaque 500 body.
func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, MsgInternal)
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindMissingField, apperr.KindValidation, apperr.KindBadRequest, apperr.KindInsufficientStock:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail renders err. Errors that carry a Kind are shown with their message;
// everything else is logged with full detail and reported as an opaque 500.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		logger.WithCtx(r.Context()).Error("request failed",
			"error", err.Error(),
			"method", r.Method,
			"path", r.URL.Path,
		)
		Internal(w)
		return
	}

	status := StatusOf(e.Kind)
	logger.WithCtx(r.Context()).Debug("request rejected",
		"kind", e.Kind.String(),
		"status", status,
		"error", err.Error(),
	)
	JSON(w, status, errorBody{Error: e.Message, Fields: e.Fields})
}
