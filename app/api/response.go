// Package api holds the pieces shared by every resource handler: JSON
// encoding, the error body contract, path parameters and middleware.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/packline/catalog/models"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// ErrorBody is the 400 response body.
type ErrorBody struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

// DetailBody is the 401/404/500 response body.
type DetailBody struct {
	Detail string `json:"detail"`
}

// WriteError maps domain errors to HTTP responses. entity names the resource
// in not-found messages. Unexpected errors are logged and answered with 500.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error, entity string) {
	var verr *models.ValidationError
	var qerr *models.QueryParamError

	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "Invalid data", Details: verr.Fields})
	case errors.As(err, &qerr):
		WriteJSON(w, http.StatusBadRequest, ErrorBody{
			Error:   qerr.Headline(),
			Details: map[string][]string{qerr.Param: {qerr.Reason}},
		})
	case errors.Is(err, models.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, DetailBody{Detail: entity + " not found"})
	default:
		log.Error("Request failed", zap.String("entity", entity), zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, DetailBody{Detail: "Internal server error"})
	}
}

// BadJSON answers a body that could not be decoded.
func BadJSON(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{
		Error:   "Invalid data",
		Details: map[string][]string{"non_field_errors": {"Invalid JSON body: " + err.Error()}},
	})
}

// DecodeJSON decodes the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// PathID reads a positive integer path value. ok is false when it is malformed.
func PathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// NotFound answers 404 for a resource.
func NotFound(w http.ResponseWriter, entity string) {
	WriteJSON(w, http.StatusNotFound, DetailBody{Detail: entity + " not found"})
}

// ObjectDeleter removes stored image objects.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// RemoveObjects deletes keys after their rows are gone. Failures are logged only.
func RemoveObjects(ctx context.Context, d ObjectDeleter, log *zap.Logger, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := d.Delete(ctx, key); err != nil {
			log.Warn("Failed to remove stored image", zap.String("key", key), zap.Error(err))
		}
	}
}
