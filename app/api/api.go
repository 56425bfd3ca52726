// Package api holds the JSON plumbing shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/models"
)

type ErrorBody struct {
	Error string `json:"error"`
}

// OKResponse writes v as JSON with the given status.
func OKResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ErrorResponse(w http.ResponseWriter, status int, message string) {
	OKResponse(w, status, ErrorBody{Error: message})
}

// ErrorStatus maps a repository error to an HTTP status code.
func ErrorStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case models.IsValidation(err):
		return http.StatusBadRequest
	case models.IsNotFound(err):
		return http.StatusNotFound
	case models.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with its mapped status. Storage failures are logged and
// their details are not sent to the client.
func Fail(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		message := "internal error"
		if errors.Is(err, models.ErrPersistence) {
			message = "storage unavailable"
		}
		ErrorResponse(w, status, message)
		return
	}
	ErrorResponse(w, status, err.Error())
}

// DecodeJSON reads the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// IntParam reads an integer query parameter, falling back to def when it is
// missing or malformed.
func IntParam(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// WindowParam decodes the days query parameter, using defDays when it is
// missing or malformed.
func WindowParam(r *http.Request, defDays int) models.Window {
	return models.WindowFromDays(IntParam(r, "days", defDays))
}
