package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/service"
	"skillswap/backend/pkg/helpers"
)

// envelope is the uniform response shape of the HTTP API.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondError maps service errors onto HTTP statuses. Unrecognized errors
// become opaque 500s so internals never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		fields, _ := helpers.DecodeValidationError(err.Error())
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Error: &apiError{Code: "validation_failed", Message: "validation failed", Fields: fields},
		})
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrBelowRedeemMinimum):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Error: &apiError{Code: "invalid_amount", Message: err.Error()},
		})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, envelope{
			Error: &apiError{Code: "not_found", Message: err.Error()},
		})
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrPaymentNotVerified):
		writeJSON(w, http.StatusPaymentRequired, envelope{
			Error: &apiError{Code: "payment_required", Message: err.Error()},
		})
	case errors.Is(err, service.ErrAlreadyBooked),
		errors.Is(err, service.ErrSessionNotBookable),
		errors.Is(err, service.ErrNotBillable),
		errors.Is(err, service.ErrDuplicatePaymentRef):
		writeJSON(w, http.StatusConflict, envelope{
			Error: &apiError{Code: "conflict", Message: err.Error()},
		})
	case errors.Is(err, service.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, envelope{
			Error: &apiError{Code: "forbidden", Message: "not allowed"},
		})
	case errors.Is(err, service.ErrGatewayUnavailable):
		writeJSON(w, http.StatusBadGateway, envelope{
			Error: &apiError{Code: "gateway_unavailable", Message: "payment gateway unavailable"},
		})
	default:
		writeJSON(w, http.StatusInternalServerError, envelope{
			Error: &apiError{Code: "internal", Message: "internal server error"},
		})
	}
}

func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Error: &apiError{Code: "bad_request", Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// urlID parses a numeric URL parameter.
func urlID(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, name), 10, 64)
}

// pageParams reads page/per_page query parameters with defaults.
func pageParams(r *http.Request) (int32, int32) {
	page := int32(1)
	perPage := int32(20)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("per_page"), 10, 32); err == nil && v > 0 {
		perPage = int32(v)
	}
	return page, perPage
}
