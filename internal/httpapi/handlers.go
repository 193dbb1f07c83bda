package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"ev-dashboard/internal/alerts"
	"ev-dashboard/internal/analysis"
	"ev-dashboard/internal/ledger"
	"ev-dashboard/internal/odds"
	"ev-dashboard/internal/settings"
)

// SettingsStore is the settings persistence the API needs.
type SettingsStore interface {
	Get() settings.Settings
	Save(s settings.Settings) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	ledger   *ledger.Service
	settings SettingsStore
	notifier *alerts.Notifier
}

// NewHandler creates a new handler. notifier may be nil.
func NewHandler(svc *ledger.Service, store SettingsStore, notifier *alerts.Notifier) *Handler {
	return &Handler{
		ledger:   svc,
		settings: store,
		notifier: notifier,
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ev-dashboard",
	})
}

// OddsInput accepts either decimal odds or American odds, never both.
type OddsInput struct {
	Odds     float64 `json:"odds"`
	American *int    `json:"american,omitempty"`
}

// Decimal resolves the input to decimal odds.
func (o OddsInput) Decimal() (float64, error) {
	if o.Odds != 0 && o.American != nil {
		return 0, fmt.Errorf("%w: send either odds or american, not both", analysis.ErrInvalidParameter)
	}
	if o.American != nil {
		return odds.AmericanToDecimal(*o.American)
	}
	if err := odds.ValidateDecimal(o.Odds); err != nil {
		return 0, err
	}
	return o.Odds, nil
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadySettled):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidOutcome), analysis.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request: %v", err)
	}
	return nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondErr maps err to a status and writes it. Internal errors are logged
// and not echoed to the client.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}
