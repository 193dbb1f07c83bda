package httpapi

import (
	"net/http"

	"ev-dashboard/internal/settings"
)

// GetSettings returns the current portfolio settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.settings.Get())
}

// UpdateSettings replaces the portfolio settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s settings.Settings
	if err := decode(r, &s); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.Save(s); err != nil {
		respondErr(w, r, err)
		return
	}
	if h.notifier != nil {
		h.notifier.SetThreshold(s.ValueThreshold)
	}
	respondJSON(w, http.StatusOK, s)
}
