package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ev-dashboard/internal/ledger"
)

const maxListLimit = 500

// PlaceBet records a confirmed bet.
func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var in ledger.BetInput
	if err := decode(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.ledger.Place(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// ListBets returns bets, newest first.
// Query: sport, market, status, since (RFC 3339), limit.
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Limit == 0 || f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}

	bets, err := h.ledger.List(r.Context(), f)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if bets == nil {
		bets = []ledger.Bet{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bets":  bets,
		"count": len(bets),
	})
}

// GetBet returns a single bet.
func (h *Handler) GetBet(w http.ResponseWriter, r *http.Request) {
	b, err := h.ledger.Get(r.Context(), chi.URLParam(r, "betID"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

type settleRequest struct {
	Outcome string `json:"outcome"`
}

// SettleBet resolves a pending bet. Settling twice is a 409.
func (h *Handler) SettleBet(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	outcome, err := ledger.ParseStatus(req.Outcome)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	b, err := h.ledger.Settle(r.Context(), chi.URLParam(r, "betID"), outcome)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// Summary aggregates the ledger. With ?by=sport|market|status it returns one
// row per group.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if by := r.URL.Query().Get("by"); by != "" {
		groups, err := h.ledger.SummaryBy(r.Context(), f, ledger.Dimension(by))
		if err != nil {
			respondErr(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"by":     by,
			"groups": groups,
		})
		return
	}

	sum, err := h.ledger.Summary(r.Context(), f)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	f := ledger.Filter{
		Sport:  q.Get("sport"),
		Market: q.Get("market"),
	}

	if v := q.Get("status"); v != "" {
		st, err := ledger.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid since: %v", err)
		}
		f.Since = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit: %q", v)
		}
		f.Limit = n
	}
	return f, nil
}
