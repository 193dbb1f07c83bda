package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"ev-dashboard/internal/analysis"
	"ev-dashboard/internal/odds"
)

type edgeRequest struct {
	Probability *float64 `json:"probability"`
	OddsInput
}

func requireProbability(p *float64) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: probability is required", analysis.ErrMissingParameter)
	}
	return *p, nil
}

// Edge evaluates a probability against offered odds.
func (h *Handler) Edge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := requireProbability(req.Probability)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	o, err := req.Decimal()
	if err != nil {
		respondErr(w, r, err)
		return
	}
	edge, err := analysis.ComputeEdge(p, o)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, edge)
}

type stakeRequest struct {
	Label       string   `json:"label,omitempty"`
	Probability *float64 `json:"probability"`
	OddsInput
	Bankroll *float64               `json:"bankroll,omitempty"`
	Policy   *analysis.PolicyConfig `json:"policy,omitempty"`
}

// Stake recommends a stake. Bankroll and policy default to the saved settings.
func (h *Handler) Stake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := requireProbability(req.Probability)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	o, err := req.Decimal()
	if err != nil {
		respondErr(w, r, err)
		return
	}

	current := h.settings.Get()
	bankroll := current.Bankroll
	if req.Bankroll != nil {
		bankroll = *req.Bankroll
	}
	policyCfg := current.Policy
	if req.Policy != nil {
		policyCfg = *req.Policy
	}
	policy, err := policyCfg.Policy()
	if err != nil {
		respondErr(w, r, err)
		return
	}

	rec, err := analysis.RecommendStake(policy, p, o, bankroll)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if h.notifier != nil {
		if edge, err := analysis.ComputeEdge(p, o); err == nil {
			label := req.Label
			if label == "" {
				label = "manual"
			}
			h.notifier.AlertValueBet(label, edge, rec)
		}
	}

	respondJSON(w, http.StatusOK, rec)
}

type fairRequest struct {
	Odds   []float64 `json:"odds"`
	Method string    `json:"method,omitempty"` // "multiplicative" (default) or "power"
}

type fairResponse struct {
	Overround     float64   `json:"overround"`
	Method        string    `json:"method"`
	Probabilities []float64 `json:"probabilities"`
}

// Fair removes the bookmaker margin from a market's odds.
func (h *Handler) Fair(w http.ResponseWriter, r *http.Request) {
	var req fairRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	over, err := odds.Overround(req.Odds...)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	resp := fairResponse{Overround: over, Method: strings.ToLower(req.Method)}
	switch resp.Method {
	case "", "multiplicative":
		resp.Method = "multiplicative"
		resp.Probabilities, err = odds.FairProbabilities(req.Odds...)
	case "power":
		if len(req.Odds) != 2 {
			respondError(w, http.StatusBadRequest, "power method requires exactly two outcomes")
			return
		}
		var a, b float64
		a, b, err = odds.FairProbabilitiesPower(req.Odds[0], req.Odds[1])
		resp.Probabilities = []float64{a, b}
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown method: %s", req.Method))
		return
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type estimateRequest struct {
	Model  string  `json:"model,omitempty"` // "normal" (default) or "poisson"
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev,omitempty"`
	Line   float64 `json:"line"`
	// Optional odds for the over; when set the response includes its edge
	OverOdds float64 `json:"over_odds,omitempty"`
}

type estimateResponse struct {
	Over     float64        `json:"probability_over"`
	Under    float64        `json:"probability_under"`
	Push     float64        `json:"probability_push,omitempty"` // Poisson whole-number lines only
	OverEdge *analysis.Edge `json:"over_edge,omitempty"`
}

// Estimate derives an over/under probability from a distribution model.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		resp estimateResponse
		err  error
	)
	switch strings.ToLower(req.Model) {
	case "", "normal":
		resp.Over, err = analysis.ProbabilityOver(req.Mean, req.StdDev, req.Line)
		resp.Under = 1 - resp.Over
	case "poisson":
		resp.Over, resp.Under, resp.Push, err = poissonEstimate(req.Mean, req.Line)
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown model: %s", req.Model))
		return
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if req.OverOdds != 0 {
		edge, err := analysis.ComputeEdge(resp.Over, req.OverOdds)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		resp.OverEdge = &edge
	}
	respondJSON(w, http.StatusOK, resp)
}

func poissonEstimate(lambda, line float64) (over, under, push float64, err error) {
	if over, err = analysis.PoissonOver(lambda, line); err != nil {
		return 0, 0, 0, err
	}
	if under, err = analysis.PoissonUnder(lambda, line); err != nil {
		return 0, 0, 0, err
	}
	if push, err = analysis.PoissonPush(lambda, line); err != nil {
		return 0, 0, 0, err
	}
	return over, under, push, nil
}
