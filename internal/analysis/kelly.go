package analysis

// KellyCriterion computes the full-Kelly fraction of bankroll for decimal odds
// f* = edge / (d - 1), edge = p*d - 1
//
// This is the canonical (b*p - q) / b with b = d - 1 and q = 1 - p:
// b*p - q = p*d - p - 1 + p = p*d - 1.
//
// The result is negative when the bet has no edge; callers clamp.
func KellyCriterion(probability, decimalOdds float64) (float64, error) {
	edge, err := ComputeEdge(probability, decimalOdds)
	if err != nil {
		return 0, err
	}
	return edge.EV / (decimalOdds - 1), nil
}
