package analysis

import (
	"errors"

	"ev-dashboard/internal/odds"
)

// Input validation errors. They are deterministic for a given input and are
// never retried or silently corrected.
var (
	ErrInvalidOdds        = odds.ErrInvalidOdds
	ErrInvalidProbability = errors.New("invalid probability")
	ErrMissingParameter   = errors.New("missing required parameter")
	ErrInvalidParameter   = errors.New("invalid parameter")
)

// IsValidationError reports whether err is one of the input validation kinds
// above, as opposed to an infrastructure failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidOdds) ||
		errors.Is(err, ErrInvalidProbability) ||
		errors.Is(err, ErrMissingParameter) ||
		errors.Is(err, ErrInvalidParameter)
}
