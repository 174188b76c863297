// Package ai defines the contract between the opportunities filter chain and
// language model providers.
package ai

import (
	"context"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

// FitAssessment is a provider verdict on a single opening.
type FitAssessment struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Message string  `json:"message,omitempty"`
	Raw     string  `json:"-"`
}

// Reviewer judges how well an opening suits a candidate.
type Reviewer interface {
	Review(ctx context.Context, candidate *apprenticeship.Candidate, opening *apprenticeship.Opening) (*FitAssessment, error)
}
