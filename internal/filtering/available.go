package filtering

import (
	"context"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
)

// AvailableOpenings returns the openings a candidate may still apply to: same
// specialization, a preferred location in any order, at least one shared skill
// and no existing application. Input order is kept.
//
// A candidate without preferred locations or skills gets a
// *profile.IncompleteProfileError.
func AvailableOpenings(candidate apprenticeship.Candidate, openings []apprenticeship.Opening, applied map[string]struct{}) ([]apprenticeship.Opening, error) {
	p := profile.Normalize(candidate)
	if err := p.Check(); err != nil {
		return nil, err
	}

	steps := []Filter{NewSpecialization(), NewLocations(), NewSkills(), NewAppliedHistory()}
	deps := Deps{Candidate: &candidate, Profile: p, Applied: applied}

	left, _, err := Run(context.Background(), &Config{}, deps, steps, apprenticeship.NewOpenings(openings))
	if err != nil {
		return nil, err
	}
	return left.Values(), nil
}
