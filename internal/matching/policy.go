package matching

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects how compatible openings are ranked.
type Kind string

const (
	// PriorityOrder picks the opening in the most preferred location.
	PriorityOrder Kind = "priority"
	// Weighted blends GPA and location priority into a score.
	Weighted Kind = "weighted"
)

const (
	DefaultGPAWeight      = 0.6
	DefaultLocationWeight = 0.4
	DefaultDepth          = 3
)

// Policy configures a matching run.
type Policy struct {
	Kind Kind
	// RequireSkillOverlap additionally demands that the candidate shares at
	// least one skill with the opening.
	RequireSkillOverlap bool

	// Weighted policy settings.
	GPAWeight      float64
	LocationWeight float64
	// Depth is the deepest preference index the location term accounts for.
	// It must be at least the length of the longest preference list.
	Depth int
}

// DefaultPolicy ranks by location priority only.
func DefaultPolicy() Policy {
	return Policy{Kind: PriorityOrder}
}

// WeightedPolicy returns a weighted policy with the given settings.
func WeightedPolicy(gpaWeight, locationWeight float64, depth int) Policy {
	return Policy{
		Kind:           Weighted,
		GPAWeight:      gpaWeight,
		LocationWeight: locationWeight,
		Depth:          depth,
	}
}

// ParseKind maps user input to a Kind. Empty input selects PriorityOrder.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriorityOrder:
		return PriorityOrder, nil
	case Weighted:
		return Weighted, nil
	default:
		return "", &ConfigurationError{Setting: "policy", Message: fmt.Sprintf("unknown policy %q", s)}
	}
}

func (p Policy) String() string {
	if p.Kind == Weighted {
		return fmt.Sprintf("%s(gpa=%.2f,location=%.2f,depth=%d)", p.Kind, p.GPAWeight, p.LocationWeight, p.Depth)
	}
	return string(p.Kind)
}

// Validate checks the policy against the longest preference list that will
// be ranked with it.
func (p Policy) Validate(maxPreferences int) error {
	switch p.Kind {
	case PriorityOrder:
		return nil
	case Weighted:
	default:
		return &ConfigurationError{Setting: "policy", Message: fmt.Sprintf("unknown policy %q", p.Kind)}
	}

	if invalidWeight(p.GPAWeight) {
		return &ConfigurationError{Setting: "gpa_weight", Message: fmt.Sprintf("must be a non-negative number, got %v", p.GPAWeight)}
	}
	if invalidWeight(p.LocationWeight) {
		return &ConfigurationError{Setting: "location_weight", Message: fmt.Sprintf("must be a non-negative number, got %v", p.LocationWeight)}
	}
	if p.Depth <= 0 {
		return &ConfigurationError{Setting: "depth", Message: fmt.Sprintf("must be positive, got %d", p.Depth)}
	}
	if p.Depth < maxPreferences {
		return &ConfigurationError{
			Setting: "depth",
			Message: fmt.Sprintf("%d is smaller than the longest preferred location list (%d)", p.Depth, maxPreferences),
		}
	}

	return nil
}

func invalidWeight(w float64) bool {
	return w < 0 || math.IsNaN(w) || math.IsInf(w, 0)
}

// score is only meaningful for the weighted policy.
func (p Policy) score(gpa float64, priority int) float64 {
	return gpa*p.GPAWeight + float64(p.Depth-priority)*p.LocationWeight
}
