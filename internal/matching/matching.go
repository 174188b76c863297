// Package matching ranks apprenticeship openings for candidates.
//
// The engine is a pure function of its input: it never mutates candidates or
// openings and keeps no state between calls, so disjoint candidate sets can be
// matched concurrently.
package matching

import (
	"fmt"
	"sort"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
)

// Reasons attached to results without an opening.
const (
	ReasonNoSpecialization = "no openings in specialization"
	ReasonNoLocation       = "no openings match preferred locations"
	ReasonNoSkillOverlap   = "no openings match skills in preferred locations"
	ReasonNoSkills         = "incomplete profile: no skills listed"
)

// NoPriority is the priority reported by results without an opening.
const NoPriority = -1

// Result is the outcome of matching one candidate.
type Result struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	GPA           float64 `json:"gpa"`

	// OpeningID is empty when no opening matched.
	OpeningID string `json:"opening_id,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Location  string `json:"location,omitempty"`
	Stipend   int    `json:"stipend,omitempty"`
	Priority  int    `json:"priority"`
	// Score is set by the weighted policy only.
	Score  *float64 `json:"score,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// Matched reports whether the result carries an opening.
func (r Result) Matched() bool {
	return r.OpeningID != ""
}

type indexedOpening struct {
	opening  *apprenticeship.Opening
	location string
	skills   profile.Set
}

type pair struct {
	opening  *indexedOpening
	priority int
	gpa      float64
	score    float64
}

type run struct {
	policy     Policy
	candidates []apprenticeship.Candidate
	profiles   []profile.Profile
	// bySpecialization holds openings in input order.
	bySpecialization map[string][]*indexedOpening
}

// Match returns one result per candidate, in candidate order.
// Invalid records or an inconsistent policy fail the whole call; no partial
// output is returned.
func Match(candidates []apprenticeship.Candidate, openings []apprenticeship.Opening, policy Policy) ([]Result, error) {
	r, err := prepare(candidates, openings, policy)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(candidates))
	for i := range candidates {
		results[i] = r.matchAt(i)
	}
	return results, nil
}

func prepare(candidates []apprenticeship.Candidate, openings []apprenticeship.Opening, policy Policy) (*run, error) {
	if err := validateInput(candidates, openings); err != nil {
		return nil, err
	}

	profiles := make([]profile.Profile, len(candidates))
	longest := 0
	for i, c := range candidates {
		profiles[i] = profile.Normalize(c)
		if n := len(profiles[i].Locations); n > longest {
			longest = n
		}
	}

	if err := policy.Validate(longest); err != nil {
		return nil, err
	}

	bySpecialization := make(map[string][]*indexedOpening)
	for i := range openings {
		o := &openings[i]
		spec := profile.Fold(o.Specialization)
		if spec == "" {
			continue
		}
		bySpecialization[spec] = append(bySpecialization[spec], &indexedOpening{
			opening:  o,
			location: profile.Fold(o.Location),
			skills:   profile.Skills(o.RequiredSkills),
		})
	}

	return &run{
		policy:           policy,
		candidates:       candidates,
		profiles:         profiles,
		bySpecialization: bySpecialization,
	}, nil
}

func validateInput(candidates []apprenticeship.Candidate, openings []apprenticeship.Opening) error {
	seen := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if err := c.Validate(); err != nil {
			return newValidationError("candidate", c.ID, err)
		}
		if _, dup := seen[c.ID]; dup {
			return newValidationError("candidate", c.ID, errDuplicateID)
		}
		seen[c.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(openings))
	for i := range openings {
		o := &openings[i]
		if err := o.Validate(); err != nil {
			return newValidationError("opening", o.ID, err)
		}
		if _, dup := seen[o.ID]; dup {
			return newValidationError("opening", o.ID, errDuplicateID)
		}
		seen[o.ID] = struct{}{}
	}

	return nil
}

func (r *run) matchAt(i int) Result {
	c := r.candidates[i]
	p := r.profiles[i]

	result := Result{
		CandidateID:   c.ID,
		CandidateName: c.Name,
		GPA:           c.GPA,
		Priority:      NoPriority,
	}

	relevant := r.bySpecialization[p.Specialization]
	if p.Specialization == "" || len(relevant) == 0 {
		result.Reason = ReasonNoSpecialization
		return result
	}

	if len(p.Locations) == 0 {
		result.Reason = ReasonNoLocation
		return result
	}

	if len(p.Skills) == 0 {
		result.Reason = ReasonNoSkills
		return result
	}

	pairs, skippedBySkills := r.pairs(c, p, relevant)
	if len(pairs) == 0 {
		result.Reason = ReasonNoLocation
		if skippedBySkills {
			result.Reason = ReasonNoSkillOverlap
		}
		return result
	}

	best := r.best(pairs)
	result.OpeningID = best.opening.opening.ID
	result.CompanyID = best.opening.opening.CompanyID
	result.Location = best.opening.opening.Location
	result.Stipend = best.opening.opening.Stipend
	result.Priority = best.priority
	if r.policy.Kind == Weighted {
		score := best.score
		result.Score = &score
	}

	return result
}

// pairs builds every (opening, priority) combination allowed by the candidate's
// preferred locations. skippedBySkills is true when some location match was
// discarded because of missing skill overlap.
func (r *run) pairs(c apprenticeship.Candidate, p profile.Profile, relevant []*indexedOpening) ([]pair, bool) {
	var pairs []pair
	skippedBySkills := false

	for priority, location := range p.Locations {
		for _, o := range relevant {
			if o.location != location {
				continue
			}
			if r.policy.RequireSkillOverlap && !p.Skills.Intersects(o.skills) {
				skippedBySkills = true
				continue
			}

			pr := pair{opening: o, priority: priority, gpa: c.GPA}
			if r.policy.Kind == Weighted {
				pr.score = r.policy.score(c.GPA, priority)
			}
			pairs = append(pairs, pr)
		}
	}

	return pairs, skippedBySkills
}

// best sorts pairs by the policy order and returns the first one.
// Opening id is the last key so the order is total.
func (r *run) best(pairs []pair) pair {
	weighted := r.policy.Kind == Weighted

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if weighted && a.score != b.score {
			return a.score > b.score
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.gpa != b.gpa {
			return a.gpa > b.gpa
		}
		return a.opening.opening.ID < b.opening.opening.ID
	})

	return pairs[0]
}

// MaxPreferences returns the longest normalized preferred location list among
// candidates. It is the minimum Depth a weighted policy accepts.
func MaxPreferences(candidates []apprenticeship.Candidate) int {
	longest := 0
	for _, c := range candidates {
		if n := len(profile.Locations(c.PreferredLocations)); n > longest {
			longest = n
		}
	}
	return longest
}

// Summary counts matched and unmatched results per reason.
type Summary struct {
	Matched   int
	Unmatched map[string]int
}

func Summarize(results []Result) Summary {
	s := Summary{Unmatched: make(map[string]int)}
	for _, r := range results {
		if r.Matched() {
			s.Matched++
			continue
		}
		s.Unmatched[r.Reason]++
	}
	return s
}

func (s Summary) String() string {
	total := s.Matched
	for _, n := range s.Unmatched {
		total += n
	}
	return fmt.Sprintf("%d of %d candidates matched", s.Matched, total)
}
