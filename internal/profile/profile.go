// Package profile turns free-text candidate and opening fields into
// comparison-ready values.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

const listSeparator = ","

// Set is an unordered collection of folded tokens.
type Set map[string]struct{}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Intersects reports whether s and other share at least one token.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for v := range small {
		if large.Has(v) {
			return true
		}
	}
	return false
}

// Sorted returns the tokens in lexical order.
func (s Set) Sorted() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Fold trims s and folds its case for comparisons.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// SplitList splits comma separated text into trimmed, non-empty items.
// Original case and order are kept.
func SplitList(raw string) []string {
	parts := strings.Split(raw, listSeparator)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	return strings.Join(SplitList(strings.Join(items, listSeparator)), ", ")
}

// Locations folds preferred locations keeping their priority order.
// Items may themselves hold comma separated text. A location mentioned twice
// keeps the priority of its first mention.
func Locations(items []string) []string {
	seen := make(map[string]struct{})
	locations := make([]string, 0, len(items))
	for _, item := range items {
		for _, loc := range SplitList(item) {
			loc = Fold(loc)
			if _, dup := seen[loc]; dup {
				continue
			}
			seen[loc] = struct{}{}
			locations = append(locations, loc)
		}
	}
	return locations
}

// Skills folds skill labels into a set.
func Skills(items []string) Set {
	set := make(Set)
	for _, item := range items {
		for _, skill := range SplitList(item) {
			set[Fold(skill)] = struct{}{}
		}
	}
	return set
}

// Profile is the normalized form of a candidate.
type Profile struct {
	CandidateID    string
	Specialization string
	// Locations is ordered by priority, index 0 first.
	Locations []string
	Skills    Set
}

// Normalize builds the comparison-ready profile of c.
func Normalize(c apprenticeship.Candidate) Profile {
	return Profile{
		CandidateID:    c.ID,
		Specialization: Fold(c.Specialization),
		Locations:      Locations(c.PreferredLocations),
		Skills:         Skills(c.Skills),
	}
}

// Priority returns the index of location in the preference list.
func (p Profile) Priority(location string) (int, bool) {
	location = Fold(location)
	for i, loc := range p.Locations {
		if loc == location {
			return i, true
		}
	}
	return -1, false
}

// LocationSet returns the preferred locations without their order.
func (p Profile) LocationSet() Set {
	set := make(Set, len(p.Locations))
	for _, loc := range p.Locations {
		set[loc] = struct{}{}
	}
	return set
}

// Complete reports whether both locations and skills are present.
func (p Profile) Complete() bool {
	return p.Check() == nil
}

// Check returns an IncompleteProfileError naming the missing fields.
func (p Profile) Check() error {
	var missing []string
	if len(p.Locations) == 0 {
		missing = append(missing, "preferred_locations")
	}
	if len(p.Skills) == 0 {
		missing = append(missing, "skills")
	}
	if len(missing) == 0 {
		return nil
	}
	return &IncompleteProfileError{CandidateID: p.CandidateID, Missing: missing}
}

// IncompleteProfileError marks a candidate whose profile cannot be matched.
// It describes an expected state, callers show it rather than fail.
type IncompleteProfileError struct {
	CandidateID string
	Missing     []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("profile of candidate %q is incomplete: missing %s", e.CandidateID, strings.Join(e.Missing, ", "))
}
