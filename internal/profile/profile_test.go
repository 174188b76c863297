package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "whitespace only", raw: "  , ,   ", want: []string{}},
		{name: "keeps case and order", raw: "Riyadh, Jeddah ,Dammam", want: []string{"Riyadh", "Jeddah", "Dammam"}},
		{name: "single", raw: " Python ", want: []string{"Python"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw))
		})
	}
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "Riyadh, Jeddah", JoinList([]string{" Riyadh", "", "Jeddah "}))
	assert.Equal(t, "", JoinList(nil))
}

func TestLocationsPreservesPriority(t *testing.T) {
	got := Locations([]string{" Riyadh", "JEDDAH", "riyadh", "Dammam, Mecca"})
	assert.Equal(t, []string{"riyadh", "jeddah", "dammam", "mecca"}, got)
}

func TestSkills(t *testing.T) {
	set := Skills([]string{"Python, Excel", " python ", ""})
	assert.Equal(t, []string{"excel", "python"}, set.Sorted())
	assert.True(t, set.Has("python"))
	assert.False(t, set.Has("Python"))
}

func TestSetIntersects(t *testing.T) {
	a := Skills([]string{"Go", "SQL"})
	b := Skills([]string{"sql"})
	c := Skills([]string{"Excel"})

	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
	assert.False(t, a.Intersects(c))
	assert.False(t, a.Intersects(Set{}))
}

func TestNormalize(t *testing.T) {
	p := Normalize(apprenticeship.Candidate{
		ID:                 "S1001",
		Specialization:     " IT ",
		PreferredLocations: []string{"Riyadh", "Jeddah", "Dammam"},
		Skills:             []string{"Python", "Excel"},
	})

	assert.Equal(t, "it", p.Specialization)
	assert.Equal(t, []string{"riyadh", "jeddah", "dammam"}, p.Locations)
	assert.True(t, p.Complete())

	priority, ok := p.Priority(" JEDDAH ")
	assert.True(t, ok)
	assert.Equal(t, 1, priority)

	_, ok = p.Priority("Mecca")
	assert.False(t, ok)

	assert.True(t, p.LocationSet().Has("dammam"))
}

func TestCheckIncompleteProfile(t *testing.T) {
	p := Normalize(apprenticeship.Candidate{ID: "S2", PreferredLocations: []string{"  "}, Skills: nil})

	err := p.Check()
	require.Error(t, err)

	var incomplete *IncompleteProfileError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "S2", incomplete.CandidateID)
	assert.Equal(t, []string{"preferred_locations", "skills"}, incomplete.Missing)
	assert.False(t, p.Complete())
}
