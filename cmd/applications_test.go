package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

func TestApplicationsScope(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		company   string
		wantErr   bool

		wantCandidate string
		wantCompany   string
	}{
		{name: "candidate", candidate: " S1001 ", wantCandidate: "S1001"},
		{name: "company", company: "acme", wantCompany: "acme"},
		{name: "neither", wantErr: true},
		{name: "blank values", candidate: "  ", company: "", wantErr: true},
		{name: "both", candidate: "S1001", company: "acme", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidateID, companyID, err := applicationsScope(tt.candidate, tt.company)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCandidate, candidateID)
			assert.Equal(t, tt.wantCompany, companyID)
		})
	}
}

func TestPendingApplications(t *testing.T) {
	app := func(id string, status apprenticeship.Status) apprenticeship.ApplicationDetails {
		return apprenticeship.ApplicationDetails{Application: apprenticeship.Application{ID: id, Status: status}}
	}
	apps := []apprenticeship.ApplicationDetails{
		app("a1", apprenticeship.StatusAccepted),
		app("a2", apprenticeship.StatusPending),
		app("a3", apprenticeship.StatusPending),
	}

	pending := pendingApplications(apps)
	require.Len(t, pending, 2)
	assert.Equal(t, "a2", pending[0].ID)
	assert.Equal(t, "a3", pending[1].ID)
}

func TestOpeningAt(t *testing.T) {
	openings := apprenticeship.NewOpenings([]apprenticeship.Opening{
		{ID: "opening with spaces", CompanyID: "acme"},
		{ID: "2", CompanyID: "globex"},
	})

	require.NotNil(t, openingAt(openings, 0))
	assert.Equal(t, "opening with spaces", openingAt(openings, 0).ID)
	assert.Equal(t, "2", openingAt(openings, 1).ID)
	assert.Nil(t, openingAt(openings, 2))
	assert.Nil(t, openingAt(openings, -1))
}
