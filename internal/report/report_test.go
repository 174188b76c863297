package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spigell/apprenticeship-matcher/internal/ai"
	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/matching"
)

func sampleResults() []matching.Result {
	score := 3.78
	return []matching.Result{
		{CandidateID: "S1001", CandidateName: "Sara Ahmed", GPA: 4.3, OpeningID: "2", CompanyID: "acme", Location: "Riyadh", Stipend: 2500, Priority: 0, Score: &score},
		{CandidateID: "S1002", CandidateName: "Omar", GPA: 3.1, Priority: matching.NoPriority, Reason: matching.ReasonNoSpecialization},
	}
}

func TestMatchRow(t *testing.T) {
	results := sampleResults()

	assert.Equal(t,
		[]string{"S1001", "Sara Ahmed", "4.30", "2", "acme", "Riyadh", "2500", "1", "3.78", ""},
		MatchRow(results[0]))
	assert.Equal(t,
		[]string{"S1002", "Omar", "3.10", "-", "-", "-", "-", "-", "-", matching.ReasonNoSpecialization},
		MatchRow(results[1]))
}

func TestWriteMatches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatches(&buf, sampleResults()))

	out := buf.String()
	for _, want := range []string{"Candidate", "Sara Ahmed", "Riyadh", "2500", "3.78", matching.ReasonNoSpecialization, "1 of 2 candidates matched"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteOpenings(t *testing.T) {
	openings := []apprenticeship.Opening{
		{ID: "1", CompanyID: "acme", Specialization: "IT", Location: "Jeddah", Stipend: 3000, RequiredSkills: []string{"Python", "SQL"}},
		{ID: "2", CompanyID: "acme", Specialization: "IT", Location: "Riyadh", Stipend: 2500},
	}

	var plain bytes.Buffer
	require.NoError(t, WriteOpenings(&plain, openings, nil))
	assert.Contains(t, plain.String(), "Python, SQL")
	assert.NotContains(t, plain.String(), "AI score")

	var reviewed bytes.Buffer
	assessments := map[string]*ai.FitAssessment{"1": {Fit: true, Score: 0.82, Reason: "strong python"}}
	require.NoError(t, WriteOpenings(&reviewed, openings, assessments))
	assert.Contains(t, reviewed.String(), "AI score")
	assert.Contains(t, reviewed.String(), "0.82")
	assert.Contains(t, reviewed.String(), "strong python")
}

func TestWriteApplications(t *testing.T) {
	apps := []apprenticeship.ApplicationDetails{{
		Application: apprenticeship.Application{
			ID: "a1", CandidateID: "S1001", OpeningID: "2", Status: apprenticeship.StatusPending,
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		CandidateName: "Sara Ahmed", GPA: 4.3, CompanyID: "acme", Location: "Riyadh", Stipend: 2500,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteApplications(&buf, apps))
	for _, want := range []string{"a1", "pending", "Sara Ahmed", "2026-03-01"} {
		assert.Contains(t, buf.String(), want)
	}
}

func TestWriteCompanies(t *testing.T) {
	companies := []apprenticeship.Company{
		{ID: "acme", Name: "Acme", Email: "hr@acme.io"},
		{ID: "globex", Name: "Globex", Email: "jobs@globex.io"},
	}
	openings := []apprenticeship.Opening{
		{ID: "1", CompanyID: "acme"},
		{ID: "2", CompanyID: "acme"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCompanies(&buf, companies, openings))

	counts := map[string]string{}
	for _, line := range strings.Split(buf.String(), "\n") {
		cells := strings.Split(line, "│")
		if len(cells) < 5 {
			continue
		}
		counts[strings.TrimSpace(cells[1])] = strings.TrimSpace(cells[4])
	}
	assert.Equal(t, "2", counts["acme"])
	assert.Equal(t, "0", counts["globex"])
	assert.Contains(t, buf.String(), "jobs@globex.io")
}

func TestExportXLSX(t *testing.T) {
	path, err := ExportXLSX(filepath.Join(t.TempDir(), "matches"), sampleResults(), matching.WeightedPolicy(0.6, 0.4, 3))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(matchesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, MatchHeaders, rows[0])
	assert.Equal(t, "S1001", rows[1][0])
	assert.Equal(t, "Riyadh", rows[1][5])
	assert.Equal(t, "2500", rows[1][6])
	assert.Equal(t, "3.78", rows[1][8])
	assert.Equal(t, matching.ReasonNoSpecialization, rows[2][9])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"Policy", "weighted(gpa=0.60,location=0.40,depth=3)"}, summary[1])
	assert.Equal(t, []string{"Matched", "1"}, summary[3])
	assert.Equal(t, []string{"Unmatched: " + matching.ReasonNoSpecialization, "1"}, summary[4])
}
