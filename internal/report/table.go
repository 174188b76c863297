// Package report renders matching results and application lists for people.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/spigell/apprenticeship-matcher/internal/ai"
	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/matching"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
)

const none = "-"

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	unmatchedStyle = cellStyle.Faint(true)
)

// MatchHeaders are the columns of the matches table and sheet.
var MatchHeaders = []string{"Candidate", "Name", "GPA", "Opening", "Company", "Location", "Stipend", "Preference", "Score", "Reason"}

// MatchRow formats a result as table cells. Preference is 1-based.
func MatchRow(r matching.Result) []string {
	row := []string{r.CandidateID, r.CandidateName, formatGPA(r.GPA), none, none, none, none, none, none, r.Reason}
	if !r.Matched() {
		return row
	}

	row[3] = r.OpeningID
	row[4] = orNone(r.CompanyID)
	row[5] = r.Location
	row[6] = strconv.Itoa(r.Stipend)
	row[7] = strconv.Itoa(r.Priority + 1)
	if r.Score != nil {
		row[8] = strconv.FormatFloat(*r.Score, 'f', 2, 64)
	}
	return row
}

// WriteMatches prints one row per result followed by a summary line.
func WriteMatches(w io.Writer, results []matching.Result) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, MatchRow(r))
	}

	t := newTable(MatchHeaders, rows).StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(results) && !results[row].Matched() {
			return unmatchedStyle
		}
		return cellStyle
	})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, matching.Summarize(results).String())
	return err
}

// WriteOpenings prints openings with AI verdicts when present.
func WriteOpenings(w io.Writer, openings []apprenticeship.Opening, assessments map[string]*ai.FitAssessment) error {
	headers := []string{"Opening", "Company", "Specialization", "Location", "Stipend", "Required skills"}
	if len(assessments) > 0 {
		headers = append(headers, "AI score", "AI reason")
	}

	rows := make([][]string, 0, len(openings))
	for _, o := range openings {
		row := []string{o.ID, o.CompanyID, o.Specialization, o.Location, strconv.Itoa(o.Stipend), orNone(profile.JoinList(o.RequiredSkills))}
		if len(assessments) > 0 {
			if a, ok := assessments[o.ID]; ok {
				row = append(row, strconv.FormatFloat(a.Score, 'f', 2, 64), orNone(a.Reason))
			} else {
				row = append(row, none, none)
			}
		}
		rows = append(rows, row)
	}

	_, err := fmt.Fprintln(w, styled(newTable(headers, rows)).Render())
	return err
}

// WriteApplications prints applications with the candidate and opening they join.
func WriteApplications(w io.Writer, apps []apprenticeship.ApplicationDetails) error {
	headers := []string{"Application", "Status", "Candidate", "Name", "GPA", "Opening", "Company", "Location", "Stipend", "Applied"}

	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		applied := none
		if !a.CreatedAt.IsZero() {
			applied = a.CreatedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{
			a.ID, string(a.Status), a.CandidateID, a.CandidateName, formatGPA(a.GPA),
			a.OpeningID, a.CompanyID, a.Location, strconv.Itoa(a.Stipend), applied,
		})
	}

	_, err := fmt.Fprintln(w, styled(newTable(headers, rows)).Render())
	return err
}

// WriteCompanies renders registered companies with their number of openings.
func WriteCompanies(w io.Writer, companies []apprenticeship.Company, openings []apprenticeship.Opening) error {
	posted := make(map[string]int, len(companies))
	for _, o := range openings {
		posted[o.CompanyID]++
	}

	rows := make([][]string, 0, len(companies))
	for _, c := range companies {
		rows = append(rows, []string{c.ID, c.Name, c.Email, strconv.Itoa(posted[c.ID])})
	}

	_, err := fmt.Fprintln(w, styled(newTable([]string{"Company", "Name", "Email", "Openings"}, rows)).Render())
	return err
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
}

func styled(t *table.Table) *table.Table {
	return t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
}

func formatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', 2, 64)
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}
