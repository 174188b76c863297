package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/apprenticeship-matcher/internal/matching"
)

const (
	matchesSheet = "Matches"
	summarySheet = "Summary"
)

// ExportXLSX writes results to an xlsx workbook with a matches sheet and a
// summary sheet. The .xlsx extension is added when missing.
func ExportXLSX(path string, results []matching.Result, policy matching.Policy) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", matchesSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return "", fmt.Errorf("create summary sheet: %w", err)
	}

	if err := writeMatchesSheet(f, results); err != nil {
		return "", fmt.Errorf("failed to create matches sheet: %w", err)
	}
	if err := writeSummarySheet(f, results, policy); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return path, nil
}

func writeMatchesSheet(f *excelize.File, results []matching.Result) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	unmatchedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := setRow(f, matchesSheet, 1, MatchHeaders); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(MatchHeaders), 1)
	if err := f.SetCellStyle(matchesSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, r := range results {
		row := i + 2
		cells := MatchRow(r)

		values := make([]any, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		// Numeric columns stay numeric so the sheet can be sorted.
		values[2] = r.GPA
		if r.Matched() {
			values[6] = r.Stipend
			values[7] = r.Priority + 1
			if r.Score != nil {
				values[8] = *r.Score
			}
		}

		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(matchesSheet, cell, &values); err != nil {
			return err
		}
		if !r.Matched() {
			end, _ := excelize.CoordinatesToCellName(len(MatchHeaders), row)
			if err := f.SetCellStyle(matchesSheet, cell, end, unmatchedStyle); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(matchesSheet, "A", "I", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(matchesSheet, "J", "J", 48); err != nil {
		return err
	}
	return f.SetPanes(matchesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeSummarySheet(f *excelize.File, results []matching.Result, policy matching.Policy) error {
	summary := matching.Summarize(results)

	rows := [][]any{
		{"Generated", time.Now().Format(time.RFC3339)},
		{"Policy", policy.String()},
		{"Candidates", len(results)},
		{"Matched", summary.Matched},
	}

	reasons := make([]string, 0, len(summary.Unmatched))
	for reason := range summary.Unmatched {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		rows = append(rows, []any{"Unmatched: " + reason, summary.Unmatched[reason]})
	}

	for i, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 48)
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
