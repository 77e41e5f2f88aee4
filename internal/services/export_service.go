package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary    = "Summary"
	sheetOutOfSLO   = "Out of SLO"
	sheetReviewers  = "Reviewers"
	sheetPoints     = "Points"
	sheetThroughput = "Throughput"
	sheetRockets    = "Rockets"
)

// ExportService writes reports to xlsx workbooks
type ExportService struct {
	users *UserMap
}

func NewExportService(users *UserMap) *ExportService {
	if users == nil {
		users = NewUserMap(nil)
	}
	return &ExportService{users: users}
}

// WriteXLSX saves the report to path
func (s *ExportService) WriteXLSX(report *Report, path string) error {
	f, err := s.Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// Write streams the workbook to w
func (s *ExportService) Write(report *Report, w io.Writer) error {
	f, err := s.Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

// Workbook builds one sheet per report section
func (s *ExportService) Workbook(report *Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{sheetSummary, s.summaryRows(report)},
		{sheetOutOfSLO, s.outOfSLORows(report)},
		{sheetReviewers, s.leaderboardRows("Reviews", report.Reviewers)},
		{sheetPoints, s.leaderboardRows("Points", report.Points)},
		{sheetThroughput, s.throughputRows(report)},
		{sheetRockets, s.rocketRows(report)},
	}

	for _, sheet := range sheets {
		if sheet.name != sheetSummary {
			if _, err := f.NewSheet(sheet.name); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := writeRows(f, sheet.name, sheet.rows, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", sheet.name, err)
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

func (s *ExportService) summaryRows(report *Report) [][]interface{} {
	return [][]interface{}{
		{"Metric", "Value"},
		{"Query", report.Query},
		{"Window start", report.WindowStart.Format("2006-01-02 15:04")},
		{"Window end", report.WindowEnd.Format("2006-01-02 15:04")},
		{"SLO hours", report.SLOHours},
		{"Total PRs", report.Compliance.Total},
		{"Within SLO", report.Compliance.WithinSLO},
		{"Out of SLO", report.Compliance.OutOfSLO},
		{"Within SLO %", report.Compliance.Percentage},
		{"Active contributors", report.Team.ActiveContributors},
		{"PRs per developer", report.Team.PRsPerDeveloper},
	}
}

func (s *ExportService) outOfSLORows(report *Report) [][]interface{} {
	rows := [][]interface{}{{"Repository", "PR", "Author", "State", "Reviewers", "URL"}}
	for _, summary := range report.OutOfSLO {
		reviewers := make([]string, 0, len(summary.Reviewers))
		for _, reviewer := range summary.Reviewers {
			reviewers = append(reviewers, s.users.Alias(reviewer.User))
		}
		rows = append(rows, []interface{}{
			summary.PullRequest.Repository,
			summary.PullRequest.Number,
			s.users.Alias(summary.PullRequest.Author),
			string(summary.State),
			strings.Join(reviewers, ", "),
			summary.PullRequest.URL,
		})
	}
	return rows
}

func (s *ExportService) leaderboardRows(label string, entries []models.LeaderboardEntry) [][]interface{} {
	rows := [][]interface{}{{"User", label}}
	for _, entry := range entries {
		rows = append(rows, []interface{}{s.users.Alias(entry.User), entry.Count})
	}
	return rows
}

func (s *ExportService) throughputRows(report *Report) [][]interface{} {
	weekSet := make(map[string]struct{})
	for _, record := range report.Throughput {
		for week := range record.WeeklyBreakdown {
			weekSet[week] = struct{}{}
		}
	}
	weeks := make([]string, 0, len(weekSet))
	for week := range weekSet {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	header := []interface{}{"Author", "Total PRs", "Active weeks", "Avg PRs/week"}
	for _, week := range weeks {
		header = append(header, week)
	}
	rows := [][]interface{}{header}
	for _, record := range report.Throughput {
		row := []interface{}{s.users.Alias(record.Author), record.TotalPRs, record.WeeksWithActivity, record.AvgPRsPerWeek}
		for _, week := range weeks {
			row = append(row, record.WeeklyBreakdown[week])
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *ExportService) rocketRows(report *Report) [][]interface{} {
	rows := [][]interface{}{{"Author", "Rockets", "Reactors", "Repository", "PR", "URL", "Comment"}}
	for _, comment := range report.Rockets {
		reactors := make([]string, 0, len(comment.Reactors))
		for _, reactor := range comment.Reactors {
			reactors = append(reactors, s.users.Alias(reactor))
		}
		rows = append(rows, []interface{}{
			s.users.Alias(comment.Author),
			comment.Rockets,
			strings.Join(reactors, ", "),
			comment.Repository,
			comment.PRNumber,
			comment.URL,
			comment.Body,
		})
	}
	return rows
}
