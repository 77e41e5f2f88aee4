package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportRun is an archived summary of one report invocation
type ReportRun struct {
	ID          string    `json:"id" db:"id"`
	Query       string    `json:"query" db:"query"`
	WindowStart time.Time `json:"window_start" db:"window_start"`
	WindowEnd   time.Time `json:"window_end" db:"window_end"`
	SLOHours    float64   `json:"slo_hours" db:"slo_hours"`
	TotalPRs    int       `json:"total_prs" db:"total_prs"`
	WithinSLO   int       `json:"within_slo" db:"within_slo"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ReportRunPR is an out-of-SLO pull request recorded for a run
type ReportRunPR struct {
	ID         string  `json:"id" db:"id"`
	RunID      string  `json:"run_id" db:"run_id"`
	Repository string  `json:"repository" db:"repository"`
	Number     int     `json:"number" db:"number"`
	Author     string  `json:"author" db:"author"`
	State      PRState `json:"state" db:"state"`
	URL        string  `json:"url" db:"url"`
}

// NewReportRun creates a new ReportRun with a generated UUID
func NewReportRun(query string, windowStart, windowEnd time.Time, sloHours float64) *ReportRun {
	return &ReportRun{
		ID:          uuid.New().String(),
		Query:       query,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		SLOHours:    sloHours,
		CreatedAt:   time.Now(),
	}
}
