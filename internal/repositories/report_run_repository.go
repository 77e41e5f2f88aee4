package repositories

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/google/uuid"
)

// ReportRunRepository archives report runs and their out-of-SLO PRs
type ReportRunRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewReportRunRepository creates a new ReportRunRepository
func NewReportRunRepository(db *sql.DB) *ReportRunRepository {
	return &ReportRunRepository{db: db}
}

// Create stores a run together with its out-of-SLO PRs in one transaction
func (r *ReportRunRepository) Create(run *models.ReportRun, outOfSLO []models.ReportRunPR) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO report_runs (id, query, window_start, window_end, slo_hours, total_prs, within_slo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		run.ID,
		run.Query,
		run.WindowStart,
		run.WindowEnd,
		run.SLOHours,
		run.TotalPRs,
		run.WithinSLO,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}

	prQuery := `
		INSERT INTO report_run_prs (id, run_id, repository, number, author, state, url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i := range outOfSLO {
		pr := &outOfSLO[i]
		if pr.ID == "" {
			pr.ID = uuid.New().String()
		}
		pr.RunID = run.ID
		if _, err := tx.Exec(prQuery, pr.ID, pr.RunID, pr.Repository, pr.Number, pr.Author, pr.State, pr.URL); err != nil {
			return fmt.Errorf("failed to insert out-of-SLO PR %s#%d: %w", pr.Repository, pr.Number, err)
		}
	}

	return tx.Commit()
}

// GetRecent returns the latest runs, newest first
func (r *ReportRunRepository) GetRecent(limit int) ([]*models.ReportRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, query, window_start, window_end, slo_hours, total_prs, within_slo, created_at
		FROM report_runs ORDER BY created_at DESC LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.ReportRun
	for rows.Next() {
		run := &models.ReportRun{}
		err := rows.Scan(
			&run.ID,
			&run.Query,
			&run.WindowStart,
			&run.WindowEnd,
			&run.SLOHours,
			&run.TotalPRs,
			&run.WithinSLO,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetOutOfSLO returns the out-of-SLO PRs recorded for a run
func (r *ReportRunRepository) GetOutOfSLO(runID string) ([]models.ReportRunPR, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, run_id, repository, number, author, state, url
		FROM report_run_prs WHERE run_id = ? ORDER BY rowid
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prs []models.ReportRunPR
	for rows.Next() {
		var pr models.ReportRunPR
		if err := rows.Scan(&pr.ID, &pr.RunID, &pr.Repository, &pr.Number, &pr.Author, &pr.State, &pr.URL); err != nil {
			return nil, err
		}
		prs = append(prs, pr)
	}

	return prs, rows.Err()
}
