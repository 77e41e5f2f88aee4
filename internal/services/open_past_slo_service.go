package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/pkg/logger"
)

// OpenPastSLOService lists open PRs that nobody has reviewed and that are
// already older than the SLO in working time
type OpenPastSLOService struct {
	source   PRSource
	calendar *WorkingCalendar
	sloHours float64
	days     int
	now      func() time.Time
}

func NewOpenPastSLOService(source PRSource, calendar *WorkingCalendar, sloHours float64, days int) *OpenPastSLOService {
	return &OpenPastSLOService{
		source:   source,
		calendar: calendar,
		sloHours: sloHours,
		days:     days,
		now:      time.Now,
	}
}

// Cutoff is the latest creation time a PR can have and still be past the SLO
func (s *OpenPastSLOService) Cutoff() time.Time {
	return s.calendar.SubtractWorkingTime(s.now(), time.Duration(s.sloHours*float64(time.Hour)))
}

// Terms returns the search terms for authors, or every author when empty
func (s *OpenPastSLOService) Terms(authors []string) []string {
	now := s.now()
	terms := make([]string, 0, 4)
	if len(authors) > 0 {
		terms = append(terms, AuthorQuery(authors))
	}
	return append(terms,
		CreatedFilter(now.AddDate(0, 0, -s.days), s.Cutoff()),
		"review:none",
		"is:open",
	)
}

// Find returns the open, unreviewed PRs by authors created before the cutoff
func (s *OpenPastSLOService) Find(ctx context.Context, authors []string, repo string) ([]models.PullRequest, error) {
	prs, err := s.source.FetchPRs(ctx, s.Terms(authors), repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open PRs: %w", err)
	}

	cutoff := s.Cutoff()
	open := make([]models.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.State != models.PRStateOpen || pr.CreatedAt.After(cutoff) {
			continue
		}
		open = append(open, pr)
	}
	logger.WithField("cutoff", cutoff.Format(time.RFC3339)).Infof("Found %d open PRs past SLO", len(open))
	return open, nil
}
