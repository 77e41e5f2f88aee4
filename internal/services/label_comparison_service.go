package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
)

// PRSource fetches the PRs matching search terms
type PRSource interface {
	FetchPRs(ctx context.Context, terms []string, repo string) ([]models.PullRequest, error)
}

// LabelComparisonService finds PRs carrying one label but missing another
type LabelComparisonService struct {
	source PRSource
	now    func() time.Time
}

func NewLabelComparisonService(source PRSource) *LabelComparisonService {
	return &LabelComparisonService{source: source, now: time.Now}
}

// Compare lists the PRs created in the last days days that have hasLabel but not notLabel
func (s *LabelComparisonService) Compare(ctx context.Context, hasLabel, notLabel string, days int) (*models.LabelComparison, error) {
	if hasLabel == "" || notLabel == "" {
		return nil, fmt.Errorf("%w: both labels are required", models.ErrInvalidArgument)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", models.ErrInvalidArgument, days)
	}

	now := s.now()
	terms := []string{CreatedFilter(now.AddDate(0, 0, -days), now), LabelFilter(hasLabel)}
	prs, err := s.source.FetchPRs(ctx, terms, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PRs labelled %q: %w", hasLabel, err)
	}

	result := &models.LabelComparison{
		HasLabel:     hasLabel,
		NotLabel:     notLabel,
		Candidates:   len(prs),
		PullRequests: make([]models.PullRequest, 0),
	}
	for _, pr := range prs {
		if pr.HasLabel(notLabel) {
			continue
		}
		result.PullRequests = append(result.PullRequests, pr)
		switch {
		case pr.MergedAt != nil:
			result.Merged++
		case pr.State == models.PRStateOpen:
			result.Open++
		}
	}
	return result, nil
}
