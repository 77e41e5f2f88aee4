package services

import (
	"time"

	"github.com/alimgiray/prslo/internal/models"
)

// SLOService evaluates whether a PR's reviewers responded within the SLO,
// measured in working hours since the PR was created.
type SLOService struct {
	calendar *WorkingCalendar
	sloHours float64
}

func NewSLOService(calendar *WorkingCalendar, sloHours float64) *SLOService {
	return &SLOService{calendar: calendar, sloHours: sloHours}
}

// SLOHours returns the configured threshold
func (s *SLOService) SLOHours() float64 {
	return s.sloHours
}

// Evaluate folds a PR's reviews into one status per distinct reviewer, in
// order of first appearance. Self-reviews and unsubmitted reviews are
// ignored. A reviewer is within SLO if any of their reviews is.
func (s *SLOService) Evaluate(pr models.PullRequest, reviews []models.Review) models.PRReviewSummary {
	summary := models.PRReviewSummary{
		PullRequest: pr,
		Reviewers:   []models.ReviewerSloStatus{},
		State:       summaryState(pr),
	}

	index := make(map[string]int)
	for _, review := range reviews {
		if review.Reviewer == "" || review.Reviewer == pr.Author || review.SubmittedAt == nil {
			continue
		}
		within := s.IsWithinSLO(*review.SubmittedAt, pr.CreatedAt)

		if i, ok := index[review.Reviewer]; ok {
			if within {
				summary.Reviewers[i].IsWithinSLO = true
			}
			continue
		}
		index[review.Reviewer] = len(summary.Reviewers)
		summary.Reviewers = append(summary.Reviewers, models.ReviewerSloStatus{
			User:        review.Reviewer,
			IsWithinSLO: within,
		})
	}
	return summary
}

// IsWithinSLO checks the working hours between a review and PR creation
func (s *SLOService) IsWithinSLO(submittedAt, createdAt time.Time) bool {
	return s.calendar.WorkingHoursBetween(submittedAt, createdAt) <= s.sloHours
}

func summaryState(pr models.PullRequest) models.PRState {
	if pr.State == models.PRStateMerged || pr.MergedAt != nil {
		return models.PRStateMerged
	}
	return models.PRStateOpen
}
