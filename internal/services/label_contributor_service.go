package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ReviewBatchFetcher loads the review graphs of many PRs, one slice per PR in input order
type ReviewBatchFetcher interface {
	Reviews(ctx context.Context, prs []models.PullRequest) ([][]models.Review, error)
}

// LabelContributorService compares time to first approval between
// internal and external authors of a label's PRs
type LabelContributorService struct {
	source   PRSource
	reviews  ReviewBatchFetcher
	calendar *WorkingCalendar
	users    *UserMap
	now      func() time.Time
}

func NewLabelContributorService(source PRSource, reviews ReviewBatchFetcher, calendar *WorkingCalendar, users *UserMap) *LabelContributorService {
	if users == nil {
		users = NewUserMap(nil)
	}
	return &LabelContributorService{
		source:   source,
		reviews:  reviews,
		calendar: calendar,
		users:    users,
		now:      time.Now,
	}
}

// Stats covers the PRs carrying label created in the last days days.
// Authors in the user map are internal, everyone else is external.
func (s *LabelContributorService) Stats(ctx context.Context, label string, days int) (*models.LabelContributorStats, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: label is required", models.ErrInvalidArgument)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", models.ErrInvalidArgument, days)
	}

	now := s.now()
	terms := []string{CreatedFilter(now.AddDate(0, 0, -days), now), LabelFilter(label)}
	prs, err := s.source.FetchPRs(ctx, terms, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PRs labelled %q: %w", label, err)
	}

	reviews, err := s.reviews.Reviews(ctx, prs)
	if err != nil {
		return nil, err
	}

	stats := &models.LabelContributorStats{
		Label:    label,
		Days:     days,
		Total:    len(prs),
		Internal: models.ContributorGroup{PullRequests: make([]models.ApprovalTiming, 0)},
		External: models.ContributorGroup{PullRequests: make([]models.ApprovalTiming, 0)},
	}
	var internalHours, externalHours float64
	for i, pr := range prs {
		timing := models.ApprovalTiming{PullRequest: pr}
		if approvedAt := FirstApproval(pr, reviews[i]); approvedAt != nil {
			hours := s.calendar.WorkingHoursBetween(pr.CreatedAt, *approvedAt)
			timing.ApprovalHours = &hours
		}

		group, total := &stats.External, &externalHours
		if s.users.Has(pr.Author) {
			group, total = &stats.Internal, &internalHours
		}
		group.PullRequests = append(group.PullRequests, timing)
		if timing.ApprovalHours != nil {
			group.Approved++
			*total += *timing.ApprovalHours
		}
	}
	if stats.Internal.Approved > 0 {
		stats.Internal.AvgApprovalHours = internalHours / float64(stats.Internal.Approved)
	}
	if stats.External.Approved > 0 {
		stats.External.AvgApprovalHours = externalHours / float64(stats.External.Approved)
	}

	logger.WithFields(logrus.Fields{
		"label":    label,
		"internal": len(stats.Internal.PullRequests),
		"external": len(stats.External.PullRequests),
	}).Info("Computed label contributor stats")
	return stats, nil
}

// FirstApproval returns when pr was first approved by someone other than its
// author, or nil if it never was
func FirstApproval(pr models.PullRequest, reviews []models.Review) *time.Time {
	var first *time.Time
	for _, review := range reviews {
		if review.State != models.ReviewStateApproved || review.SubmittedAt == nil {
			continue
		}
		if review.Reviewer == "" || review.Reviewer == pr.Author {
			continue
		}
		if first == nil || review.SubmittedAt.Before(*first) {
			submitted := *review.SubmittedAt
			first = &submitted
		}
	}
	return first
}
