package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/sirupsen/logrus"
)

// UserActivityService reports one user's approvals, review comments and
// authored PRs over a look-back window
type UserActivityService struct {
	source  PRSource
	reviews ReviewBatchFetcher
	now     func() time.Time
}

func NewUserActivityService(source PRSource, reviews ReviewBatchFetcher) *UserActivityService {
	return &UserActivityService{source: source, reviews: reviews, now: time.Now}
}

// Terms returns the two searches run for login: PRs it authored and PRs it
// reviewed, both created inside the window
func (s *UserActivityService) Terms(login string, since, now time.Time) (authored, reviewed []string) {
	created := CreatedFilter(since, now)
	return []string{AuthorQuery([]string{login}), created}, []string{"reviewed-by:" + login, created}
}

// Activity collects login's activity on PRs created in the last days days
func (s *UserActivityService) Activity(ctx context.Context, login string, days int) (*models.UserActivity, error) {
	if login == "" {
		return nil, fmt.Errorf("%w: user is required", models.ErrInvalidArgument)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", models.ErrInvalidArgument, days)
	}

	now := s.now()
	since := now.AddDate(0, 0, -days)
	authoredTerms, reviewedTerms := s.Terms(login, since, now)

	authored, err := s.source.FetchPRs(ctx, authoredTerms, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PRs authored by %s: %w", login, err)
	}
	reviewed, err := s.source.FetchPRs(ctx, reviewedTerms, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PRs reviewed by %s: %w", login, err)
	}
	prs := mergePRs(authored, reviewed)

	reviews, err := s.reviews.Reviews(ctx, prs)
	if err != nil {
		return nil, err
	}

	activity := SummarizeActivity(login, since, prs, reviews)
	activity.Days = days
	logger.WithFields(logrus.Fields{
		"user":      login,
		"approvals": len(activity.Approvals),
		"comments":  len(activity.Comments),
		"authored":  len(activity.AuthoredPRs),
	}).Info("Collected user activity")
	return activity, nil
}

// SummarizeActivity folds the reviews of prs (reviews[i] belongs to prs[i])
// into login's activity since since. Comments only count on reviews login
// submitted inside the window.
func SummarizeActivity(login string, since time.Time, prs []models.PullRequest, reviews [][]models.Review) *models.UserActivity {
	activity := &models.UserActivity{
		Login:       login,
		Since:       since,
		Approvals:   make([]models.ActivityApproval, 0),
		Comments:    make([]models.ActivityComment, 0),
		AuthoredPRs: make([]models.PullRequest, 0),
	}

	for i, pr := range prs {
		if strings.EqualFold(pr.Author, login) && !pr.CreatedAt.Before(since) {
			activity.AuthoredPRs = append(activity.AuthoredPRs, pr)
		}

		for _, review := range reviews[i] {
			if !strings.EqualFold(review.Reviewer, login) || review.SubmittedAt == nil || review.SubmittedAt.Before(since) {
				continue
			}
			if review.State == models.ReviewStateApproved {
				activity.Approvals = append(activity.Approvals, models.ActivityApproval{
					Repository: pr.Repository,
					PRNumber:   pr.Number,
					PRTitle:    pr.Title,
					PRURL:      pr.URL,
					ApprovedAt: *review.SubmittedAt,
				})
			}
			for _, comment := range review.Comments {
				if !strings.EqualFold(comment.Author, login) {
					continue
				}
				commentedAt := *review.SubmittedAt
				if comment.CreatedAt != nil {
					commentedAt = *comment.CreatedAt
				}
				if commentedAt.Before(since) {
					continue
				}
				activity.Comments = append(activity.Comments, models.ActivityComment{
					Repository:  pr.Repository,
					PRNumber:    pr.Number,
					PRTitle:     pr.Title,
					Body:        comment.Body,
					URL:         comment.URL,
					CommentedAt: commentedAt,
				})
			}
		}
	}

	sort.SliceStable(activity.Approvals, func(i, j int) bool {
		return activity.Approvals[i].ApprovedAt.Before(activity.Approvals[j].ApprovedAt)
	})
	sort.SliceStable(activity.Comments, func(i, j int) bool {
		return activity.Comments[i].CommentedAt.Before(activity.Comments[j].CommentedAt)
	})
	sort.SliceStable(activity.AuthoredPRs, func(i, j int) bool {
		return activity.AuthoredPRs[i].CreatedAt.Before(activity.AuthoredPRs[j].CreatedAt)
	})
	return activity
}

// mergePRs concatenates PR lists, keeping the first copy of each PR
func mergePRs(lists ...[]models.PullRequest) []models.PullRequest {
	seen := make(map[string]struct{})
	var merged []models.PullRequest
	for _, list := range lists {
		for _, pr := range list {
			if _, dup := seen[pr.Key()]; dup {
				continue
			}
			seen[pr.Key()] = struct{}{}
			merged = append(merged, pr)
		}
	}
	return merged
}
