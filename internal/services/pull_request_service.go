package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/codeGROOVE-dev/retry"
	"github.com/sirupsen/logrus"
)

const (
	searchPageSize     = 100
	searchMaxPages     = 10
	searchMaxAttempts  = 3
	searchRetryBackoff = 2 * time.Second
)

// PullRequestService fetches the PRs matching a search query
type PullRequestService struct {
	search       SearchClient
	org          string
	archivedRepo string
	retryDelay   time.Duration
}

func NewPullRequestService(search SearchClient, org, archivedRepo string) *PullRequestService {
	return &PullRequestService{
		search:       search,
		org:          org,
		archivedRepo: archivedRepo,
		retryDelay:   searchRetryBackoff,
	}
}

// Query returns the full search query for the given terms and scope
func (s *PullRequestService) Query(terms []string, repo string) string {
	return BuildSearchQuery(terms, s.org, repo, s.archivedRepo)
}

// FetchPRs pages through the search results for terms, scoped to repo when
// set or to the organization otherwise. Closed-unmerged PRs and duplicates
// are dropped. A page that still fails after its retries aborts the fetch.
func (s *PullRequestService) FetchPRs(ctx context.Context, terms []string, repo string) ([]models.PullRequest, error) {
	query := s.Query(terms, repo)
	log := logger.WithField("query", query)

	seen := make(map[string]struct{})
	var prs []models.PullRequest

	for page := 1; ; page++ {
		if page > searchMaxPages {
			log.Warnf("Reached the %d page limit (%d items), results may be incomplete", searchMaxPages, searchMaxPages*searchPageSize)
			break
		}

		items, err := s.fetchPage(ctx, query, page)
		if err != nil {
			return nil, err
		}

		for _, pr := range items {
			if pr.IsClosedUnmerged() {
				continue
			}
			if _, dup := seen[pr.Key()]; dup {
				continue
			}
			seen[pr.Key()] = struct{}{}
			prs = append(prs, pr)
		}

		log.WithFields(logrus.Fields{"page": page, "items": len(items)}).Debug("Fetched search page")
		if len(items) < searchPageSize {
			break
		}
	}

	log.Infof("Found %d pull requests", len(prs))
	return prs, nil
}

func (s *PullRequestService) fetchPage(ctx context.Context, query string, page int) ([]models.PullRequest, error) {
	var items []models.PullRequest
	err := retry.Do(
		func() error {
			var err error
			items, err = s.search.SearchIssues(ctx, query, page, searchPageSize)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(searchMaxAttempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(s.retryDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.WithFields(logrus.Fields{"page": page, "attempt": n + 1}).WithError(err).Warn("Search page failed, retrying")
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search page %d after %d attempts: %w", page, searchMaxAttempts, err)
	}
	return items, nil
}
