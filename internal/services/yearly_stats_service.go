package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/codeGROOVE-dev/retry"
	"github.com/sirupsen/logrus"
)

const (
	graphSearchPageSize      = 50
	graphSearchFilesPageSize = 25
	graphSearchAttempts      = 3
	graphSearchBackoff       = 2 * time.Second
	graphSearchTimeout       = 60 * time.Second
	graphSearchMaxPages      = 10
	topEntries               = 10
)

const pullRequestSearchQuery = `
query($query: String!, $first: Int!, $after: String) {
  search(query: $query, type: ISSUE, first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    nodes {
      ... on PullRequest {
        number
        title
        url
        createdAt
        mergedAt
        state
        additions
        deletions
        changedFiles
        author { login }
        repository { name }
        files(first: 30) { nodes { path } }
        reviews(first: 50) {
          nodes {
            author { login }
            state
            submittedAt
            url
          }
        }
      }
    }
  }
  rateLimit { cost remaining }
}`

type searchNode struct {
	Number       int         `json:"number"`
	Title        string      `json:"title"`
	URL          string      `json:"url"`
	CreatedAt    time.Time   `json:"createdAt"`
	MergedAt     *time.Time  `json:"mergedAt"`
	State        string      `json:"state"`
	Additions    int         `json:"additions"`
	Deletions    int         `json:"deletions"`
	ChangedFiles int         `json:"changedFiles"`
	Author       *graphActor `json:"author"`
	Repository   *struct {
		Name string `json:"name"`
	} `json:"repository"`
	Files *struct {
		Nodes []struct {
			Path string `json:"path"`
		} `json:"nodes"`
	} `json:"files"`
	Reviews *struct {
		Nodes []struct {
			Author      *graphActor `json:"author"`
			State       string      `json:"state"`
			SubmittedAt *time.Time  `json:"submittedAt"`
			URL         string      `json:"url"`
		} `json:"nodes"`
	} `json:"reviews"`
}

type searchData struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
		Nodes []searchNode `json:"nodes"`
	} `json:"search"`
	RateLimit struct {
		Remaining int `json:"remaining"`
	} `json:"rateLimit"`
}

// YearlyStatsService builds a user's calendar-year review and authoring stats
// from the GraphQL search API
type YearlyStatsService struct {
	graphQL      GraphQLClient
	org          string
	archivedRepo string
	loc          *time.Location
	retryDelay   time.Duration
}

func NewYearlyStatsService(graphQL GraphQLClient, org, archivedRepo string, loc *time.Location) *YearlyStatsService {
	if loc == nil {
		loc = time.Local
	}
	return &YearlyStatsService{
		graphQL:      graphQL,
		org:          org,
		archivedRepo: archivedRepo,
		loc:          loc,
		retryDelay:   graphSearchBackoff,
	}
}

// ReviewQuery is the search for PRs reviewed by login and created in year
func (s *YearlyStatsService) ReviewQuery(login string, year int) string {
	terms := []string{"reviewed-by:" + login, yearFilter(year), "is:pr"}
	return strings.Join(append(terms, ScopeTerms(s.org, "", s.archivedRepo)...), " ")
}

// AuthoredQuery is the search for merged PRs authored by login in year
func (s *YearlyStatsService) AuthoredQuery(login string, year int) string {
	terms := []string{"author:" + login, yearFilter(year), "is:pr", "draft:false", "is:merged"}
	return strings.Join(append(terms, ScopeTerms(s.org, "", s.archivedRepo)...), " ")
}

func yearFilter(year int) string {
	return fmt.Sprintf("created:%d-01-01..%d-12-31", year, year)
}

// ReviewStats fetches and summarises the reviews login gave in year
func (s *YearlyStatsService) ReviewStats(ctx context.Context, login string, year int) (*models.YearlyReviewStats, error) {
	prs, err := s.Search(ctx, s.ReviewQuery(login, year), graphSearchPageSize)
	if err != nil {
		return nil, err
	}
	return SummarizeReviews(login, year, prs, s.loc), nil
}

// PRStats fetches and summarises the merged PRs login authored in year
func (s *YearlyStatsService) PRStats(ctx context.Context, login string, year int) (*models.YearlyPRStats, error) {
	prs, err := s.Search(ctx, s.AuthoredQuery(login, year), graphSearchFilesPageSize)
	if err != nil {
		return nil, err
	}
	return SummarizeAuthoredPRs(login, year, prs, s.loc), nil
}

// Search pages through a GraphQL PR search by cursor, up to
// graphSearchMaxPages pages. Each page is retried and bounded by its own
// timeout; nodes that are not PRs are skipped.
func (s *YearlyStatsService) Search(ctx context.Context, query string, pageSize int) ([]models.SearchPullRequest, error) {
	log := logger.WithField("query", query)

	var prs []models.SearchPullRequest
	var cursor *string
	for page := 1; ; page++ {
		if page > graphSearchMaxPages {
			log.Warnf("Reached the %d page limit (%d items), results may be incomplete", graphSearchMaxPages, graphSearchMaxPages*pageSize)
			break
		}

		data, err := s.searchPage(ctx, query, pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch search page %d: %w", page, err)
		}

		for _, node := range data.Search.Nodes {
			if node.Repository == nil {
				continue
			}
			prs = append(prs, node.toSearchPullRequest())
		}
		log.WithFields(logrus.Fields{
			"page":                 page,
			"items":                len(data.Search.Nodes),
			"rate_limit_remaining": data.RateLimit.Remaining,
		}).Debug("Fetched search page")

		if !data.Search.PageInfo.HasNextPage {
			break
		}
		next := data.Search.PageInfo.EndCursor
		cursor = &next
	}

	log.Infof("Found %d pull requests", len(prs))
	return prs, nil
}

func (s *YearlyStatsService) searchPage(ctx context.Context, query string, pageSize int, cursor *string) (*searchData, error) {
	variables := map[string]interface{}{
		"query": query,
		"first": pageSize,
		"after": cursor,
	}

	var data searchData
	err := retry.Do(
		func() error {
			pageCtx, cancel := context.WithTimeout(ctx, graphSearchTimeout)
			defer cancel()
			data = searchData{}
			return s.graphQL.GraphQL(pageCtx, pullRequestSearchQuery, variables, &data)
		},
		retry.Context(ctx),
		retry.Attempts(graphSearchAttempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(s.retryDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.WithField("attempt", n+1).WithError(err).Warn("Search failed, retrying")
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (n searchNode) toSearchPullRequest() models.SearchPullRequest {
	pr := models.SearchPullRequest{
		Repository:   n.Repository.Name,
		Number:       n.Number,
		Title:        n.Title,
		URL:          n.URL,
		Author:       n.Author.login(),
		State:        n.State,
		CreatedAt:    n.CreatedAt,
		MergedAt:     n.MergedAt,
		Additions:    n.Additions,
		Deletions:    n.Deletions,
		ChangedFiles: n.ChangedFiles,
	}
	if n.Files != nil {
		for _, file := range n.Files.Nodes {
			pr.Files = append(pr.Files, file.Path)
		}
	}
	if n.Reviews != nil {
		for _, review := range n.Reviews.Nodes {
			pr.Reviews = append(pr.Reviews, models.SearchReviewNode{
				Author:      review.Author.login(),
				State:       models.ReviewState(review.State),
				SubmittedAt: review.SubmittedAt,
				URL:         review.URL,
			})
		}
	}
	return pr
}

// SummarizeReviews keeps login's reviews submitted during year, deduplicated
// by PR and submission time, and counts them by state, month, author and
// repository.
func SummarizeReviews(login string, year int, prs []models.SearchPullRequest, loc *time.Location) *models.YearlyReviewStats {
	stats := &models.YearlyReviewStats{
		Login:   login,
		Year:    year,
		Reviews: make([]models.ReviewActivity, 0),
		ByState: make(map[models.ReviewState]int),
		ByMonth: make(map[string]int),
	}

	seen := make(map[string]struct{})
	for _, pr := range prs {
		for _, review := range pr.Reviews {
			if !strings.EqualFold(review.Author, login) || review.SubmittedAt == nil {
				continue
			}
			submitted := review.SubmittedAt.In(loc)
			if submitted.Year() != year {
				continue
			}
			key := fmt.Sprintf("%s|%d|%s", pr.Repository, pr.Number, submitted.Format(time.RFC3339Nano))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			author := pr.Author
			if author == "" {
				author = "unknown"
			}
			stats.Reviews = append(stats.Reviews, models.ReviewActivity{
				Repository: pr.Repository,
				PRNumber:   pr.Number,
				PRTitle:    pr.Title,
				PRURL:      pr.URL,
				PRAuthor:   author,
				ReviewedAt: submitted,
				State:      review.State,
				ReviewURL:  review.URL,
			})
		}
	}

	uniquePRs := make(map[string]struct{})
	authors := newTally()
	repos := newTally()
	for _, review := range stats.Reviews {
		uniquePRs[models.ReviewGraphKey(review.Repository, review.PRNumber)] = struct{}{}
		stats.ByState[review.State]++
		stats.ByMonth[MonthKey(review.ReviewedAt)]++
		authors.add(review.PRAuthor)
		repos.add(review.Repository)
	}

	stats.TotalReviews = len(stats.Reviews)
	stats.UniquePRsReviewed = len(uniquePRs)
	stats.UniqueAuthors = len(authors.order)
	stats.TopAuthors = authors.top(topEntries)
	stats.TopRepositories = repos.top(topEntries)
	return stats
}

// SummarizeAuthoredPRs categorises merged PRs and totals their changes
func SummarizeAuthoredPRs(login string, year int, prs []models.SearchPullRequest, loc *time.Location) *models.YearlyPRStats {
	stats := &models.YearlyPRStats{
		Login:        login,
		Year:         year,
		PullRequests: make([]models.AuthoredPR, 0, len(prs)),
		ByCategory:   make(map[models.PRCategory]models.CategoryStats),
		ByMonth:      make(map[string]int),
	}
	for _, category := range models.PRCategories {
		stats.ByCategory[category] = models.CategoryStats{}
	}

	repos := newTally()
	for _, pr := range prs {
		authored := models.AuthoredPR{
			Repository:   pr.Repository,
			Number:       pr.Number,
			Title:        pr.Title,
			URL:          pr.URL,
			CreatedAt:    pr.CreatedAt,
			MergedAt:     pr.MergedAt,
			Additions:    pr.Additions,
			Deletions:    pr.Deletions,
			ChangedFiles: pr.ChangedFiles,
			Category:     CategorizePR(pr.Repository, pr.Title, pr.Files),
		}
		stats.PullRequests = append(stats.PullRequests, authored)

		stats.TotalAdditions += pr.Additions
		stats.TotalDeletions += pr.Deletions
		stats.TotalChangedFiles += pr.ChangedFiles

		category := stats.ByCategory[authored.Category]
		category.Count++
		category.Additions += pr.Additions
		category.Deletions += pr.Deletions
		stats.ByCategory[authored.Category] = category

		stats.ByMonth[MonthKey(pr.CreatedAt.In(loc))]++
		repos.add(pr.Repository)
	}

	stats.TotalPRs = len(stats.PullRequests)
	stats.TopRepositories = repos.top(topEntries)
	return stats
}
