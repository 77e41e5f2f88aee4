package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedGraphQL returns one payload per call, failing the first failures calls
type pagedGraphQL struct {
	payloads []string
	failures int
	calls    int
	afters   []interface{}
}

func (p *pagedGraphQL) GraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	p.calls++
	if p.failures > 0 {
		p.failures--
		return errors.New("timeout")
	}
	p.afters = append(p.afters, variables["after"])
	payload := p.payloads[0]
	p.payloads = p.payloads[1:]
	return json.Unmarshal([]byte(payload), out)
}

const searchPageOne = `{
  "search": {
    "pageInfo": {"hasNextPage": true, "endCursor": "c1"},
    "nodes": [
      {
        "number": 1, "title": "Add ledger", "url": "u1", "createdAt": "2024-02-01T10:00:00Z",
        "author": {"login": "alice"}, "repository": {"name": "web"},
        "reviews": {"nodes": [
          {"author": {"login": "Bob"}, "state": "APPROVED", "submittedAt": "2024-02-01T12:00:00Z", "url": "r1"},
          {"author": {"login": "carol"}, "state": "COMMENTED", "submittedAt": "2024-02-01T12:00:00Z", "url": "r2"}
        ]}
      },
      {}
    ]
  },
  "rateLimit": {"remaining": 4000}
}`

const searchPageTwo = `{
  "search": {
    "pageInfo": {"hasNextPage": false, "endCursor": "c2"},
    "nodes": [
      {
        "number": 1, "title": "Add ledger", "url": "u1", "createdAt": "2024-02-01T10:00:00Z",
        "author": {"login": "alice"}, "repository": {"name": "web"},
        "reviews": {"nodes": [
          {"author": {"login": "bob"}, "state": "APPROVED", "submittedAt": "2024-02-01T12:00:00Z", "url": "r1"}
        ]}
      },
      {
        "number": 5, "title": "Fix totals", "url": "u5", "createdAt": "2023-12-30T10:00:00Z",
        "author": null, "repository": {"name": "api"},
        "reviews": {"nodes": [
          {"author": {"login": "bob"}, "state": "CHANGES_REQUESTED", "submittedAt": "2024-01-03T09:00:00Z", "url": "r3"},
          {"author": {"login": "bob"}, "state": "COMMENTED", "submittedAt": "2023-12-31T09:00:00Z", "url": "r4"},
          {"author": {"login": "bob"}, "state": "PENDING", "submittedAt": null, "url": "r5"}
        ]}
      }
    ]
  },
  "rateLimit": {"remaining": 3999}
}`

func newTestYearlyStatsService(client GraphQLClient) *YearlyStatsService {
	service := NewYearlyStatsService(client, "squareup", "zzz-archive-java", time.UTC)
	service.retryDelay = time.Millisecond
	return service
}

func TestYearlyQueries(t *testing.T) {
	service := newTestYearlyStatsService(&pagedGraphQL{})

	assert.Equal(t, "reviewed-by:bob created:2024-01-01..2024-12-31 is:pr org:squareup -repo:squareup/zzz-archive-java", service.ReviewQuery("bob", 2024))
	assert.Equal(t, "author:bob created:2024-01-01..2024-12-31 is:pr draft:false is:merged org:squareup -repo:squareup/zzz-archive-java", service.AuthoredQuery("bob", 2024))
}

func TestSearchFollowsCursor(t *testing.T) {
	client := &pagedGraphQL{payloads: []string{searchPageOne, searchPageTwo}, failures: 1}

	prs, err := newTestYearlyStatsService(client).Search(context.Background(), "q", graphSearchPageSize)
	require.NoError(t, err)

	assert.Len(t, prs, 3)
	assert.Equal(t, 3, client.calls)
	require.Len(t, client.afters, 2)
	assert.Nil(t, client.afters[0])
	require.NotNil(t, client.afters[1])
	assert.Equal(t, "c1", *client.afters[1].(*string))
	assert.Equal(t, "", prs[2].Author)
}

// endlessGraphQL always reports another page
type endlessGraphQL struct {
	calls int
}

func (e *endlessGraphQL) GraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	e.calls++
	return json.Unmarshal([]byte(searchPageOne), out)
}

func TestSearchStopsAtPageLimit(t *testing.T) {
	client := &endlessGraphQL{}

	prs, err := newTestYearlyStatsService(client).Search(context.Background(), "q", graphSearchPageSize)
	require.NoError(t, err)

	assert.Equal(t, graphSearchMaxPages, client.calls)
	assert.Len(t, prs, graphSearchMaxPages)
}

func TestSearchFailsAfterRetries(t *testing.T) {
	client := &pagedGraphQL{failures: graphSearchAttempts}

	_, err := newTestYearlyStatsService(client).Search(context.Background(), "q", graphSearchPageSize)
	require.Error(t, err)
	assert.Equal(t, graphSearchAttempts, client.calls)
}

func TestReviewStats(t *testing.T) {
	client := &pagedGraphQL{payloads: []string{searchPageOne, searchPageTwo}}

	stats, err := newTestYearlyStatsService(client).ReviewStats(context.Background(), "bob", 2024)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalReviews)
	assert.Equal(t, 2, stats.UniquePRsReviewed)
	assert.Equal(t, 2, stats.UniqueAuthors)
	assert.Equal(t, map[models.ReviewState]int{
		models.ReviewStateApproved:         1,
		models.ReviewStateChangesRequested: 1,
	}, stats.ByState)
	assert.Equal(t, map[string]int{"2024-01": 1, "2024-02": 1}, stats.ByMonth)
	assert.Equal(t, []models.CountEntry{{Name: "alice", Count: 1}, {Name: "unknown", Count: 1}}, stats.TopAuthors)
	assert.Equal(t, []models.CountEntry{{Name: "web", Count: 1}, {Name: "api", Count: 1}}, stats.TopRepositories)
}

func TestSummarizeReviewsLimitsTopEntries(t *testing.T) {
	submitted := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var prs []models.SearchPullRequest
	for i := 0; i < 12; i++ {
		prs = append(prs, models.SearchPullRequest{
			Repository: "web",
			Number:     i,
			Author:     string(rune('a' + i)),
			Reviews:    []models.SearchReviewNode{{Author: "bob", State: models.ReviewStateApproved, SubmittedAt: &submitted}},
		})
	}

	stats := SummarizeReviews("bob", 2024, prs, time.UTC)
	assert.Equal(t, 12, stats.UniqueAuthors)
	assert.Len(t, stats.TopAuthors, topEntries)
	assert.Equal(t, []models.CountEntry{{Name: "web", Count: 12}}, stats.TopRepositories)
}

func TestSummarizeAuthoredPRs(t *testing.T) {
	merged := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	prs := []models.SearchPullRequest{
		{Repository: "web", Number: 1, Title: "Feature", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), MergedAt: &merged, Additions: 100, Deletions: 10, ChangedFiles: 2, Files: []string{"src/a.go", "src/a_test.go"}},
		{Repository: "web", Number: 2, Title: "Tests", CreatedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), MergedAt: &merged, Additions: 20, Deletions: 5, ChangedFiles: 1, Files: []string{"src/b_test.go"}},
		{Repository: "omnibot", Number: 3, Title: "Hook", CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), MergedAt: &merged, Additions: 1, Deletions: 1, ChangedFiles: 1},
	}

	stats := SummarizeAuthoredPRs("bob", 2024, prs, time.UTC)

	assert.Equal(t, 3, stats.TotalPRs)
	assert.Equal(t, 121, stats.TotalAdditions)
	assert.Equal(t, 16, stats.TotalDeletions)
	assert.Equal(t, 4, stats.TotalChangedFiles)
	assert.Equal(t, models.CategoryStats{Count: 1, Additions: 100, Deletions: 10}, stats.ByCategory[models.PRCategoryApplication])
	assert.Equal(t, models.CategoryStats{Count: 1, Additions: 20, Deletions: 5}, stats.ByCategory[models.PRCategoryTests])
	assert.Equal(t, models.CategoryStats{Count: 1, Additions: 1, Deletions: 1}, stats.ByCategory[models.PRCategoryInternal])
	assert.Equal(t, models.CategoryStats{}, stats.ByCategory[models.PRCategoryInfra])
	assert.Equal(t, map[string]int{"2024-03": 2, "2024-04": 1}, stats.ByMonth)
	assert.Equal(t, []models.CountEntry{{Name: "web", Count: 2}, {Name: "omnibot", Count: 1}}, stats.TopRepositories)
}
