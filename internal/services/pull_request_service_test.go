package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearchClient struct {
	mock.Mock
}

func (m *mockSearchClient) SearchIssues(ctx context.Context, query string, page, perPage int) ([]models.PullRequest, error) {
	args := m.Called(ctx, query, page, perPage)
	prs, _ := args.Get(0).([]models.PullRequest)
	return prs, args.Error(1)
}

func openPRs(repo string, start, count int) []models.PullRequest {
	prs := make([]models.PullRequest, 0, count)
	for i := 0; i < count; i++ {
		prs = append(prs, models.PullRequest{
			Repository: repo,
			Number:     start + i,
			Author:     fmt.Sprintf("author-%d", (start+i)%7),
			State:      models.PRStateOpen,
			CreatedAt:  time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		})
	}
	return prs
}

func newTestPullRequestService(search SearchClient) *PullRequestService {
	service := NewPullRequestService(search, "squareup", "zzz-archive-java")
	service.retryDelay = time.Millisecond
	return service
}

func TestFetchPRsPaginatesUntilShortPage(t *testing.T) {
	search := &mockSearchClient{}
	search.On("SearchIssues", mock.Anything, mock.Anything, 1, 100).Return(openPRs("web", 0, 100), nil).Once()
	search.On("SearchIssues", mock.Anything, mock.Anything, 2, 100).Return(openPRs("web", 100, 100), nil).Once()
	search.On("SearchIssues", mock.Anything, mock.Anything, 3, 100).Return(openPRs("web", 200, 37), nil).Once()

	prs, err := newTestPullRequestService(search).FetchPRs(context.Background(), []string{"author:alice"}, "")
	require.NoError(t, err)

	assert.Len(t, prs, 237)
	search.AssertNumberOfCalls(t, "SearchIssues", 3)
	search.AssertExpectations(t)
}

func TestFetchPRsBuildsScopedQuery(t *testing.T) {
	search := &mockSearchClient{}
	search.On("SearchIssues", mock.Anything, "author:alice type:pr draft:false repo:squareup/web", 1, 100).
		Return(openPRs("web", 0, 3), nil).Once()

	prs, err := newTestPullRequestService(search).FetchPRs(context.Background(), []string{"author:alice"}, "web")
	require.NoError(t, err)

	assert.Len(t, prs, 3)
	search.AssertExpectations(t)
}

func TestFetchPRsStopsAtPageCap(t *testing.T) {
	search := &mockSearchClient{}
	for page := 1; page <= searchMaxPages; page++ {
		search.On("SearchIssues", mock.Anything, mock.Anything, page, 100).
			Return(openPRs("web", (page-1)*100, 100), nil).Once()
	}

	prs, err := newTestPullRequestService(search).FetchPRs(context.Background(), nil, "")
	require.NoError(t, err)

	assert.Len(t, prs, searchMaxPages*searchPageSize)
	search.AssertNumberOfCalls(t, "SearchIssues", searchMaxPages)
}

func TestFetchPRsRetriesFailedPage(t *testing.T) {
	search := &mockSearchClient{}
	search.On("SearchIssues", mock.Anything, mock.Anything, 1, 100).Return(nil, errors.New("502 bad gateway")).Twice()
	search.On("SearchIssues", mock.Anything, mock.Anything, 1, 100).Return(openPRs("web", 0, 5), nil).Once()

	prs, err := newTestPullRequestService(search).FetchPRs(context.Background(), nil, "")
	require.NoError(t, err)

	assert.Len(t, prs, 5)
	search.AssertNumberOfCalls(t, "SearchIssues", 3)
}

func TestFetchPRsFailsAfterRetries(t *testing.T) {
	search := &mockSearchClient{}
	search.On("SearchIssues", mock.Anything, mock.Anything, 1, 100).Return(nil, errors.New("rate limited"))

	prs, err := newTestPullRequestService(search).FetchPRs(context.Background(), nil, "")
	require.Error(t, err)

	assert.Nil(t, prs)
	assert.Contains(t, err.Error(), "rate limited")
	search.AssertNumberOfCalls(t, "SearchIssues", searchMaxAttempts)
}

func TestFetchPRsDropsClosedUnmergedAndDuplicates(t *testing.T) {
	merged := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	items := []models.PullRequest{
		{Repository: "web", Number: 1, State: models.PRStateOpen},
		{Repository: "web", Number: 2, State: models.PRStateClosed},
		{Repository: "web", Number: 3, State: models.PRStateMerged, MergedAt: &merged},
		{Repository: "web", Number: 1, State: models.PRStateOpen},
		{Repository: "api", Number: 1, State: models.PRStateOpen},
	}
	search := &mockSearchClient{}
	search.On("SearchIssues", mock.Anything, mock.Anything, 1, 100).Return(items, nil).Once()

	prs, err := newTestPullRequestService(search).FetchPRs(context.Background(), nil, "")
	require.NoError(t, err)

	keys := make([]string, 0, len(prs))
	for _, pr := range prs {
		keys = append(keys, pr.Key())
	}
	assert.Equal(t, []string{"web|1", "web|3", "api|1"}, keys)
}
