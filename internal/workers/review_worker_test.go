package workers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    map[string]int
	inFlight int32
	peak     int32
}

func (f *fakeFetcher) FetchReviewGraph(ctx context.Context, repository string, number int) []models.Review {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if current <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, current) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.calls[models.ReviewGraphKey(repository, number)]++
	f.mu.Unlock()

	submitted := time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)
	return []models.Review{{
		Reviewer:    fmt.Sprintf("reviewer-%d", number%3),
		State:       models.ReviewStateApproved,
		SubmittedAt: &submitted,
		Body:        "lgtm",
		Reactions:   []models.Reaction{{Content: models.ReactionRocket, User: "alice"}},
	}}
}

func newTestPool(t *testing.T, fetcher ReviewGraphFetcher, workers int) *ReviewPool {
	t.Helper()
	calendar, err := services.NewWorkingCalendar(models.DefaultWorkingHours(), nil, time.UTC)
	require.NoError(t, err)
	bots := services.DefaultBotFilter()
	return NewReviewPool(fetcher, services.NewSLOService(calendar, 4), services.NewRocketService(bots), workers)
}

func TestReviewPoolPreservesInputOrder(t *testing.T) {
	fetcher := &fakeFetcher{calls: make(map[string]int)}
	pool := newTestPool(t, fetcher, 4)

	var prs []models.PullRequest
	for i := 1; i <= 20; i++ {
		prs = append(prs, models.PullRequest{
			Repository: "web",
			Number:     i,
			Author:     "author",
			State:      models.PRStateOpen,
			CreatedAt:  time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC),
		})
	}

	results, err := pool.Run(context.Background(), prs)
	require.NoError(t, err)
	require.Len(t, results, len(prs))

	for i, result := range results {
		assert.Equal(t, prs[i].Number, result.Summary.PullRequest.Number)
		assert.True(t, result.Summary.IsWithinSLO())
		assert.Len(t, result.Rockets, 1)
	}
	assert.Len(t, fetcher.calls, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&fetcher.peak), int32(4))

	assert.Len(t, Summaries(results), 20)
	assert.Len(t, RocketComments(results), 20)
}

func TestReviewPoolStopsOnCancelledContext(t *testing.T) {
	fetcher := &fakeFetcher{calls: make(map[string]int)}
	pool := newTestPool(t, fetcher, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := pool.Run(ctx, []models.PullRequest{{Repository: "web", Number: 1}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestReviewPoolEmptyInput(t *testing.T) {
	pool := newTestPool(t, &fakeFetcher{calls: make(map[string]int)}, 0)

	results, err := pool.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReviewPoolSatisfiesReportPipeline(t *testing.T) {
	var pipeline services.ReviewPipeline = newTestPool(t, &fakeFetcher{calls: make(map[string]int)}, 2)

	summaries, rockets, err := pipeline.Process(context.Background(), []models.PullRequest{
		{Repository: "web", Number: 1, Author: "author", CreatedAt: time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Len(t, rockets, 1)
}

func TestReviewPoolReviewsKeepInputOrder(t *testing.T) {
	fetcher := &fakeFetcher{calls: make(map[string]int)}
	pool := newTestPool(t, fetcher, 3)

	var prs []models.PullRequest
	for i := 1; i <= 9; i++ {
		prs = append(prs, models.PullRequest{Repository: "api", Number: i})
	}

	reviews, err := pool.Reviews(context.Background(), prs)
	require.NoError(t, err)
	require.Len(t, reviews, len(prs))
	for i, graph := range reviews {
		require.Len(t, graph, 1)
		assert.Equal(t, fmt.Sprintf("reviewer-%d", prs[i].Number%3), graph[0].Reviewer)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&fetcher.peak), int32(3))

	var _ services.ReviewBatchFetcher = pool
}

func TestReviewPoolReviewsStopsOnCancelledContext(t *testing.T) {
	pool := newTestPool(t, &fakeFetcher{calls: make(map[string]int)}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Reviews(ctx, []models.PullRequest{{Repository: "api", Number: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}
