package services

import (
	"testing"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
)

func summary(repo string, number int, author string, state models.PRState, reviewers ...models.ReviewerSloStatus) models.PRReviewSummary {
	return models.PRReviewSummary{
		PullRequest: models.PullRequest{Repository: repo, Number: number, Author: author, State: state},
		Reviewers:   reviewers,
		State:       state,
	}
}

func within(user string) models.ReviewerSloStatus {
	return models.ReviewerSloStatus{User: user, IsWithinSLO: true}
}

func late(user string) models.ReviewerSloStatus {
	return models.ReviewerSloStatus{User: user, IsWithinSLO: false}
}

func TestPointsLeaderboard(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	summaries := []models.PRReviewSummary{
		summary("web", 1, "bob", models.PRStateOpen, within("carol")),
		summary("web", 2, "carol", models.PRStateMerged, late("bob")),
	}

	assert.Equal(t, []models.LeaderboardEntry{{User: "bob", Count: 2}, {User: "carol", Count: 2}}, service.PointsLeaderboard(summaries))
}

func TestPointsLeaderboardCountsDistinctPRs(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	summaries := []models.PRReviewSummary{
		summary("web", 1, "alice", models.PRStateOpen, within("bob"), late("bob")),
		summary("web", 2, "alice", models.PRStateOpen, late("bob")),
	}

	assert.Equal(t, []models.LeaderboardEntry{{User: "alice", Count: 2}, {User: "bob", Count: 2}}, service.PointsLeaderboard(summaries))
}

func TestLeaderboardsExcludeBots(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	summaries := []models.PRReviewSummary{
		summary("web", 1, "renovate[bot]", models.PRStateOpen, within("dependabot"), within("alice")),
		summary("web", 2, "dependabot", models.PRStateOpen, within("renovate[bot]"), late("alice")),
		summary("web", 3, "bob", models.PRStateOpen, within("svc-block-automated-reviews")),
	}

	assert.Equal(t, []models.LeaderboardEntry{{User: "alice", Count: 2}}, service.ReviewerLeaderboard(summaries))
	assert.Equal(t, []models.LeaderboardEntry{{User: "alice", Count: 2}, {User: "bob", Count: 1}}, service.PointsLeaderboard(summaries))
}

func TestReviewerLeaderboardSortsDescendingWithStableTies(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	summaries := []models.PRReviewSummary{
		summary("web", 1, "alice", models.PRStateOpen, within("erin"), within("dave")),
		summary("web", 2, "alice", models.PRStateOpen, within("dave")),
		summary("web", 3, "alice", models.PRStateOpen, within("frank")),
	}

	assert.Equal(t, []models.LeaderboardEntry{
		{User: "dave", Count: 2},
		{User: "erin", Count: 1},
		{User: "frank", Count: 1},
	}, service.ReviewerLeaderboard(summaries))
}

func TestOutOfSLO(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	summaries := []models.PRReviewSummary{
		summary("web", 1, "alice", models.PRStateMerged, late("bob")),
		summary("web", 2, "alice", models.PRStateOpen, late("bob"), within("carol")),
		summary("web", 3, "alice", models.PRStateOpen),
		summary("web", 4, "alice", models.PRStateMerged),
		summary("web", 5, "alice", models.PRStateOpen, late("carol")),
	}

	out := service.OutOfSLO(summaries)

	numbers := make([]int, 0, len(out))
	for _, s := range out {
		numbers = append(numbers, s.PullRequest.Number)
	}
	assert.Equal(t, []int{3, 5, 1, 4}, numbers)
	for _, s := range out {
		assert.False(t, s.IsWithinSLO())
	}
}

func TestCompliance(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	summaries := []models.PRReviewSummary{
		summary("web", 1, "alice", models.PRStateOpen, within("bob")),
		summary("web", 2, "alice", models.PRStateOpen, late("bob")),
		summary("web", 3, "alice", models.PRStateOpen),
	}

	assert.Equal(t, models.SLOCompliance{Total: 3, WithinSLO: 1, OutOfSLO: 2, Percentage: 33}, service.Compliance(summaries))
	assert.Equal(t, models.SLOCompliance{}, service.Compliance(nil))
}

func TestThroughput(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	created := func(s models.PRReviewSummary, value string) models.PRReviewSummary {
		s.PullRequest.CreatedAt = at(t, value)
		return s
	}
	summaries := []models.PRReviewSummary{
		created(summary("web", 1, "alice", models.PRStateOpen), "2024-01-02T12:00:00-05:00"),
		created(summary("web", 2, "alice", models.PRStateOpen), "2024-01-03T12:00:00-05:00"),
		created(summary("web", 3, "alice", models.PRStateOpen), "2024-01-16T12:00:00-05:00"),
		created(summary("web", 4, "bob", models.PRStateOpen), "2024-01-02T12:00:00-05:00"),
		created(summary("web", 5, "bob", models.PRStateOpen), "2024-01-04T12:00:00-05:00"),
	}

	records := service.Throughput(summaries, est)

	assert.Equal(t, []models.ThroughputRecord{
		{
			Author:            "bob",
			TotalPRs:          2,
			WeeksWithActivity: 1,
			AvgPRsPerWeek:     2,
			WeeklyBreakdown:   map[string]int{"2024-W01": 2},
		},
		{
			Author:            "alice",
			TotalPRs:          3,
			WeeksWithActivity: 2,
			AvgPRsPerWeek:     1.5,
			WeeklyBreakdown:   map[string]int{"2024-W01": 2, "2024-W03": 1},
		},
	}, records)

	team := SummarizeThroughput(records)
	assert.Equal(t, TeamThroughput{TotalPRs: 5, ActiveContributors: 2, PRsPerDeveloper: 2.5}, team)
}

func TestWeekKey(t *testing.T) {
	assert.Equal(t, "2024-W01", WeekKey(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2020-W53", WeekKey(time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-W01", WeekKey(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
}

func TestThroughputRoundsAverage(t *testing.T) {
	service := NewAggregationService(DefaultBotFilter())
	var summaries []models.PRReviewSummary
	for i, day := range []string{"2024-01-02", "2024-01-09", "2024-01-10", "2024-01-16", "2024-01-17"} {
		s := summary("web", i, "alice", models.PRStateOpen)
		s.PullRequest.CreatedAt = at(t, day+"T12:00:00Z")
		summaries = append(summaries, s)
	}

	records := service.Throughput(summaries, time.UTC)
	assert.Equal(t, 1.7, records[0].AvgPRsPerWeek)
}
