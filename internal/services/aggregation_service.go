package services

import (
	"math"
	"sort"

	"github.com/alimgiray/prslo/internal/models"
)

// AggregationService folds per-PR SLO evaluations into report statistics.
// Every fold is a single pass; ties keep encounter order.
type AggregationService struct {
	bots BotDetector
}

func NewAggregationService(bots BotDetector) *AggregationService {
	return &AggregationService{bots: bots}
}

// OutOfSLO returns the PRs none of whose reviewers reviewed within the SLO,
// open PRs first. A PR without reviewers is out of SLO.
func (s *AggregationService) OutOfSLO(summaries []models.PRReviewSummary) []models.PRReviewSummary {
	out := make([]models.PRReviewSummary, 0)
	for _, summary := range summaries {
		if !summary.IsWithinSLO() {
			out = append(out, summary)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].State == models.PRStateOpen && out[j].State != models.PRStateOpen
	})
	return out
}

// Compliance counts PRs within and outside the SLO
func (s *AggregationService) Compliance(summaries []models.PRReviewSummary) models.SLOCompliance {
	compliance := models.SLOCompliance{Total: len(summaries)}
	for _, summary := range summaries {
		if summary.IsWithinSLO() {
			compliance.WithinSLO++
		}
	}
	compliance.OutOfSLO = compliance.Total - compliance.WithinSLO
	if compliance.Total > 0 {
		compliance.Percentage = int(math.Round(float64(compliance.WithinSLO) / float64(compliance.Total) * 100))
	}
	return compliance
}

// ReviewerLeaderboard counts the distinct PRs each human reviewer reviewed
func (s *AggregationService) ReviewerLeaderboard(summaries []models.PRReviewSummary) []models.LeaderboardEntry {
	t := newTally()
	for _, summary := range summaries {
		for _, reviewer := range summary.Reviewers {
			if s.bots.IsBot(reviewer.User) {
				continue
			}
			t.add(reviewer.User)
		}
	}
	return t.entries()
}

// PointsLeaderboard gives one point per authored PR and one per distinct PR reviewed
func (s *AggregationService) PointsLeaderboard(summaries []models.PRReviewSummary) []models.LeaderboardEntry {
	t := newTally()
	for _, summary := range summaries {
		if author := summary.PullRequest.Author; author != "" && !s.bots.IsBot(author) {
			t.add(author)
		}
		reviewed := make(map[string]struct{}, len(summary.Reviewers))
		for _, reviewer := range summary.Reviewers {
			if _, dup := reviewed[reviewer.User]; dup || s.bots.IsBot(reviewer.User) {
				continue
			}
			reviewed[reviewer.User] = struct{}{}
			t.add(reviewer.User)
		}
	}
	return t.entries()
}

// AuthoredCount counts the PRs authored by user
func AuthoredCount(summaries []models.PRReviewSummary, user string) int {
	count := 0
	for _, summary := range summaries {
		if summary.PullRequest.Author == user {
			count++
		}
	}
	return count
}

// tally counts occurrences per user and remembers first appearance
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(user string) {
	if _, ok := t.counts[user]; !ok {
		t.order = append(t.order, user)
	}
	t.counts[user]++
}

func (t *tally) entries() []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(t.order))
	for _, user := range t.order {
		entries = append(entries, models.LeaderboardEntry{User: user, Count: t.counts[user]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// top returns at most n entries by descending count
func (t *tally) top(n int) []models.CountEntry {
	entries := t.entries()
	if len(entries) > n {
		entries = entries[:n]
	}
	top := make([]models.CountEntry, 0, len(entries))
	for _, entry := range entries {
		top = append(top, models.CountEntry{Name: entry.User, Count: entry.Count})
	}
	return top
}
