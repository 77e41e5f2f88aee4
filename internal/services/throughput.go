package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/alimgiray/prslo/internal/models"
)

// WeekKey buckets t into its ISO week, e.g. 2024-W01
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Throughput buckets PRs by author and ISO week of creation in loc. The
// average only counts weeks in which the author opened at least one PR.
func (s *AggregationService) Throughput(summaries []models.PRReviewSummary, loc *time.Location) []models.ThroughputRecord {
	if loc == nil {
		loc = time.Local
	}

	var authors []string
	byAuthor := make(map[string]map[string]int)
	for _, summary := range summaries {
		author := summary.PullRequest.Author
		weeks, ok := byAuthor[author]
		if !ok {
			weeks = make(map[string]int)
			byAuthor[author] = weeks
			authors = append(authors, author)
		}
		weeks[WeekKey(summary.PullRequest.CreatedAt.In(loc))]++
	}

	records := make([]models.ThroughputRecord, 0, len(authors))
	for _, author := range authors {
		weeks := byAuthor[author]
		total := 0
		for _, count := range weeks {
			total += count
		}
		avg := 0.0
		if len(weeks) > 0 {
			avg = math.Round(float64(total)/float64(len(weeks))*10) / 10
		}
		records = append(records, models.ThroughputRecord{
			Author:            author,
			TotalPRs:          total,
			WeeksWithActivity: len(weeks),
			AvgPRsPerWeek:     avg,
			WeeklyBreakdown:   weeks,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AvgPRsPerWeek > records[j].AvgPRsPerWeek
	})
	return records
}

// TeamThroughput is the PRs-per-developer summary over all authors
type TeamThroughput struct {
	TotalPRs           int
	ActiveContributors int
	PRsPerDeveloper    float64
}

// SummarizeThroughput totals a throughput table
func SummarizeThroughput(records []models.ThroughputRecord) TeamThroughput {
	summary := TeamThroughput{ActiveContributors: len(records)}
	for _, record := range records {
		summary.TotalPRs += record.TotalPRs
	}
	if summary.ActiveContributors > 0 {
		summary.PRsPerDeveloper = math.Round(float64(summary.TotalPRs)/float64(summary.ActiveContributors)*10) / 10
	}
	return summary
}
