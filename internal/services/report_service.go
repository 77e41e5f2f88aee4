package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/pkg/logger"
)

// ReviewPipeline evaluates every PR and gathers its rocket comments
type ReviewPipeline interface {
	Process(ctx context.Context, prs []models.PullRequest) ([]models.PRReviewSummary, []models.RocketComment, error)
}

// Report is everything a review SLO report shows
type Report struct {
	Query       string
	WindowStart time.Time
	WindowEnd   time.Time
	SLOHours    float64
	Summaries   []models.PRReviewSummary
	OutOfSLO    []models.PRReviewSummary
	Compliance  models.SLOCompliance
	Reviewers   []models.LeaderboardEntry
	Points      []models.LeaderboardEntry
	Throughput  []models.ThroughputRecord
	Team        TeamThroughput
	Rockets     []models.RocketComment
	Reactors    []string
}

// ReportOptions narrows the PRs a report covers
type ReportOptions struct {
	Authors []string
	Label   string
	Repo    string
	Days    int
}

// ReportService fetches the PRs of a window, runs them through the review
// pipeline and aggregates the results
type ReportService struct {
	source     *PullRequestService
	pipeline   ReviewPipeline
	aggregator *AggregationService
	sloHours   float64
	loc        *time.Location
	now        func() time.Time
}

func NewReportService(source *PullRequestService, pipeline ReviewPipeline, aggregator *AggregationService, sloHours float64, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		source:     source,
		pipeline:   pipeline,
		aggregator: aggregator,
		sloHours:   sloHours,
		loc:        loc,
		now:        time.Now,
	}
}

// Terms returns the search terms for opts over [from, to]
func (s *ReportService) Terms(opts ReportOptions, from, to time.Time) []string {
	var terms []string
	if len(opts.Authors) > 0 {
		terms = append(terms, AuthorQuery(opts.Authors))
	}
	terms = append(terms, CreatedFilter(from, to))
	if opts.Label != "" {
		terms = append(terms, LabelFilter(opts.Label))
	}
	return terms
}

// Generate builds the report for PRs created in the last opts.Days days
func (s *ReportService) Generate(ctx context.Context, opts ReportOptions) (*Report, error) {
	if opts.Days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", models.ErrInvalidArgument, opts.Days)
	}

	end := s.now().In(s.loc)
	start := end.AddDate(0, 0, -opts.Days)
	terms := s.Terms(opts, start, end)

	prs, err := s.source.FetchPRs(ctx, terms, opts.Repo)
	if err != nil {
		return nil, err
	}

	summaries, rockets, err := s.pipeline.Process(ctx, prs)
	if err != nil {
		return nil, err
	}

	throughput := s.aggregator.Throughput(summaries, s.loc)
	report := &Report{
		Query:       s.source.Query(terms, opts.Repo),
		WindowStart: start,
		WindowEnd:   end,
		SLOHours:    s.sloHours,
		Summaries:   summaries,
		OutOfSLO:    s.aggregator.OutOfSLO(summaries),
		Compliance:  s.aggregator.Compliance(summaries),
		Reviewers:   s.aggregator.ReviewerLeaderboard(summaries),
		Points:      s.aggregator.PointsLeaderboard(summaries),
		Throughput:  throughput,
		Team:        SummarizeThroughput(throughput),
		Rockets:     rockets,
		Reactors:    AllReactors(rockets),
	}

	logger.WithField("query", report.Query).Infof("%d/%d PRs reviewed within %.4g working hours",
		report.Compliance.WithinSLO, report.Compliance.Total, s.sloHours)
	return report, nil
}

// Run converts the report into an archive row and its out-of-SLO PRs
func (r *Report) Run() (*models.ReportRun, []models.ReportRunPR) {
	run := models.NewReportRun(r.Query, r.WindowStart, r.WindowEnd, r.SLOHours)
	run.TotalPRs = r.Compliance.Total
	run.WithinSLO = r.Compliance.WithinSLO

	prs := make([]models.ReportRunPR, 0, len(r.OutOfSLO))
	for _, summary := range r.OutOfSLO {
		prs = append(prs, models.ReportRunPR{
			Repository: summary.PullRequest.Repository,
			Number:     summary.PullRequest.Number,
			Author:     summary.PullRequest.Author,
			State:      summary.State,
			URL:        summary.PullRequest.URL,
		})
	}
	return run, prs
}
