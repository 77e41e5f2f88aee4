package workers

import (
	"context"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/internal/services"
	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ReviewGraphFetcher loads the reviews of a single PR
type ReviewGraphFetcher interface {
	FetchReviewGraph(ctx context.Context, repository string, number int) []models.Review
}

// PRResult is the outcome of processing one pull request
type PRResult struct {
	Summary models.PRReviewSummary
	Rockets []models.RocketComment
}

// ReviewPool runs the per-PR pipeline (fetch reviews, evaluate the SLO,
// extract rocket comments) over a bounded number of goroutines.
type ReviewPool struct {
	fetcher ReviewGraphFetcher
	slo     *services.SLOService
	rockets *services.RocketService
	workers int
}

func NewReviewPool(fetcher ReviewGraphFetcher, slo *services.SLOService, rockets *services.RocketService, workers int) *ReviewPool {
	if workers < 1 {
		workers = 1
	}
	return &ReviewPool{
		fetcher: fetcher,
		slo:     slo,
		rockets: rockets,
		workers: workers,
	}
}

// Run processes prs and returns one result per PR in input order.
// Per-PR fetch failures are already degraded by the fetcher, so only a
// cancelled context stops the run.
func (p *ReviewPool) Run(ctx context.Context, prs []models.PullRequest) ([]PRResult, error) {
	results := make([]PRResult, len(prs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range prs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.process(ctx, prs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"prs": len(prs), "workers": p.workers}).Info("Processed pull requests")
	return results, nil
}

// Reviews fetches the review graph of every PR over the pool, in input order
func (p *ReviewPool) Reviews(ctx context.Context, prs []models.PullRequest) ([][]models.Review, error) {
	results := make([][]models.Review, len(prs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range prs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.fetcher.FetchReviewGraph(ctx, prs[i].Repository, prs[i].Number)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *ReviewPool) process(ctx context.Context, pr models.PullRequest) PRResult {
	reviews := p.fetcher.FetchReviewGraph(ctx, pr.Repository, pr.Number)
	summary := p.slo.Evaluate(pr, reviews)
	logger.WithFields(logrus.Fields{
		"repository": pr.Repository,
		"pr":         pr.Number,
		"reviewers":  len(summary.Reviewers),
		"within_slo": summary.IsWithinSLO(),
	}).Debug("Evaluated pull request")

	return PRResult{
		Summary: summary,
		Rockets: p.rockets.Extract(pr, reviews),
	}
}

// Process runs prs and splits the results into SLO evaluations and rocket comments
func (p *ReviewPool) Process(ctx context.Context, prs []models.PullRequest) ([]models.PRReviewSummary, []models.RocketComment, error) {
	results, err := p.Run(ctx, prs)
	if err != nil {
		return nil, nil, err
	}
	return Summaries(results), RocketComments(results), nil
}

// Summaries returns the SLO evaluations of results
func Summaries(results []PRResult) []models.PRReviewSummary {
	summaries := make([]models.PRReviewSummary, 0, len(results))
	for _, result := range results {
		summaries = append(summaries, result.Summary)
	}
	return summaries
}

// RocketComments flattens the rocket comments of results
func RocketComments(results []PRResult) []models.RocketComment {
	comments := make([]models.RocketComment, 0)
	for _, result := range results {
		comments = append(comments, result.Rockets...)
	}
	return comments
}
