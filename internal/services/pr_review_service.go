package services

import (
	"context"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/internal/repositories"
	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/sirupsen/logrus"
)

const reviewGraphQuery = `
query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $number) {
      reviews(first: 50) {
        nodes {
          author { login }
          state
          submittedAt
          url
          body
          reactions(first: 20, content: ROCKET) {
            nodes { content user { login } }
          }
          comments(first: 20) {
            nodes {
              author { login }
              body
              url
              createdAt
              reactions(first: 20, content: ROCKET) {
                nodes { content user { login } }
              }
            }
          }
        }
      }
    }
  }
  rateLimit { cost remaining }
}`

type graphActor struct {
	Login string `json:"login"`
}

type graphReactions struct {
	Nodes []struct {
		Content string      `json:"content"`
		User    *graphActor `json:"user"`
	} `json:"nodes"`
}

type graphReviewComment struct {
	Author    *graphActor    `json:"author"`
	Body      string         `json:"body"`
	URL       string         `json:"url"`
	CreatedAt *time.Time     `json:"createdAt"`
	Reactions graphReactions `json:"reactions"`
}

type graphReview struct {
	Author      *graphActor    `json:"author"`
	State       string         `json:"state"`
	SubmittedAt *time.Time     `json:"submittedAt"`
	URL         string         `json:"url"`
	Body        string         `json:"body"`
	Reactions   graphReactions `json:"reactions"`
	Comments    struct {
		Nodes []graphReviewComment `json:"nodes"`
	} `json:"comments"`
}

type reviewGraphData struct {
	Repository *struct {
		PullRequest *struct {
			Reviews struct {
				Nodes []graphReview `json:"nodes"`
			} `json:"reviews"`
		} `json:"pullRequest"`
	} `json:"repository"`
	RateLimit struct {
		Cost      int `json:"cost"`
		Remaining int `json:"remaining"`
	} `json:"rateLimit"`
}

// PRReviewService fetches the review graph of a PR: reviews, their comments
// and rocket reactions. Results are memoized in the injected repository.
type PRReviewService struct {
	graphQL GraphQLClient
	cache   *repositories.ReviewGraphRepository
	owner   string
}

func NewPRReviewService(graphQL GraphQLClient, cache *repositories.ReviewGraphRepository, owner string) *PRReviewService {
	return &PRReviewService{
		graphQL: graphQL,
		cache:   cache,
		owner:   owner,
	}
}

// FetchReviewGraph returns the reviews of a PR. Failures are logged and
// produce an empty result so one bad PR does not abort a batch. Results of
// a cancelled fetch are not cached.
func (s *PRReviewService) FetchReviewGraph(ctx context.Context, repository string, number int) []models.Review {
	return s.cache.GetOrLoad(ctx, repository, number, func(ctx context.Context) ([]models.Review, error) {
		return s.load(ctx, repository, number)
	})
}

func (s *PRReviewService) load(ctx context.Context, repository string, number int) ([]models.Review, error) {
	log := logger.WithFields(logrus.Fields{"repository": repository, "pr": number})

	var data reviewGraphData
	variables := map[string]interface{}{
		"owner":  s.owner,
		"name":   repository,
		"number": number,
	}
	if err := s.graphQL.GraphQL(ctx, reviewGraphQuery, variables, &data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.WithError(ctxErr).Debug("Review graph fetch cancelled")
			return []models.Review{}, ctxErr
		}
		if IsNotFoundOrForbidden(err) {
			log.WithError(err).Warn("Pull request not accessible, treating as unreviewed")
		} else {
			log.WithError(err).Warn("Failed to fetch review graph, treating as unreviewed")
		}
		return []models.Review{}, nil
	}
	if data.Repository == nil || data.Repository.PullRequest == nil {
		log.Warn("Pull request not found, treating as unreviewed")
		return []models.Review{}, nil
	}

	nodes := data.Repository.PullRequest.Reviews.Nodes
	reviews := make([]models.Review, 0, len(nodes))
	for _, node := range nodes {
		reviews = append(reviews, node.toReview())
	}
	log.WithField("rate_limit_remaining", data.RateLimit.Remaining).Debugf("Fetched %d reviews", len(reviews))
	return reviews, nil
}

func (r graphReview) toReview() models.Review {
	review := models.Review{
		Reviewer:    r.Author.login(),
		State:       models.ReviewState(r.State),
		SubmittedAt: r.SubmittedAt,
		URL:         r.URL,
		Body:        r.Body,
		Reactions:   r.Reactions.toReactions(),
	}
	for _, c := range r.Comments.Nodes {
		review.Comments = append(review.Comments, models.ReviewComment{
			Author:    c.Author.login(),
			Body:      c.Body,
			URL:       c.URL,
			CreatedAt: c.CreatedAt,
			Reactions: c.Reactions.toReactions(),
		})
	}
	return review
}

func (r graphReactions) toReactions() []models.Reaction {
	var reactions []models.Reaction
	for _, node := range r.Nodes {
		reactions = append(reactions, models.Reaction{Content: node.Content, User: node.User.login()})
	}
	return reactions
}

// login tolerates deleted accounts, which GraphQL returns as null actors
func (a *graphActor) login() string {
	if a == nil {
		return ""
	}
	return a.Login
}
