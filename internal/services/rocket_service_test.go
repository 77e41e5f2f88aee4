package services

import (
	"testing"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rocket(user string) models.Reaction {
	return models.Reaction{Content: models.ReactionRocket, User: user}
}

func TestExtractRocketComments(t *testing.T) {
	service := NewRocketService(DefaultBotFilter())
	pr := models.PullRequest{Repository: "web", Number: 7}
	reviews := []models.Review{
		{
			Reviewer:  "bob",
			Body:      "great split of the migration",
			URL:       "https://github.com/squareup/web/pull/7#pullrequestreview-1",
			Reactions: []models.Reaction{rocket("alice"), rocket("carol"), rocket("alice")},
			Comments: []models.ReviewComment{
				{Author: "bob", Body: "no rockets here", URL: "u1"},
				{Author: "carol", Body: "nit", URL: "u2", Reactions: []models.Reaction{{Content: "THUMBS_UP", User: "alice"}}},
				{Author: "dependabot[bot]", Body: "bump", URL: "u3", Reactions: []models.Reaction{rocket("alice")}},
				{Author: "carol", Body: "nice catch", URL: "u4", Reactions: []models.Reaction{rocket("dave")}},
			},
		},
		{Reviewer: "erin", Reactions: []models.Reaction{rocket("alice")}},
	}

	comments := service.Extract(pr, reviews)
	require.Len(t, comments, 2)

	assert.Equal(t, models.RocketComment{
		Repository: "web",
		PRNumber:   7,
		Author:     "bob",
		Body:       "great split of the migration",
		URL:        "https://github.com/squareup/web/pull/7#pullrequestreview-1",
		Rockets:    3,
		Reactors:   []string{"alice", "carol"},
	}, comments[0])
	assert.Equal(t, "carol", comments[1].Author)
	assert.Equal(t, 1, comments[1].Rockets)

	assert.Equal(t, []string{"alice", "carol", "dave"}, AllReactors(comments))
}

func TestExtractRocketCommentsWithoutReviews(t *testing.T) {
	service := NewRocketService(DefaultBotFilter())
	assert.Empty(t, service.Extract(models.PullRequest{}, nil))
	assert.Empty(t, AllReactors(nil))
}
