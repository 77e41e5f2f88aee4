package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePRSource struct {
	prs   []models.PullRequest
	err   error
	terms [][]string
	repos []string
}

func (f *fakePRSource) FetchPRs(ctx context.Context, terms []string, repo string) ([]models.PullRequest, error) {
	f.terms = append(f.terms, terms)
	f.repos = append(f.repos, repo)
	return f.prs, f.err
}

func TestCompareLabels(t *testing.T) {
	merged := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	source := &fakePRSource{prs: []models.PullRequest{
		{Repository: "web", Number: 1, State: models.PRStateOpen, Labels: []string{"esperanto"}},
		{Repository: "web", Number: 2, State: models.PRStateMerged, MergedAt: &merged, Labels: []string{"esperanto"}},
		{Repository: "web", Number: 3, State: models.PRStateOpen, Labels: []string{"esperanto", "payment-foundations"}},
	}}
	service := NewLabelComparisonService(source)
	service.now = func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }

	result, err := service.Compare(context.Background(), "esperanto", "payment-foundations", 90)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Candidates)
	require.Len(t, result.PullRequests, 2)
	assert.Equal(t, 1, result.PullRequests[0].Number)
	assert.Equal(t, 2, result.PullRequests[1].Number)
	assert.Equal(t, 1, result.Open)
	assert.Equal(t, 1, result.Merged)

	require.Len(t, source.terms, 1)
	assert.Equal(t, []string{
		"created:2024-01-01T12:00:00+00:00..2024-03-31T12:00:00+00:00",
		"label:esperanto",
	}, source.terms[0])
}

func TestCompareLabelsValidatesArguments(t *testing.T) {
	source := &fakePRSource{}
	service := NewLabelComparisonService(source)

	_, err := service.Compare(context.Background(), "", "b", 90)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = service.Compare(context.Background(), "a", "b", 0)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	assert.Empty(t, source.terms)
}

func TestCompareLabelsPropagatesFetchErrors(t *testing.T) {
	service := NewLabelComparisonService(&fakePRSource{err: errors.New("boom")})

	_, err := service.Compare(context.Background(), "a", "b", 30)
	assert.ErrorContains(t, err, "boom")
}
