package services

import (
	"context"
	"testing"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenPastSLOService(t *testing.T, source PRSource, now string) *OpenPastSLOService {
	t.Helper()
	service := NewOpenPastSLOService(source, newTestCalendar(t), 4, 15)
	fixed := at(t, now)
	service.now = func() time.Time { return fixed }
	return service
}

func TestOpenPastSLOCutoff(t *testing.T) {
	service := newTestOpenPastSLOService(t, &fakePRSource{}, "2024-01-08T11:00:00-05:00")

	assert.True(t, service.Cutoff().Equal(at(t, "2024-01-05T12:00:00-05:00")), service.Cutoff().String())
}

func TestOpenPastSLOTerms(t *testing.T) {
	service := newTestOpenPastSLOService(t, &fakePRSource{}, "2024-01-02T16:00:00-05:00")

	assert.Equal(t, []string{
		"author:alice author:bob",
		"created:2023-12-18T16:00:00-05:00..2024-01-02T12:00:00-05:00",
		"review:none",
		"is:open",
	}, service.Terms([]string{"alice", "bob"}))
	assert.Len(t, service.Terms(nil), 3)
}

func TestOpenPastSLOFind(t *testing.T) {
	source := &fakePRSource{prs: []models.PullRequest{
		{Repository: "web", Number: 1, State: models.PRStateOpen, CreatedAt: at(t, "2024-01-02T10:00:00-05:00")},
		{Repository: "web", Number: 2, State: models.PRStateOpen, CreatedAt: at(t, "2024-01-02T13:00:00-05:00")},
		{Repository: "web", Number: 3, State: models.PRStateMerged, CreatedAt: at(t, "2024-01-02T10:00:00-05:00")},
	}}
	service := newTestOpenPastSLOService(t, source, "2024-01-02T16:00:00-05:00")

	prs, err := service.Find(context.Background(), []string{"alice"}, "web")
	require.NoError(t, err)

	require.Len(t, prs, 1)
	assert.Equal(t, 1, prs[0].Number)
	assert.Equal(t, []string{"web"}, source.repos)
}
