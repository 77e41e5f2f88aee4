package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYear(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	year, err := parseYear([]string{"alice"}, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)

	year, err = parseYear([]string{"alice", "2023"}, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 2023, year)

	for _, bad := range []string{"23", "next", "2101"} {
		_, err = parseYear([]string{"alice", bad}, 1, now)
		assert.ErrorIs(t, err, models.ErrInvalidArgument, bad)
	}
}

func TestRootRejectsBadArgs(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"label-compare needs two labels", []string{"label-compare", "only-one"}},
		{"yearly-reviews needs a user", []string{"yearly-reviews"}},
		{"history takes one run", []string{"history", "a", "b"}},
		{"label-contributors needs a label", []string{"label-contributors"}},
		{"user-activity takes one user", []string{"user-activity", "bob", "carol"}},
		{"user-activity rejects negative days", []string{"user-activity", "bob", "--days", "-1"}},
		{"unknown command", []string{"frobnicate"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(tc.args)
			assert.Error(t, root.Execute())
		})
	}
}

func TestYearlyRejectsBadYearBeforeLoadingConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"yearly-prs", "alice", "nope"})
	assert.ErrorIs(t, root.Execute(), models.ErrInvalidArgument)
}
