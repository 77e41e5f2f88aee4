package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prslo",
		Short:         "PR review SLO and participation reports for a GitHub organization",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newReportCmd(),
		newOpenPastSLOCmd(),
		newLabelCompareCmd(),
		newLabelContributorsCmd(),
		newUserActivityCmd(),
		newYearlyReviewsCmd(),
		newYearlyPRsCmd(),
		newHistoryCmd(),
	)
	return root
}

// parseYear reads an optional year argument, defaulting to the current year
func parseYear(args []string, index int, now time.Time) (int, error) {
	if len(args) <= index {
		return now.Year(), nil
	}
	year, err := strconv.Atoi(args[index])
	if err != nil || year < 2000 || year > 2100 {
		return 0, fmt.Errorf("%w: invalid year %q, use e.g. 2024", models.ErrInvalidArgument, args[index])
	}
	return year, nil
}
