package main

import (
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/internal/repositories"
	"github.com/alimgiray/prslo/internal/services"
	"github.com/alimgiray/prslo/pkg/database"
	"github.com/spf13/cobra"
)

func newOpenPastSLOCmd() *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "open-past-slo",
		Short: "List open PRs without reviews that are already past the SLO",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			service := services.NewOpenPastSLOService(a.prs, a.calendar, a.cfg.Report.SLOHours, a.cfg.Report.DaysToLookBack)
			prs, err := service.Find(cmd.Context(), a.users.Logins(), repo)
			if err != nil {
				return err
			}
			renderOpenPastSLO(cmd.OutOrStdout(), prs, a.users, service.Cutoff())
			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Only PRs in this repository")
	return cmd
}

func newLabelCompareCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "label-compare <has-label> <not-label>",
		Short: "List PRs that carry one label but not another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("%w: --days must be positive", models.ErrInvalidArgument)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			result, err := services.NewLabelComparisonService(a.prs).Compare(cmd.Context(), args[0], args[1], days)
			if err != nil {
				return err
			}
			renderLabelComparison(cmd.OutOrStdout(), result, a.users, days)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 90, "Days to look back")
	return cmd
}

func newLabelContributorsCmd() *cobra.Command {
	var (
		days     int
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "label-contributors <label>",
		Short: "Compare time to first approval for internal and external authors of a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("%w: --days must be positive", models.ErrInvalidArgument)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if days == 0 {
				days = a.cfg.Report.DaysToLookBack
			}
			service := services.NewLabelContributorService(a.prs, a.reviewPool(), a.calendar, a.users)
			stats, err := service.Stats(cmd.Context(), args[0], days)
			if err != nil {
				return err
			}
			renderLabelContributors(cmd.OutOrStdout(), stats, a.users, detailed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "Days to look back (default DAYS_TO_LOOK_BACK)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "List every PR of both groups")
	return cmd
}

func newUserActivityCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "user-activity <alias|@login>",
		Short: "Approvals, review comments and authored PRs of one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("%w: --days must be positive", models.ErrInvalidArgument)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if days == 0 {
				days = a.cfg.Report.DaysToLookBack
			}
			service := services.NewUserActivityService(a.prs, a.reviewPool())
			activity, err := service.Activity(cmd.Context(), a.users.Resolve(args[0]), days)
			if err != nil {
				return err
			}
			renderUserActivity(cmd.OutOrStdout(), activity, a.users)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "Days to look back (default DAYS_TO_LOOK_BACK)")
	return cmd
}

func newYearlyReviewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "yearly-reviews <alias|@login> [year]",
		Short: "Calendar-year review stats for one user",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args, 1, time.Now())
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			service := services.NewYearlyStatsService(a.github, a.cfg.GitHub.Org, a.cfg.GitHub.ArchivedRepo, a.calendar.Location())
			stats, err := service.ReviewStats(cmd.Context(), a.users.Resolve(args[0]), year)
			if err != nil {
				return err
			}
			renderYearlyReviews(cmd.OutOrStdout(), stats, a.users, time.Now())
			return nil
		},
	}
}

func newYearlyPRsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "yearly-prs <alias|@login> [year]",
		Short: "Calendar-year merged PR stats for one user",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args, 1, time.Now())
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			service := services.NewYearlyStatsService(a.github, a.cfg.GitHub.Org, a.cfg.GitHub.ArchivedRepo, a.calendar.Location())
			stats, err := service.PRStats(cmd.Context(), a.users.Resolve(args[0]), year)
			if err != nil {
				return err
			}
			renderYearlyPRs(cmd.OutOrStdout(), stats, a.users, time.Now())
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show archived report runs, or the out-of-SLO PRs of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("%w: --limit must be positive, got %d", models.ErrInvalidArgument, limit)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if a.cfg.Database.Path == "" {
				return fmt.Errorf("history needs DB_PATH to be set")
			}

			db, err := database.Open(a.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			repo := repositories.NewReportRunRepository(db)

			if len(args) == 1 {
				prs, err := repo.GetOutOfSLO(args[0])
				if err != nil {
					return err
				}
				renderRunPRs(cmd.OutOrStdout(), prs, a.users)
				return nil
			}

			runs, err := repo.GetRecent(limit)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
