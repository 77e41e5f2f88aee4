package main

import (
	"fmt"

	"github.com/alimgiray/prslo/internal/repositories"
	"github.com/alimgiray/prslo/internal/services"
	"github.com/alimgiray/prslo/pkg/database"
	"github.com/alimgiray/prslo/pkg/logger"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		label      string
		repo       string
		xlsxPath   string
		archive    bool
		days       int
		allAuthors bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Review SLO compliance, leaderboards, rocket comments and throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if archive && a.cfg.Database.Path == "" {
				return fmt.Errorf("--archive needs DB_PATH to be set")
			}
			if days == 0 {
				days = a.cfg.Report.DaysToLookBack
			}

			opts := services.ReportOptions{Label: label, Repo: repo, Days: days}
			if !allAuthors {
				opts.Authors = a.users.Logins()
			}

			report, err := a.reportService().Generate(cmd.Context(), opts)
			if err != nil {
				return err
			}

			renderReport(cmd.OutOrStdout(), report, a.users, days)

			if xlsxPath != "" {
				if err := services.NewExportService(a.users).WriteXLSX(report, xlsxPath); err != nil {
					return err
				}
				logger.WithField("path", xlsxPath).Info("Wrote workbook")
			}

			if archive {
				return archiveReport(a.cfg.Database.Path, report)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Only PRs carrying this label")
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Only PRs in this repository")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the report to this xlsx file")
	cmd.Flags().BoolVar(&archive, "archive", false, "Record the run in the DB_PATH archive")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Days to look back (default DAYS_TO_LOOK_BACK)")
	cmd.Flags().BoolVar(&allAuthors, "all-authors", false, "Do not restrict to authors in the user map")
	return cmd
}

func archiveReport(dbPath string, report *services.Report) error {
	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	run, prs := report.Run()
	if err := repositories.NewReportRunRepository(db).Create(run, prs); err != nil {
		return err
	}
	logger.WithField("run_id", run.ID).Info("Archived report run")
	return nil
}
