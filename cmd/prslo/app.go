package main

import (
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/repositories"
	"github.com/alimgiray/prslo/internal/services"
	"github.com/alimgiray/prslo/internal/workers"
	"github.com/alimgiray/prslo/pkg/config"
	"github.com/alimgiray/prslo/pkg/logger"
)

// app holds the collaborators shared by every command
type app struct {
	cfg      *config.Config
	github   *services.GitHubService
	calendar *services.WorkingCalendar
	bots     *services.BotFilter
	users    *services.UserMap
	prs      *services.PullRequestService
}

// newApp loads configuration and builds the GitHub client, calendar, bot
// filter and user map. Nothing is fetched yet.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	var loc *time.Location
	if cfg.Calendar.Timezone != "" {
		if loc, err = cfg.Location(); err != nil {
			return nil, err
		}
	}
	calendar, err := services.LoadWorkingCalendar(cfg.Calendar.File, loc)
	if err != nil {
		return nil, err
	}

	bots, err := services.LoadBotFilter(cfg.Files.BotConfig)
	if err != nil {
		return nil, err
	}

	users, err := services.LoadUserMap(cfg.Files.UserMap)
	if err != nil {
		return nil, err
	}

	github, err := services.NewGitHubService(services.GitHubServiceConfig{
		Token:   cfg.GitHub.Token,
		APIURL:  cfg.GitHub.APIURL,
		Timeout: cfg.GitHub.HTTPTimeout,
	})
	if err != nil {
		return nil, err
	}

	logger.WithField("users", users.Len()).Debug("Loaded user map")
	return &app{
		cfg:      cfg,
		github:   github,
		calendar: calendar,
		bots:     bots,
		users:    users,
		prs:      services.NewPullRequestService(github, cfg.GitHub.Org, cfg.GitHub.ArchivedRepo),
	}, nil
}

// reviewPool wires the memoized review fetcher into a bounded worker pool
func (a *app) reviewPool() *workers.ReviewPool {
	reviews := services.NewPRReviewService(a.github, repositories.NewReviewGraphRepository(), a.cfg.GitHub.Org)
	slo := services.NewSLOService(a.calendar, a.cfg.Report.SLOHours)
	return workers.NewReviewPool(reviews, slo, services.NewRocketService(a.bots), a.cfg.Report.Workers)
}

// reportService wires the review pipeline for one report
func (a *app) reportService() *services.ReportService {
	return services.NewReportService(a.prs, a.reviewPool(), services.NewAggregationService(a.bots), a.cfg.Report.SLOHours, a.calendar.Location())
}
