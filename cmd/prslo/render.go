package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/alimgiray/prslo/internal/services"
)

const (
	rule       = "----------------------------------------"
	topPodium  = 3
	barWidth   = 40
	dateLayout = "2006-01-02"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderReport(w io.Writer, report *services.Report, users *services.UserMap, days int) {
	c := report.Compliance
	fmt.Fprintln(w, "PR REVIEW STATS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%d/%d (%d%%) PRs were reviewed within SLO%s\n", c.WithinSLO, c.Total, c.Percentage, complianceVerdict(c))

	fmt.Fprintln(w, "\nTOP REVIEWERS BY REVIEW COUNT")
	fmt.Fprintln(w, rule)
	for i, entry := range podium(report.Reviewers) {
		fmt.Fprintf(w, "%d. %s with %d reviews\n", i+1, users.Alias(entry.User), entry.Count)
	}

	fmt.Fprintln(w, "\nTOP CONTRIBUTORS BY POINTS")
	fmt.Fprintln(w, rule)
	for i, entry := range podium(report.Points) {
		authored := services.AuthoredCount(report.Summaries, entry.User)
		fmt.Fprintf(w, "%d. %s with %d points (%d PRs authored + %d PRs reviewed)\n",
			i+1, users.Alias(entry.User), entry.Count, authored, entry.Count-authored)
	}
	fmt.Fprintln(w, "Each person gets +1 point for every PR they author and +1 point for every PR they review.")

	fmt.Fprintln(w, "\nPRS PAST SLO")
	fmt.Fprintln(w, rule)
	renderOutOfSLO(w, report)

	fmt.Fprintln(w, "\nROCKET WATCH")
	fmt.Fprintln(w, rule)
	renderRockets(w, report, users)

	fmt.Fprintln(w, "\nTEAM PR THROUGHPUT")
	fmt.Fprintln(w, rule)
	renderThroughput(w, report, users, days)
}

func complianceVerdict(c models.SLOCompliance) string {
	switch {
	case c.Total == 0:
		return ""
	case c.Percentage == 100:
		return ", perfect score!"
	case c.Percentage >= 90:
		return "!"
	case c.Percentage >= 80:
		return ""
	default:
		return ", needs improvement"
	}
}

func podium(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	if len(entries) > topPodium {
		return entries[:topPodium]
	}
	return entries
}

func renderOutOfSLO(w io.Writer, report *services.Report) {
	if len(report.OutOfSLO) == 0 {
		fmt.Fprintf(w, "No PRs past SLO. All %d PRs were reviewed within the %g-hour SLO.\n", report.Compliance.Total, report.SLOHours)
		return
	}

	open := 0
	for _, s := range report.OutOfSLO {
		if s.State == models.PRStateOpen {
			open++
		}
	}
	merged := len(report.OutOfSLO) - open

	intro := fmt.Sprintf("The following %d PRs were not reviewed within SLO", len(report.OutOfSLO))
	if open > 0 && merged > 0 {
		intro += fmt.Sprintf(" (%d still open, %d merged)", open, merged)
	}
	fmt.Fprintln(w, intro+":")

	table := newTable(w)
	for _, s := range report.OutOfSLO {
		fmt.Fprintf(table, "  %s#%d\t%s\t%s\n", s.PullRequest.Repository, s.PullRequest.Number, s.State, s.PullRequest.URL)
	}
	table.Flush()
}

func renderRockets(w io.Writer, report *services.Report, users *services.UserMap) {
	if len(report.Rockets) == 0 {
		fmt.Fprintln(w, "No rocket reactions found this sprint. React to great PR review comments with a rocket to highlight them!")
		return
	}
	for _, comment := range report.Rockets {
		fmt.Fprintf(w, "%s (%s) x%d:\n", users.Alias(comment.Author), comment.URL, comment.Rockets)
		for _, line := range strings.Split(strings.TrimSpace(comment.Body), "\n") {
			fmt.Fprintf(w, "  > %s\n", line)
		}
	}

	names := make([]string, 0, len(report.Reactors))
	for _, reactor := range report.Reactors {
		names = append(names, users.Alias(reactor))
	}
	if len(names) > 0 {
		fmt.Fprintf(w, "Shoutout to %s for highlighting these!\n", strings.Join(names, ", "))
	}
}

func renderThroughput(w io.Writer, report *services.Report, users *services.UserMap, days int) {
	if len(report.Throughput) == 0 {
		fmt.Fprintln(w, "No PR data available for throughput calculation.")
		return
	}
	team := report.Team
	fmt.Fprintf(w, "%.1f PRs per developer (%d total PRs / %d developers)\n", team.PRsPerDeveloper, team.TotalPRs, team.ActiveContributors)
	fmt.Fprintf(w, "%d total PRs in the last %d days\n", team.TotalPRs, days)
	fmt.Fprintf(w, "%d active contributors creating PRs\n\n", team.ActiveContributors)

	table := newTable(w)
	fmt.Fprintln(table, "AUTHOR\tPRS\tACTIVE WEEKS\tAVG/WEEK")
	for _, record := range report.Throughput {
		fmt.Fprintf(table, "%s\t%d\t%d\t%.1f\n", users.Alias(record.Author), record.TotalPRs, record.WeeksWithActivity, record.AvgPRsPerWeek)
	}
	table.Flush()
}

func renderOpenPastSLO(w io.Writer, prs []models.PullRequest, users *services.UserMap, cutoff time.Time) {
	fmt.Fprintf(w, "%d open PRs without reviews created before %s\n", len(prs), cutoff.Format(time.RFC3339))
	table := newTable(w)
	for _, pr := range prs {
		fmt.Fprintf(table, "%s\t%s\t%s\n", users.Alias(pr.Author), pr.CreatedAt.Format(dateLayout), pr.URL)
	}
	table.Flush()
}

func renderLabelComparison(w io.Writer, result *models.LabelComparison, users *services.UserMap, days int) {
	fmt.Fprintf(w, "PRs labelled %q but not %q in the last %d days: %d of %d\n",
		result.HasLabel, result.NotLabel, days, len(result.PullRequests), result.Candidates)
	fmt.Fprintln(w, rule)

	table := newTable(w)
	for _, pr := range result.PullRequests {
		fmt.Fprintf(table, "%s#%d\t%s\t%s\t%s\t%s\n", pr.Repository, pr.Number, users.Alias(pr.Author), pr.CreatedAt.Format(dateLayout), pr.State, strings.Join(pr.Labels, ", "))
	}
	table.Flush()

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Open: %d  Merged: %d\n", result.Open, result.Merged)
}

func renderYearlyReviews(w io.Writer, stats *models.YearlyReviewStats, users *services.UserMap, now time.Time) {
	fmt.Fprintf(w, "PR Review Stats for %s (@%s) - Calendar Year %d\n", users.Alias(stats.Login), stats.Login, stats.Year)
	fmt.Fprintln(w, rule)

	table := newTable(w)
	fmt.Fprintf(table, "Total reviews given:\t%d\n", stats.TotalReviews)
	fmt.Fprintf(table, "Unique PRs reviewed:\t%d\n", stats.UniquePRsReviewed)
	fmt.Fprintf(table, "Unique authors reviewed:\t%d\n", stats.UniqueAuthors)
	fmt.Fprintf(table, "Approved:\t%d\n", stats.ByState[models.ReviewStateApproved])
	fmt.Fprintf(table, "Changes requested:\t%d\n", stats.ByState[models.ReviewStateChangesRequested])
	fmt.Fprintf(table, "Commented:\t%d\n", stats.ByState[models.ReviewStateCommented])
	fmt.Fprintf(table, "Dismissed:\t%d\n", stats.ByState[models.ReviewStateDismissed])
	table.Flush()

	renderMonthlyTrend(w, stats.ByMonth, stats.Year, "Reviews", now)
	renderQuarters(w, stats.ByMonth, stats.Year, "reviews", now)

	fmt.Fprintln(w, "\nTOP AUTHORS REVIEWED")
	fmt.Fprintln(w, rule)
	for _, entry := range stats.TopAuthors {
		fmt.Fprintf(w, "  %s: %d reviews\n", users.Alias(entry.Name), entry.Count)
	}
	fmt.Fprintln(w, "\nTOP REPOSITORIES")
	fmt.Fprintln(w, rule)
	for _, entry := range stats.TopRepositories {
		fmt.Fprintf(w, "  %s: %d reviews\n", entry.Name, entry.Count)
	}
}

func renderYearlyPRs(w io.Writer, stats *models.YearlyPRStats, users *services.UserMap, now time.Time) {
	fmt.Fprintf(w, "PR Stats for %s (@%s) - Calendar Year %d\n", users.Alias(stats.Login), stats.Login, stats.Year)
	fmt.Fprintln(w, rule)

	table := newTable(w)
	fmt.Fprintf(table, "Total merged PRs:\t%d\n", stats.TotalPRs)
	fmt.Fprintf(table, "Lines added:\t+%d\n", stats.TotalAdditions)
	fmt.Fprintf(table, "Lines removed:\t-%d\n", stats.TotalDeletions)
	fmt.Fprintf(table, "Net lines changed:\t%d\n", stats.TotalAdditions-stats.TotalDeletions)
	fmt.Fprintf(table, "Files changed:\t%d\n", stats.TotalChangedFiles)
	table.Flush()

	fmt.Fprintln(w, "\nBY CATEGORY")
	fmt.Fprintln(w, rule)
	table = newTable(w)
	for _, category := range models.PRCategories {
		c := stats.ByCategory[category]
		if c.Count == 0 {
			continue
		}
		fmt.Fprintf(table, "%s\t%d PRs\t+%d/-%d\n", category, c.Count, c.Additions, c.Deletions)
	}
	table.Flush()

	renderMonthlyTrend(w, stats.ByMonth, stats.Year, "PRs", now)
	renderQuarters(w, stats.ByMonth, stats.Year, "PRs", now)

	fmt.Fprintln(w, "\nTOP REPOSITORIES")
	fmt.Fprintln(w, rule)
	for _, entry := range stats.TopRepositories {
		fmt.Fprintf(w, "  %s: %d PRs\n", entry.Name, entry.Count)
	}
}

func renderMonthlyTrend(w io.Writer, byMonth map[string]int, year int, label string, now time.Time) {
	series := services.MonthlySeries(byMonth, year, now)
	trend := services.CalculateTrend(series)

	maxCount := 1
	for _, month := range series {
		if month.Count > maxCount {
			maxCount = month.Count
		}
	}

	fmt.Fprintf(w, "\nMONTHLY %s\n", strings.ToUpper(label))
	fmt.Fprintln(w, rule)
	for _, month := range series {
		t, _ := time.Parse("2006-01", month.Month)
		bar := int(math.Round(float64(month.Count) / float64(maxCount) * barWidth))
		fmt.Fprintf(w, "%s: %4d %s\n", t.Format("Jan"), month.Count, strings.Repeat("#", bar))
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trend: %s\n", strings.ToUpper(string(trend.Trend)))
	fmt.Fprintf(w, "  Average: %.1f per month\n", trend.Average)
	fmt.Fprintf(w, "  H1 avg: %.1f | H2 avg: %.1f\n", trend.FirstHalfAvg, trend.SecondHalfAvg)
	if trend.PercentChange != 0 {
		fmt.Fprintf(w, "  Change: %+.0f%% (first to last month)\n", trend.PercentChange)
	}
}

func renderQuarters(w io.Writer, byMonth map[string]int, year int, label string, now time.Time) {
	totals := services.QuarterlyTotals(byMonth, year, now)
	fmt.Fprintln(w, "\nQUARTERLY")
	fmt.Fprintln(w, rule)
	for _, q := range totals {
		fmt.Fprintf(w, "%s: %4d %s\n", q.Quarter, q.Total, label)
	}
	for _, change := range services.QuarterlyChanges(totals) {
		fmt.Fprintf(w, "%s -> %s: %+.0f%%\n", change.From, change.To, change.PercentChange)
	}
}

func renderHistory(w io.Writer, runs []*models.ReportRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No archived runs.")
		return
	}
	table := newTable(w)
	fmt.Fprintln(table, "RUN\tGENERATED\tWINDOW\tWITHIN SLO\tSLO HOURS")
	for _, run := range runs {
		fmt.Fprintf(table, "%s\t%s\t%s..%s\t%d/%d\t%g\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.WindowStart.Format(dateLayout),
			run.WindowEnd.Format(dateLayout),
			run.WithinSLO,
			run.TotalPRs,
			run.SLOHours,
		)
	}
	table.Flush()
}

func renderRunPRs(w io.Writer, prs []models.ReportRunPR, users *services.UserMap) {
	if len(prs) == 0 {
		fmt.Fprintln(w, "No out-of-SLO PRs recorded for this run.")
		return
	}
	table := newTable(w)
	for _, pr := range prs {
		fmt.Fprintf(table, "%s#%d\t%s\t%s\t%s\n", pr.Repository, pr.Number, users.Alias(pr.Author), pr.State, pr.URL)
	}
	table.Flush()
}

func renderLabelContributors(w io.Writer, stats *models.LabelContributorStats, users *services.UserMap, detailed bool) {
	fmt.Fprintf(w, "SUMMARY REPORT: %q label (last %d days)\n", stats.Label, stats.Days)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total PRs: %d\n", stats.Total)
	fmt.Fprintf(w, "  Internal PRs: %d (%.1f%%)\n", len(stats.Internal.PullRequests), share(len(stats.Internal.PullRequests), stats.Total))
	fmt.Fprintf(w, "  External PRs: %d (%.1f%%)\n", len(stats.External.PullRequests), share(len(stats.External.PullRequests), stats.Total))

	fmt.Fprintln(w, "\nAverage working hours to first approval:")
	fmt.Fprintf(w, "  Internal: %.2f hours (%d PRs approved)\n", stats.Internal.AvgApprovalHours, stats.Internal.Approved)
	fmt.Fprintf(w, "  External: %.2f hours (%d PRs approved)\n", stats.External.AvgApprovalHours, stats.External.Approved)

	if hours, percent, ok := stats.ExternalSlowdown(); ok {
		if hours > 0 {
			fmt.Fprintf(w, "External PRs take %.2f hours longer (%.1f%% slower)\n", hours, percent)
		} else {
			fmt.Fprintf(w, "External PRs are %.2f hours faster (%.1f%% faster)\n", -hours, -percent)
		}
	}

	if !detailed {
		return
	}
	fmt.Fprintln(w, "\nEXTERNAL PRS")
	fmt.Fprintln(w, rule)
	renderApprovalTimings(w, stats.External.PullRequests, users)
	fmt.Fprintln(w, "\nINTERNAL PRS")
	fmt.Fprintln(w, rule)
	renderApprovalTimings(w, stats.Internal.PullRequests, users)
}

func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func renderApprovalTimings(w io.Writer, timings []models.ApprovalTiming, users *services.UserMap) {
	if len(timings) == 0 {
		fmt.Fprintln(w, "None.")
		return
	}
	table := newTable(w)
	for _, timing := range timings {
		pr := timing.PullRequest
		approval := "not yet approved"
		if timing.ApprovalHours != nil {
			approval = fmt.Sprintf("%.2f hours", *timing.ApprovalHours)
		}
		fmt.Fprintf(table, "%s\t%s#%d\t%s\t%s\t%s\n", users.Alias(pr.Author), pr.Repository, pr.Number, pr.CreatedAt.Format("2006-01-02 15:04"), approval, pr.URL)
	}
	table.Flush()
}

const commentPreview = 100

func renderUserActivity(w io.Writer, activity *models.UserActivity, users *services.UserMap) {
	fmt.Fprintf(w, "Activity Report for %s (@%s), last %d days\n", users.Alias(activity.Login), activity.Login, activity.Days)
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nPR APPROVALS (%d)\n", len(activity.Approvals))
	if len(activity.Approvals) == 0 {
		fmt.Fprintf(w, "  No PR approvals in the last %d days\n", activity.Days)
	}
	for i, approval := range activity.Approvals {
		fmt.Fprintf(w, "  %d. %s#%d: %s\n", i+1, approval.Repository, approval.PRNumber, approval.PRTitle)
		fmt.Fprintf(w, "     Approved: %s\n", approval.ApprovedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "     URL: %s\n", approval.PRURL)
	}

	fmt.Fprintf(w, "\nCOMMENTS (%d)\n", len(activity.Comments))
	if len(activity.Comments) == 0 {
		fmt.Fprintf(w, "  No comments in the last %d days\n", activity.Days)
	}
	for i, comment := range activity.Comments {
		fmt.Fprintf(w, "  %d. %s#%d: %s\n", i+1, comment.Repository, comment.PRNumber, comment.PRTitle)
		fmt.Fprintf(w, "     Comment: %s\n", truncate(comment.Body, commentPreview))
		fmt.Fprintf(w, "     Posted: %s\n", comment.CommentedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "     URL: %s\n", comment.URL)
	}

	fmt.Fprintf(w, "\nAUTHORED PRS (%d)\n", len(activity.AuthoredPRs))
	if len(activity.AuthoredPRs) == 0 {
		fmt.Fprintf(w, "  No PRs authored in the last %d days\n", activity.Days)
	}
	for i, pr := range activity.AuthoredPRs {
		fmt.Fprintf(w, "  %d. %s#%d: %s\n", i+1, pr.Repository, pr.Number, pr.Title)
		fmt.Fprintf(w, "     State: %s\n", strings.ToUpper(string(pr.State)))
		fmt.Fprintf(w, "     Created: %s\n", pr.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "     URL: %s\n", pr.URL)
	}

	fmt.Fprintln(w, "\nSUMMARY")
	fmt.Fprintln(w, rule)
	table := newTable(w)
	fmt.Fprintf(table, "Total PR approvals:\t%d\n", len(activity.Approvals))
	fmt.Fprintf(table, "Total comments:\t%d\n", len(activity.Comments))
	fmt.Fprintf(table, "Total authored PRs:\t%d\n", len(activity.AuthoredPRs))
	fmt.Fprintf(table, "Total activity:\t%d\n", activity.Total())
	table.Flush()
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
