package models

// LeaderboardEntry is a user's score on a leaderboard
type LeaderboardEntry struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// ThroughputRecord is an author's PR throughput over the report window
type ThroughputRecord struct {
	Author            string         `json:"author"`
	TotalPRs          int            `json:"total_prs"`
	WeeksWithActivity int            `json:"weeks_with_activity"`
	AvgPRsPerWeek     float64        `json:"avg_prs_per_week"`
	WeeklyBreakdown   map[string]int `json:"weekly_breakdown"`
}

// SLOCompliance summarises how many PRs were reviewed within the SLO
type SLOCompliance struct {
	Total      int `json:"total"`
	WithinSLO  int `json:"within_slo"`
	OutOfSLO   int `json:"out_of_slo"`
	Percentage int `json:"percentage"`
}
