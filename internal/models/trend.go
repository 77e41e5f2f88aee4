package models

// TrendDirection classifies a series as rising, falling or flat
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// MonthlyCount is a count for a YYYY-MM month
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// TrendAnalysis describes the shape of a monthly series
type TrendAnalysis struct {
	Slope         float64        `json:"slope"`
	PercentChange float64        `json:"percent_change"`
	Average       float64        `json:"average"`
	Trend         TrendDirection `json:"trend"`
	FirstHalfAvg  float64        `json:"first_half_avg"`
	SecondHalfAvg float64        `json:"second_half_avg"`
}

// QuarterTotal is the total count for one quarter
type QuarterTotal struct {
	Quarter  string `json:"quarter"`
	Total    int    `json:"total"`
	Complete bool   `json:"complete"`
}

// QuarterChange is the percent change between consecutive completed quarters
type QuarterChange struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	PercentChange float64 `json:"percent_change"`
}

// LabelComparison lists PRs carrying one label but not another
type LabelComparison struct {
	HasLabel     string        `json:"has_label"`
	NotLabel     string        `json:"not_label"`
	Candidates   int           `json:"candidates"`
	PullRequests []PullRequest `json:"pull_requests"`
	Open         int           `json:"open"`
	Merged       int           `json:"merged"`
}
