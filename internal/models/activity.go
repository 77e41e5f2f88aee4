package models

import "time"

// ApprovalTiming is a PR with the working hours it waited for its first
// approval. ApprovalHours is nil while the PR is unapproved.
type ApprovalTiming struct {
	PullRequest   PullRequest `json:"pull_request"`
	ApprovalHours *float64    `json:"approval_hours"`
}

// ContributorGroup aggregates approval timings for one group of authors
type ContributorGroup struct {
	PullRequests     []ApprovalTiming `json:"pull_requests"`
	Approved         int              `json:"approved"`
	AvgApprovalHours float64          `json:"avg_approval_hours"`
}

// LabelContributorStats splits a label's PRs between authors in the user
// map (internal) and everyone else (external)
type LabelContributorStats struct {
	Label    string           `json:"label"`
	Days     int              `json:"days"`
	Total    int              `json:"total"`
	Internal ContributorGroup `json:"internal"`
	External ContributorGroup `json:"external"`
}

// ExternalSlowdown returns how many more hours external PRs wait for their
// first approval, and that gap as a percentage of the internal average.
// ok is false unless both groups have approvals.
func (s *LabelContributorStats) ExternalSlowdown() (hours, percent float64, ok bool) {
	if s.Internal.AvgApprovalHours <= 0 || s.External.AvgApprovalHours <= 0 {
		return 0, 0, false
	}
	hours = s.External.AvgApprovalHours - s.Internal.AvgApprovalHours
	return hours, hours / s.Internal.AvgApprovalHours * 100, true
}

// ActivityApproval is an approval a user gave
type ActivityApproval struct {
	Repository string    `json:"repository"`
	PRNumber   int       `json:"pr_number"`
	PRTitle    string    `json:"pr_title"`
	PRURL      string    `json:"pr_url"`
	ApprovedAt time.Time `json:"approved_at"`
}

// ActivityComment is an inline review comment a user left
type ActivityComment struct {
	Repository  string    `json:"repository"`
	PRNumber    int       `json:"pr_number"`
	PRTitle     string    `json:"pr_title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	CommentedAt time.Time `json:"commented_at"`
}

// UserActivity is one user's review and authoring activity over a window
type UserActivity struct {
	Login       string             `json:"login"`
	Days        int                `json:"days"`
	Since       time.Time          `json:"since"`
	Approvals   []ActivityApproval `json:"approvals"`
	Comments    []ActivityComment  `json:"comments"`
	AuthoredPRs []PullRequest      `json:"authored_prs"`
}

// Total is the number of activity entries across all sections
func (a *UserActivity) Total() int {
	return len(a.Approvals) + len(a.Comments) + len(a.AuthoredPRs)
}
