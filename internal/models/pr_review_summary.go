package models

// ReviewerSloStatus tells whether a reviewer reviewed a PR within the SLO
type ReviewerSloStatus struct {
	User        string `json:"user"`
	IsWithinSLO bool   `json:"is_within_slo"`
}

// PRReviewSummary is the SLO evaluation of a single pull request
type PRReviewSummary struct {
	PullRequest PullRequest         `json:"pull_request"`
	Reviewers   []ReviewerSloStatus `json:"reviewers"`
	State       PRState             `json:"state"`
}

// IsWithinSLO reports whether any reviewer reviewed the PR within the SLO
func (s *PRReviewSummary) IsWithinSLO() bool {
	for _, reviewer := range s.Reviewers {
		if reviewer.IsWithinSLO {
			return true
		}
	}
	return false
}
