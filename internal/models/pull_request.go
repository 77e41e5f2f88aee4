package models

import (
	"fmt"
	"time"
)

// PRState is the lifecycle state of a pull request
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
	PRStateMerged PRState = "merged"
)

// PullRequest represents a GitHub pull request from a search result
type PullRequest struct {
	GithubID   int64      `json:"github_id"`
	NodeID     string     `json:"node_id"`
	Repository string     `json:"repository"`
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	URL        string     `json:"url"`
	State      PRState    `json:"state"`
	Labels     []string   `json:"labels"`
	CreatedAt  time.Time  `json:"created_at"`
	MergedAt   *time.Time `json:"merged_at"`
}

// Key identifies a pull request within an organization
func (pr *PullRequest) Key() string {
	return ReviewGraphKey(pr.Repository, pr.Number)
}

// IsClosedUnmerged reports whether the PR was closed without being merged
func (pr *PullRequest) IsClosedUnmerged() bool {
	return pr.State == PRStateClosed && pr.MergedAt == nil
}

// HasLabel checks whether the PR carries the named label
func (pr *PullRequest) HasLabel(name string) bool {
	for _, label := range pr.Labels {
		if label == name {
			return true
		}
	}
	return false
}

// ReviewGraphKey builds the cache key for a PR's review graph
func ReviewGraphKey(repository string, number int) string {
	return fmt.Sprintf("%s|%d", repository, number)
}
