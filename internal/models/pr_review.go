package models

import (
	"time"
)

// ReviewState mirrors GitHub's PullRequestReviewState
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "APPROVED"
	ReviewStateChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewStateCommented        ReviewState = "COMMENTED"
	ReviewStateDismissed        ReviewState = "DISMISSED"
	ReviewStatePending          ReviewState = "PENDING"
)

// Review represents a GitHub pull request review with its comments
type Review struct {
	Reviewer    string          `json:"reviewer"`
	State       ReviewState     `json:"state"`
	SubmittedAt *time.Time      `json:"submitted_at"`
	URL         string          `json:"url"`
	Body        string          `json:"body"`
	Reactions   []Reaction      `json:"reactions"`
	Comments    []ReviewComment `json:"comments"`
}

// ReviewComment is an inline comment attached to a review
type ReviewComment struct {
	Author    string     `json:"author"`
	Body      string     `json:"body"`
	URL       string     `json:"url"`
	CreatedAt *time.Time `json:"created_at"`
	Reactions []Reaction `json:"reactions"`
}

// Reaction is a single emoji reaction left by a user
type Reaction struct {
	Content string `json:"content"`
	User    string `json:"user"`
}

// ReactionRocket is GitHub's ReactionContent for the rocket emoji
const ReactionRocket = "ROCKET"
