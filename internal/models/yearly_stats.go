package models

import "time"

// PRCategory classifies a PR by the files it touches
type PRCategory string

const (
	PRCategoryApplication PRCategory = "application"
	PRCategoryTests       PRCategory = "tests"
	PRCategoryInfra       PRCategory = "infra"
	PRCategoryInternal    PRCategory = "internal"
	PRCategoryMixed       PRCategory = "mixed"
)

// PRCategories lists categories in report order
var PRCategories = []PRCategory{
	PRCategoryApplication, PRCategoryTests, PRCategoryInfra, PRCategoryInternal, PRCategoryMixed,
}

// SearchPullRequest is a PR node returned by the GraphQL search
type SearchPullRequest struct {
	Repository   string             `json:"repository"`
	Number       int                `json:"number"`
	Title        string             `json:"title"`
	URL          string             `json:"url"`
	Author       string             `json:"author"`
	State        string             `json:"state"`
	CreatedAt    time.Time          `json:"created_at"`
	MergedAt     *time.Time         `json:"merged_at"`
	Additions    int                `json:"additions"`
	Deletions    int                `json:"deletions"`
	ChangedFiles int                `json:"changed_files"`
	Files        []string           `json:"files"`
	Reviews      []SearchReviewNode `json:"reviews"`
}

// SearchReviewNode is a review nested in a GraphQL search result
type SearchReviewNode struct {
	Author      string      `json:"author"`
	State       ReviewState `json:"state"`
	SubmittedAt *time.Time  `json:"submitted_at"`
	URL         string      `json:"url"`
}

// CountEntry is a named count, used for top-N lists
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ReviewActivity is a single review given by a user
type ReviewActivity struct {
	Repository string      `json:"repository"`
	PRNumber   int         `json:"pr_number"`
	PRTitle    string      `json:"pr_title"`
	PRURL      string      `json:"pr_url"`
	PRAuthor   string      `json:"pr_author"`
	ReviewedAt time.Time   `json:"reviewed_at"`
	State      ReviewState `json:"state"`
	ReviewURL  string      `json:"review_url"`
}

// YearlyReviewStats summarises a user's reviews over a calendar year
type YearlyReviewStats struct {
	Login             string              `json:"login"`
	Year              int                 `json:"year"`
	Reviews           []ReviewActivity    `json:"reviews"`
	TotalReviews      int                 `json:"total_reviews"`
	UniquePRsReviewed int                 `json:"unique_prs_reviewed"`
	UniqueAuthors     int                 `json:"unique_authors"`
	ByState           map[ReviewState]int `json:"by_state"`
	ByMonth           map[string]int      `json:"by_month"`
	TopAuthors        []CountEntry        `json:"top_authors"`
	TopRepositories   []CountEntry        `json:"top_repositories"`
}

// AuthoredPR is a merged PR authored by a user
type AuthoredPR struct {
	Repository   string     `json:"repository"`
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	CreatedAt    time.Time  `json:"created_at"`
	MergedAt     *time.Time `json:"merged_at"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changed_files"`
	Category     PRCategory `json:"category"`
}

// CategoryStats aggregates authored PRs of one category
type CategoryStats struct {
	Count     int `json:"count"`
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// YearlyPRStats summarises a user's merged PRs over a calendar year
type YearlyPRStats struct {
	Login             string                       `json:"login"`
	Year              int                          `json:"year"`
	PullRequests      []AuthoredPR                 `json:"pull_requests"`
	TotalPRs          int                          `json:"total_prs"`
	TotalAdditions    int                          `json:"total_additions"`
	TotalDeletions    int                          `json:"total_deletions"`
	TotalChangedFiles int                          `json:"total_changed_files"`
	ByCategory        map[PRCategory]CategoryStats `json:"by_category"`
	ByMonth           map[string]int               `json:"by_month"`
	TopRepositories   []CountEntry                 `json:"top_repositories"`
}
