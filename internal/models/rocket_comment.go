package models

// RocketComment is a review comment that received rocket reactions
type RocketComment struct {
	Repository string   `json:"repository"`
	PRNumber   int      `json:"pr_number"`
	Author     string   `json:"author"`
	Body       string   `json:"body"`
	URL        string   `json:"url"`
	Rockets    int      `json:"rockets"`
	Reactors   []string `json:"reactors"`
}
