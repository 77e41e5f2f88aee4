package services

import (
	"github.com/alimgiray/prslo/internal/models"
)

// RocketService picks the review comments that earned rocket reactions
type RocketService struct {
	bots BotDetector
}

func NewRocketService(bots BotDetector) *RocketService {
	return &RocketService{bots: bots}
}

// Extract returns the review bodies and inline comments of pr with at least
// one rocket reaction. Comments written by bots are skipped.
func (s *RocketService) Extract(pr models.PullRequest, reviews []models.Review) []models.RocketComment {
	var comments []models.RocketComment
	add := func(author, body, url string, reactions []models.Reaction) {
		if author == "" || s.bots.IsBot(author) {
			return
		}
		rockets, reactors := countRockets(reactions)
		if rockets == 0 {
			return
		}
		comments = append(comments, models.RocketComment{
			Repository: pr.Repository,
			PRNumber:   pr.Number,
			Author:     author,
			Body:       body,
			URL:        url,
			Rockets:    rockets,
			Reactors:   reactors,
		})
	}

	for _, review := range reviews {
		if review.Body != "" {
			add(review.Reviewer, review.Body, review.URL, review.Reactions)
		}
		for _, comment := range review.Comments {
			add(comment.Author, comment.Body, comment.URL, comment.Reactions)
		}
	}
	return comments
}

// AllReactors lists everyone who left a rocket, in order of first appearance
func AllReactors(comments []models.RocketComment) []string {
	seen := make(map[string]struct{})
	reactors := make([]string, 0)
	for _, comment := range comments {
		for _, reactor := range comment.Reactors {
			if _, ok := seen[reactor]; ok {
				continue
			}
			seen[reactor] = struct{}{}
			reactors = append(reactors, reactor)
		}
	}
	return reactors
}

func countRockets(reactions []models.Reaction) (int, []string) {
	rockets := 0
	seen := make(map[string]struct{})
	reactors := make([]string, 0)
	for _, reaction := range reactions {
		if reaction.Content != models.ReactionRocket {
			continue
		}
		rockets++
		if reaction.User == "" {
			continue
		}
		if _, ok := seen[reaction.User]; ok {
			continue
		}
		seen[reaction.User] = struct{}{}
		reactors = append(reactors, reaction.User)
	}
	return rockets, reactors
}
