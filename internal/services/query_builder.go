package services

import (
	"fmt"
	"strings"
	"time"
)

// searchTimeLayout is ISO 8601 with a numeric offset, as GitHub search expects
const searchTimeLayout = "2006-01-02T15:04:05-07:00"

// AuthorQuery ORs author filters for the given logins
func AuthorQuery(authors []string) string {
	terms := make([]string, 0, len(authors))
	for _, author := range authors {
		terms = append(terms, "author:"+author)
	}
	return strings.Join(terms, " ")
}

// CreatedFilter restricts results to PRs created inside [from, to]
func CreatedFilter(from, to time.Time) string {
	return fmt.Sprintf("created:%s..%s", from.Format(searchTimeLayout), to.Format(searchTimeLayout))
}

// CreatedDateFilter restricts results to PRs created between two calendar dates
func CreatedDateFilter(from, to time.Time) string {
	return fmt.Sprintf("created:%s..%s", from.Format(holidayLayout), to.Format(holidayLayout))
}

// LabelFilter restricts results to PRs carrying the label
func LabelFilter(label string) string {
	if strings.ContainsAny(label, " \t") {
		return fmt.Sprintf("label:%q", label)
	}
	return "label:" + label
}

// ScopeTerms returns the repository scope terms: one repository when repo is
// set, otherwise the whole organization minus the archived repository.
func ScopeTerms(org, repo, archivedRepo string) []string {
	if repo != "" {
		return []string{fmt.Sprintf("repo:%s/%s", org, repo)}
	}
	terms := []string{"org:" + org}
	if archivedRepo != "" {
		terms = append(terms, fmt.Sprintf("-repo:%s/%s", org, archivedRepo))
	}
	return terms
}

// BuildSearchQuery ANDs caller terms with the fixed PR terms and scope
func BuildSearchQuery(terms []string, org, repo, archivedRepo string) string {
	all := make([]string, 0, len(terms)+5)
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			all = append(all, term)
		}
	}
	all = append(all, "type:pr", "draft:false")
	all = append(all, ScopeTerms(org, repo, archivedRepo)...)
	return strings.Join(all, " ")
}
