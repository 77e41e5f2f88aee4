package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// SearchClient runs one page of a GitHub issue search
type SearchClient interface {
	SearchIssues(ctx context.Context, query string, page, perPage int) ([]models.PullRequest, error)
}

// GraphQLClient posts a GraphQL query and decodes its data into out
type GraphQLClient interface {
	GraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error
}

// GitHubService talks to the GitHub REST and GraphQL APIs through go-github
type GitHubService struct {
	client     *github.Client
	graphQLURL string
}

// GitHubServiceConfig holds what is needed to build an authenticated client
type GitHubServiceConfig struct {
	Token   string
	APIURL  string
	Timeout time.Duration
}

// GraphQLErrorEntry is one entry of a GraphQL "errors" array
type GraphQLErrorEntry struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Path    []string `json:"path"`
}

// GraphQLError is returned when a GraphQL response carries errors
type GraphQLError struct {
	Errors []GraphQLErrorEntry
}

func (e *GraphQLError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		messages = append(messages, entry.Message)
	}
	return "GraphQL errors: " + strings.Join(messages, ", ")
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []GraphQLErrorEntry `json:"errors"`
}

type searchIssuesResponse struct {
	TotalCount        int               `json:"total_count"`
	IncompleteResults bool              `json:"incomplete_results"`
	Items             []searchIssueItem `json:"items"`
}

type searchIssueItem struct {
	ID            int64     `json:"id"`
	NodeID        string    `json:"node_id"`
	Number        int       `json:"number"`
	Title         string    `json:"title"`
	HTMLURL       string    `json:"html_url"`
	State         string    `json:"state"`
	RepositoryURL string    `json:"repository_url"`
	CreatedAt     time.Time `json:"created_at"`
	User          struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *struct {
		MergedAt *time.Time `json:"merged_at"`
	} `json:"pull_request"`
}

// NewGitHubService creates a token-authenticated GitHub client
func NewGitHubService(cfg GitHubServiceConfig) (*GitHubService, error) {
	if cfg.Token == "" {
		return nil, models.ErrMissingToken
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = cfg.Timeout

	client := github.NewClient(httpClient)
	if cfg.APIURL != "" {
		enterprise, err := client.WithEnterpriseURLs(cfg.APIURL, cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_API_URL: %w", err)
		}
		client = enterprise
	}

	return NewGitHubServiceWithClient(client), nil
}

// NewGitHubServiceWithClient wraps an existing go-github client
func NewGitHubServiceWithClient(client *github.Client) *GitHubService {
	return &GitHubService{
		client:     client,
		graphQLURL: graphQLEndpoint(client.BaseURL),
	}
}

// graphQLEndpoint maps a REST base URL to its GraphQL endpoint.
// GitHub Enterprise serves REST under /api/v3/ and GraphQL at /api/graphql.
func graphQLEndpoint(base *url.URL) string {
	u := *base
	if strings.HasSuffix(u.Path, "/api/v3/") {
		u.Path = strings.TrimSuffix(u.Path, "v3/") + "graphql"
		return u.String()
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/graphql"
	return u.String()
}

// SearchIssues fetches a single page of the issue search API
func (s *GitHubService) SearchIssues(ctx context.Context, query string, page, perPage int) ([]models.PullRequest, error) {
	u := fmt.Sprintf("search/issues?q=%s&per_page=%d&page=%d", url.QueryEscape(query), perPage, page)
	req, err := s.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	var result searchIssuesResponse
	if _, err := s.client.Do(ctx, req, &result); err != nil {
		return nil, fmt.Errorf("search page %d failed: %w", page, err)
	}

	prs := make([]models.PullRequest, 0, len(result.Items))
	for _, item := range result.Items {
		prs = append(prs, item.toPullRequest())
	}
	return prs, nil
}

// GraphQL posts a query to the GraphQL endpoint
func (s *GitHubService) GraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	req, err := s.client.NewRequest(http.MethodPost, s.graphQLURL, graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to build graphql request: %w", err)
	}

	var resp graphQLResponse
	if _, err := s.client.Do(ctx, req, &resp); err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	if len(resp.Errors) > 0 {
		return &GraphQLError{Errors: resp.Errors}
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}

// IsNotFoundOrForbidden reports whether err came from a 404 or 403 response
func IsNotFoundOrForbidden(err error) bool {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return false
	}
	code := errResp.Response.StatusCode
	return code == http.StatusNotFound || code == http.StatusForbidden
}

func (item searchIssueItem) toPullRequest() models.PullRequest {
	pr := models.PullRequest{
		GithubID:   item.ID,
		NodeID:     item.NodeID,
		Repository: repositoryName(item.RepositoryURL),
		Number:     item.Number,
		Title:      item.Title,
		Author:     item.User.Login,
		URL:        item.HTMLURL,
		CreatedAt:  item.CreatedAt,
		State:      models.PRStateOpen,
	}
	for _, label := range item.Labels {
		pr.Labels = append(pr.Labels, label.Name)
	}
	if item.PullRequest != nil && item.PullRequest.MergedAt != nil {
		mergedAt := *item.PullRequest.MergedAt
		pr.MergedAt = &mergedAt
	}
	if item.State == "closed" {
		pr.State = models.PRStateClosed
		if pr.MergedAt != nil {
			pr.State = models.PRStateMerged
		}
	}
	return pr
}

// repositoryName takes the last path segment of a repository API URL
func repositoryName(repositoryURL string) string {
	trimmed := strings.TrimSuffix(repositoryURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
