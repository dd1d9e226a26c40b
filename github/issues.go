package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sdkcourse/apisdk/go/internal/transport"
	"github.com/sdkcourse/apisdk/go/routes"
)

// IssuesClient wraps issue endpoints.
type IssuesClient struct {
	client *Client
}

func (i *IssuesClient) ready() error {
	if i == nil || i.client == nil {
		return fmt.Errorf("sdk: issues client not initialized")
	}
	return nil
}

// Create opens an issue.
func (i *IssuesClient) Create(ctx context.Context, owner, repo string, req IssueRequest) (Issue, error) {
	if err := i.ready(); err != nil {
		return Issue{}, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return Issue{}, errors.New("sdk: issue title required")
	}
	path, err := repoRoute(routes.RepoIssues, owner, repo)
	if err != nil {
		return Issue{}, err
	}
	var out Issue
	r := transport.Request{Method: http.MethodPost, Path: path, JSON: req}
	if _, err := i.client.http.DoJSON(ctx, r, &out); err != nil {
		return Issue{}, err
	}
	return out, nil
}

// List returns issues in the given state ("open", "closed" or "all").
// An empty state lists open issues.
func (i *IssuesClient) List(ctx context.Context, owner, repo, state string) ([]Issue, error) {
	if err := i.ready(); err != nil {
		return nil, err
	}
	path, err := repoRoute(routes.RepoIssues, owner, repo)
	if err != nil {
		return nil, err
	}
	if state == "" {
		state = "open"
	}
	var out []Issue
	r := transport.Request{Method: http.MethodGet, Path: path, Query: url.Values{"state": {state}}}
	if _, err := i.client.http.DoJSON(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}
