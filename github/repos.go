package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sdkcourse/apisdk/go/internal/transport"
	"github.com/sdkcourse/apisdk/go/routes"
)

// ReposClient wraps repository endpoints.
type ReposClient struct {
	client *Client
}

// Get returns a repository.
func (r *ReposClient) Get(ctx context.Context, owner, repo string) (Repository, error) {
	if r == nil || r.client == nil {
		return Repository{}, fmt.Errorf("sdk: repos client not initialized")
	}
	path, err := repoRoute(routes.Repo, owner, repo)
	if err != nil {
		return Repository{}, err
	}
	var out Repository
	if _, err := r.client.http.DoJSON(ctx, transport.Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return Repository{}, err
	}
	return out, nil
}

// repoRoute expands a route keyed by {owner} and {repo}.
func repoRoute(route, owner, repo string) (string, error) {
	owner = strings.TrimSpace(owner)
	repo = strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return "", errors.New("sdk: repository owner and name required")
	}
	return routes.Expand(route, "owner", owner, "repo", repo), nil
}
