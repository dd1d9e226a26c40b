// Package routes holds the REST paths used by the service clients. Paths
// with {placeholders} are filled in with Expand.
package routes

import (
	"net/url"
	"strings"
)

// Messaging routes. Message routes are relative to MessagingAccount.
const (
	// MessagingAccount scopes every messaging call to one account.
	MessagingAccount = "/Accounts/{account_sid}"

	// Messages creates (POST) or lists (GET) messages.
	Messages = "/Messages.json"

	// MessageBySID fetches a single message.
	MessageBySID = "/Messages/{sid}.json"
)

// GitHub routes.
const (
	// Repo returns repository metadata, including stargazers_count.
	Repo = "/repos/{owner}/{repo}"

	// RepoStargazers lists who starred a repository.
	RepoStargazers = "/repos/{owner}/{repo}/stargazers"

	// RepoIssues creates (POST) or lists (GET) issues.
	RepoIssues = "/repos/{owner}/{repo}/issues"

	// UserStarred lists repositories starred by the authenticated user.
	UserStarred = "/user/starred"

	// UserStarredRepo checks (GET), adds (PUT) or removes (DELETE) a star.
	UserStarredRepo = "/user/starred/{owner}/{repo}"

	// UsersStarred lists repositories starred by another user.
	UsersStarred = "/users/{username}/starred"

	// SearchRepositories runs a repository search.
	SearchRepositories = "/search/repositories"
)

// Expand replaces each {name} in route with the path-escaped value that
// follows name in pairs. A trailing name without a value is ignored.
func Expand(route string, pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		route = strings.ReplaceAll(route, "{"+pairs[i]+"}", url.PathEscape(pairs[i+1]))
	}
	return route
}
