package github

import "time"

// User is the public profile embedded in most responses.
type User struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	NodeID    string `json:"node_id,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
	Type      string `json:"type,omitempty"`
	SiteAdmin bool   `json:"site_admin,omitempty"`
}

// Repository is a repository summary.
type Repository struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Owner           User       `json:"owner"`
	Private         bool       `json:"private"`
	HTMLURL         string     `json:"html_url"`
	Description     string     `json:"description"`
	Language        string     `json:"language"`
	StargazersCount int        `json:"stargazers_count"`
	WatchersCount   int        `json:"watchers_count"`
	ForksCount      int        `json:"forks_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PushedAt        *time.Time `json:"pushed_at,omitempty"`
}

// Stargazer is a user who starred a repository. StarredAt is only set when
// the listing was requested with timestamps.
type Stargazer struct {
	StarredAt time.Time `json:"starred_at"`
	User      User      `json:"user"`
}

// StarredRepository is a repository a user starred.
type StarredRepository struct {
	StarredAt time.Time  `json:"starred_at"`
	Repo      Repository `json:"repo"`
}

// StarEvent is one point of a repository's star history.
type StarEvent struct {
	UserID    int64     `json:"user_id"`
	Login     string    `json:"login"`
	StarredAt time.Time `json:"starred_at"`
}

// Label is an issue label.
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Issue is an issue (or pull request) in a repository.
type Issue struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	HTMLURL   string    `json:"html_url"`
	User      User      `json:"user"`
	Labels    []Label   `json:"labels"`
	Assignees []User    `json:"assignees"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IssueRequest mirrors POST /repos/{owner}/{repo}/issues.
type IssueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
	Labels    []string `json:"labels,omitempty"`
}
