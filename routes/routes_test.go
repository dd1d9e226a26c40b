package routes

import "testing"

func TestExpand(t *testing.T) {
	cases := []struct {
		route string
		pairs []string
		want  string
	}{
		{Repo, []string{"owner", "octocat", "repo", "Hello-World"}, "/repos/octocat/Hello-World"},
		{MessageBySID, []string{"sid", "SM 1/2"}, "/Messages/SM%201%2F2.json"},
		{UsersStarred, []string{"username"}, UsersStarred},
		{UserStarred, nil, "/user/starred"},
	}
	for _, tc := range cases {
		if got := Expand(tc.route, tc.pairs...); got != tc.want {
			t.Fatalf("Expand(%q, %v) = %q, want %q", tc.route, tc.pairs, got, tc.want)
		}
	}
}
