package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	sdk "github.com/sdkcourse/apisdk/go"
	"github.com/sdkcourse/apisdk/go/internal/transport"
	"github.com/sdkcourse/apisdk/go/routes"
)

const (
	defaultHistoryPages = 100
	historyConcurrency  = 4
	defaultTrending     = 25
)

// ListOptions paginates a stargazer listing.
type ListOptions struct {
	// PerPage is capped at 100.
	PerPage int
	Page    int
	// WithTimestamps requests the star media type so StarredAt is filled in.
	WithTimestamps bool
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(min(o.PerPage, maxPerPage)))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	return q
}

func starHeader(withTimestamps bool) http.Header {
	if !withTimestamps {
		return nil
	}
	return http.Header{"Accept": {mediaTypeStar}}
}

// StarredOptions filters a user's starred repositories.
type StarredOptions struct {
	// Sort is "created" (when starred) or "updated".
	Sort string
	// Direction is "asc" or "desc".
	Direction string
	PerPage   int
	Page      int
	// WithTimestamps is implied by Sort == "created".
	WithTimestamps bool
}

// TrendingOptions selects a trending-repository search.
type TrendingOptions struct {
	Language string
	// Since is "daily", "weekly" or "monthly"; anything else means daily.
	Since string
	// Limit defaults to 25.
	Limit int
}

// StarsClient wraps the activity/starring endpoints.
type StarsClient struct {
	client *Client
}

func (s *StarsClient) ready() error {
	if s == nil || s.client == nil {
		return fmt.Errorf("sdk: stars client not initialized")
	}
	return nil
}

func pageFrom[T any](items []T, h http.Header) Page[T] {
	links := parseLink(h.Get("Link"))
	return Page[T]{Items: items, NextPage: links.next, PrevPage: links.prev, LastPage: links.last}
}

// ListStargazers lists users who starred owner/repo.
func (s *StarsClient) ListStargazers(ctx context.Context, owner, repo string, opts ListOptions) (Page[Stargazer], error) {
	if err := s.ready(); err != nil {
		return Page[Stargazer]{}, err
	}
	path, err := repoRoute(routes.RepoStargazers, owner, repo)
	if err != nil {
		return Page[Stargazer]{}, err
	}
	r := transport.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  opts.query(),
		Header: starHeader(opts.WithTimestamps),
	}
	if opts.WithTimestamps {
		var items []Stargazer
		meta, err := s.client.http.DoJSON(ctx, r, &items)
		if err != nil {
			return Page[Stargazer]{}, err
		}
		return pageFrom(items, meta.Header), nil
	}
	var users []User
	meta, err := s.client.http.DoJSON(ctx, r, &users)
	if err != nil {
		return Page[Stargazer]{}, err
	}
	items := make([]Stargazer, len(users))
	for i, u := range users {
		items[i] = Stargazer{User: u}
	}
	return pageFrom(items, meta.Header), nil
}

// ListStarred lists repositories starred by username, or by the
// authenticated user when username is empty.
func (s *StarsClient) ListStarred(ctx context.Context, username string, opts StarredOptions) (Page[StarredRepository], error) {
	if err := s.ready(); err != nil {
		return Page[StarredRepository]{}, err
	}
	path := routes.UserStarred
	if u := strings.TrimSpace(username); u != "" {
		path = routes.Expand(routes.UsersStarred, "username", u)
	}
	q := ListOptions{PerPage: opts.PerPage, Page: opts.Page}.query()
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.Direction != "" {
		q.Set("direction", opts.Direction)
	}
	withTimestamps := opts.WithTimestamps || opts.Sort == "created"
	r := transport.Request{Method: http.MethodGet, Path: path, Query: q, Header: starHeader(withTimestamps)}
	if withTimestamps {
		var items []StarredRepository
		meta, err := s.client.http.DoJSON(ctx, r, &items)
		if err != nil {
			return Page[StarredRepository]{}, err
		}
		return pageFrom(items, meta.Header), nil
	}
	var repos []Repository
	meta, err := s.client.http.DoJSON(ctx, r, &repos)
	if err != nil {
		return Page[StarredRepository]{}, err
	}
	items := make([]StarredRepository, len(repos))
	for i, repo := range repos {
		items[i] = StarredRepository{Repo: repo}
	}
	return pageFrom(items, meta.Header), nil
}

// IsStarred reports whether the authenticated user starred owner/repo.
// A 404 means "not starred"; any other failure is returned.
func (s *StarsClient) IsStarred(ctx context.Context, owner, repo string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	path, err := repoRoute(routes.UserStarredRepo, owner, repo)
	if err != nil {
		return false, err
	}
	meta, err := s.client.http.DoJSON(ctx, transport.Request{Method: http.MethodGet, Path: path}, nil)
	if err != nil {
		if sdk.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return meta.StatusCode == http.StatusNoContent || meta.StatusCode == http.StatusOK, nil
}

// Star stars owner/repo for the authenticated user.
func (s *StarsClient) Star(ctx context.Context, owner, repo string) error {
	return s.setStar(ctx, http.MethodPut, owner, repo)
}

// Unstar removes the authenticated user's star from owner/repo.
func (s *StarsClient) Unstar(ctx context.Context, owner, repo string) error {
	return s.setStar(ctx, http.MethodDelete, owner, repo)
}

func (s *StarsClient) setStar(ctx context.Context, method, owner, repo string) error {
	if err := s.ready(); err != nil {
		return err
	}
	path, err := repoRoute(routes.UserStarredRepo, owner, repo)
	if err != nil {
		return err
	}
	_, err = s.client.http.DoJSON(ctx, transport.Request{Method: method, Path: path}, nil)
	return err
}

// Count returns the repository's stargazers_count.
func (s *StarsClient) Count(ctx context.Context, owner, repo string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	r, err := s.client.Repos.Get(ctx, owner, repo)
	if err != nil {
		return 0, err
	}
	return r.StargazersCount, nil
}

// History walks the timestamped stargazer listing, 100 per page, up to
// maxPages pages (100 when maxPages <= 0). Page 1 is fetched first to read
// the last page from the Link header; the rest are fetched concurrently.
// Events are ordered by page then position. When a later page fails, the
// events of the pages before it are returned together with the error and
// no page after it is requested.
func (s *StarsClient) History(ctx context.Context, owner, repo string, maxPages int) ([]StarEvent, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if maxPages <= 0 {
		maxPages = defaultHistoryPages
	}
	fetch := func(ctx context.Context, page int) (Page[Stargazer], error) {
		return s.ListStargazers(ctx, owner, repo, ListOptions{PerPage: maxPerPage, Page: page, WithTimestamps: true})
	}

	first, err := fetch(ctx, 1)
	if err != nil {
		return nil, err
	}
	pages := [][]Stargazer{first.Items}
	last := min(first.LastPage, maxPages)
	if len(first.Items) == maxPerPage && last > 1 {
		rest, errs := s.fetchPages(ctx, fetch, last)
		for i, items := range rest {
			if errs[i] != nil {
				err = fmt.Errorf("sdk: star history page %d: %w", i+2, errs[i])
				s.client.http.Telemetry().Log(ctx, sdk.LogLevelError, "star_history_incomplete", map[string]any{
					"owner":        owner,
					"repo":         repo,
					"pages_loaded": i + 1,
					"error":        err.Error(),
				})
				break
			}
			pages = append(pages, items)
		}
	}

	var history []StarEvent
	for _, items := range pages {
		for _, sg := range items {
			if sg.User.Login == "" || sg.StarredAt.IsZero() {
				continue
			}
			history = append(history, StarEvent{UserID: sg.User.ID, Login: sg.User.Login, StarredAt: sg.StarredAt})
		}
	}
	return history, err
}

// fetchPages loads pages 2..last with bounded concurrency. Each page runs
// under its own context; once a page fails, every later page is cancelled
// or skipped while earlier pages finish normally.
func (s *StarsClient) fetchPages(ctx context.Context, fetch func(context.Context, int) (Page[Stargazer], error), last int) ([][]Stargazer, []error) {
	n := last - 1
	rest := make([][]Stargazer, n)
	errs := make([]error, n)
	ctxs := make([]context.Context, n)
	cancels := make([]context.CancelFunc, n)
	for i := range n {
		ctxs[i], cancels[i] = context.WithCancel(ctx)
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	var mu sync.Mutex
	firstFailed := last + 1
	var g errgroup.Group
	g.SetLimit(historyConcurrency)
	for page := 2; page <= last; page++ {
		g.Go(func() error {
			i := page - 2
			mu.Lock()
			skip := page > firstFailed
			mu.Unlock()
			if skip {
				errs[i] = context.Canceled
				return nil
			}
			p, err := fetch(ctxs[i], page)
			rest[i], errs[i] = p.Items, err
			if err == nil {
				return nil
			}
			mu.Lock()
			if page < firstFailed {
				firstFailed = page
				for j := i + 1; j < n; j++ {
					cancels[j]()
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return rest, errs
}

// Trending searches for recently created repositories ordered by stars.
func (s *StarsClient) Trending(ctx context.Context, opts TrendingOptions) ([]Repository, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultTrending
	}
	q := url.Values{}
	q.Set("q", trendingQuery(s.client.now(), opts))
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", strconv.Itoa(min(limit, maxPerPage)))

	var result struct {
		TotalCount int          `json:"total_count"`
		Items      []Repository `json:"items"`
	}
	if _, err := s.client.http.DoJSON(ctx, transport.Request{Method: http.MethodGet, Path: routes.SearchRepositories, Query: q}, &result); err != nil {
		return nil, err
	}
	if len(result.Items) > limit {
		result.Items = result.Items[:limit]
	}
	return result.Items, nil
}

func trendingQuery(now time.Time, opts TrendingOptions) string {
	days := 1
	switch opts.Since {
	case "weekly":
		days = 7
	case "monthly":
		days = 30
	}
	since := now.UTC().AddDate(0, 0, -days).Format("2006-01-02")
	query := "stars:>1 created:>=" + since
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		query += " language:" + lang
	}
	return query
}
