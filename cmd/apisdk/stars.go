package main

import (
	"github.com/jessevdk/go-flags"

	"github.com/sdkcourse/apisdk/go/github"
)

type starsCommand struct{}

type repoArgs struct {
	Owner string `positional-arg-name:"OWNER"`
	Repo  string `positional-arg-name:"REPO"`
}

type starsListCommand struct {
	app *app

	PerPage    int      `long:"per-page" description:"Results per page (max 100)"`
	Page       int      `long:"page" description:"Page number"`
	Timestamps bool     `long:"timestamps" description:"Include when each user starred"`
	Args       repoArgs `positional-args:"yes" required:"yes"`
}

func (c *starsListCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	page, err := client.Stars.ListStargazers(c.app.ctx, c.Args.Owner, c.Args.Repo, github.ListOptions{
		PerPage:        c.PerPage,
		Page:           c.Page,
		WithTimestamps: c.Timestamps,
	})
	if err != nil {
		return err
	}
	return c.app.print(page)
}

type starsStarredCommand struct {
	app *app

	Sort      string `long:"sort" description:"created or updated" choice:"created" choice:"updated"`
	Direction string `long:"direction" description:"asc or desc" choice:"asc" choice:"desc"`
	PerPage   int    `long:"per-page" description:"Results per page (max 100)"`
	Page      int    `long:"page" description:"Page number"`
	Args      struct {
		Username string `positional-arg-name:"USERNAME"`
	} `positional-args:"yes"`
}

func (c *starsStarredCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	page, err := client.Stars.ListStarred(c.app.ctx, c.Args.Username, github.StarredOptions{
		Sort:      c.Sort,
		Direction: c.Direction,
		PerPage:   c.PerPage,
		Page:      c.Page,
	})
	if err != nil {
		return err
	}
	return c.app.print(page)
}

type starsCountCommand struct {
	app *app

	Args repoArgs `positional-args:"yes" required:"yes"`
}

func (c *starsCountCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	n, err := client.Stars.Count(c.app.ctx, c.Args.Owner, c.Args.Repo)
	if err != nil {
		return err
	}
	return c.app.print(map[string]int{"stargazers_count": n})
}

type starsCheckCommand struct {
	app *app

	Args repoArgs `positional-args:"yes" required:"yes"`
}

func (c *starsCheckCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	starred, err := client.Stars.IsStarred(c.app.ctx, c.Args.Owner, c.Args.Repo)
	if err != nil {
		return err
	}
	return c.app.print(map[string]bool{"starred": starred})
}

type starsToggleCommand struct {
	app  *app
	star bool

	Args repoArgs `positional-args:"yes" required:"yes"`
}

func (c *starsToggleCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	if c.star {
		err = client.Stars.Star(c.app.ctx, c.Args.Owner, c.Args.Repo)
	} else {
		err = client.Stars.Unstar(c.app.ctx, c.Args.Owner, c.Args.Repo)
	}
	if err != nil {
		return err
	}
	return c.app.print(map[string]bool{"starred": c.star})
}

type starsHistoryCommand struct {
	app *app

	MaxPages int      `long:"max-pages" description:"Stop after this many pages of 100" default:"100"`
	Args     repoArgs `positional-args:"yes" required:"yes"`
}

func (c *starsHistoryCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	history, err := client.Stars.History(c.app.ctx, c.Args.Owner, c.Args.Repo, c.MaxPages)
	if history != nil {
		if perr := c.app.print(history); perr != nil {
			return perr
		}
	}
	return err
}

type starsTrendingCommand struct {
	app *app

	Language string `long:"language" description:"Restrict to a language"`
	Since    string `long:"since" description:"Creation window" choice:"daily" choice:"weekly" choice:"monthly" default:"daily"`
	Limit    int    `long:"limit" description:"Maximum repositories" default:"25"`
}

func (c *starsTrendingCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	repos, err := client.Stars.Trending(c.app.ctx, github.TrendingOptions{
		Language: c.Language,
		Since:    c.Since,
		Limit:    c.Limit,
	})
	if err != nil {
		return err
	}
	return c.app.print(repos)
}

func registerStarCommands(parser *flags.Parser, a *app) error {
	group, err := parser.AddCommand("stars", "Query and change GitHub stars", "", &starsCommand{})
	if err != nil {
		return err
	}
	commands := []struct {
		name, short string
		data        any
	}{
		{"list", "List stargazers of a repository", &starsListCommand{app: a}},
		{"starred", "List repositories starred by a user (or yourself)", &starsStarredCommand{app: a}},
		{"count", "Print a repository's star count", &starsCountCommand{app: a}},
		{"check", "Check whether you starred a repository", &starsCheckCommand{app: a}},
		{"star", "Star a repository", &starsToggleCommand{app: a, star: true}},
		{"unstar", "Unstar a repository", &starsToggleCommand{app: a, star: false}},
		{"history", "Print when each user starred a repository", &starsHistoryCommand{app: a}},
		{"trending", "Search recently created repositories by stars", &starsTrendingCommand{app: a}},
	}
	for _, cmd := range commands {
		if _, err := group.AddCommand(cmd.name, cmd.short, "", cmd.data); err != nil {
			return err
		}
	}
	return nil
}
