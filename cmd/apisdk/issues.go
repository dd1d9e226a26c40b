package main

import (
	"github.com/jessevdk/go-flags"

	"github.com/sdkcourse/apisdk/go/github"
)

type issuesCommand struct{}

type issuesListCommand struct {
	app *app

	State string   `long:"state" description:"open, closed or all" choice:"open" choice:"closed" choice:"all" default:"open"`
	Args  repoArgs `positional-args:"yes" required:"yes"`
}

func (c *issuesListCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	issues, err := client.Issues.List(c.app.ctx, c.Args.Owner, c.Args.Repo, c.State)
	if err != nil {
		return err
	}
	return c.app.print(issues)
}

type issuesCreateCommand struct {
	app *app

	Title     string   `long:"title" description:"Issue title" required:"yes"`
	Body      string   `long:"body" description:"Issue body"`
	Labels    []string `long:"label" description:"Label (repeatable)"`
	Assignees []string `long:"assignee" description:"Assignee login (repeatable)"`
	Args      repoArgs `positional-args:"yes" required:"yes"`
}

func (c *issuesCreateCommand) Execute(_ []string) error {
	client, err := c.app.githubClient()
	if err != nil {
		return err
	}
	issue, err := client.Issues.Create(c.app.ctx, c.Args.Owner, c.Args.Repo, github.IssueRequest{
		Title:     c.Title,
		Body:      c.Body,
		Labels:    c.Labels,
		Assignees: c.Assignees,
	})
	if err != nil {
		return err
	}
	return c.app.print(issue)
}

func registerIssueCommands(parser *flags.Parser, a *app) error {
	group, err := parser.AddCommand("issues", "List and open GitHub issues", "", &issuesCommand{})
	if err != nil {
		return err
	}
	if _, err := group.AddCommand("list", "List issues of a repository", "", &issuesListCommand{app: a}); err != nil {
		return err
	}
	if _, err := group.AddCommand("create", "Open an issue", "", &issuesCreateCommand{app: a}); err != nil {
		return err
	}
	return nil
}
