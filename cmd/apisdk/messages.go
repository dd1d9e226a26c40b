package main

import (
	"fmt"

	"github.com/gammazero/workerpool"
	"github.com/jessevdk/go-flags"

	"github.com/sdkcourse/apisdk/go/messaging"
)

type messagesCommand struct{}

type messagesSendCommand struct {
	app *app

	From             string   `long:"from" description:"Sender phone number"`
	MessagingService string   `long:"messaging-service" description:"Messaging service SID used instead of --from"`
	To               []string `long:"to" description:"Recipient phone number (repeatable)" required:"yes"`
	Body             string   `long:"body" description:"Message text" required:"yes"`
	Workers          int      `long:"workers" description:"Concurrent sends when several recipients are given" default:"4"`
}

type sendResult struct {
	To      string             `json:"to"`
	Message *messaging.Message `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func (c *messagesSendCommand) Execute(_ []string) error {
	client, err := c.app.messagingClient()
	if err != nil {
		return err
	}
	workers := max(c.Workers, 1)
	wp := workerpool.New(workers)
	results := make([]sendResult, len(c.To))
	for i, to := range c.To {
		wp.Submit(func() {
			msg, err := client.Messages.Send(c.app.ctx, messaging.SendMessageRequest{
				To:                  to,
				From:                c.From,
				MessagingServiceSID: c.MessagingService,
				Body:                c.Body,
			})
			if err != nil {
				c.app.logger.Error().Err(err).Str("to", to).Msg("send failed")
				results[i] = sendResult{To: to, Error: err.Error()}
				return
			}
			results[i] = sendResult{To: to, Message: &msg}
		})
	}
	wp.StopWait()

	if err := c.app.print(results); err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sends failed", failed, len(results))
	}
	return nil
}

type messagesFetchCommand struct {
	app *app

	Args struct {
		SID string `positional-arg-name:"SID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *messagesFetchCommand) Execute(_ []string) error {
	client, err := c.app.messagingClient()
	if err != nil {
		return err
	}
	msg, err := client.Messages.Fetch(c.app.ctx, c.Args.SID)
	if err != nil {
		return err
	}
	return c.app.print(msg)
}

type messagesListCommand struct {
	app *app

	To        string `long:"to" description:"Only messages sent to this number"`
	From      string `long:"from" description:"Only messages sent from this number"`
	PageSize  int    `long:"page-size" description:"Messages per page"`
	PageToken string `long:"page-token" description:"Page token from a previous listing"`
}

func (c *messagesListCommand) Execute(_ []string) error {
	client, err := c.app.messagingClient()
	if err != nil {
		return err
	}
	list, err := client.Messages.List(c.app.ctx, messaging.ListMessagesParams{
		To:        c.To,
		From:      c.From,
		PageSize:  c.PageSize,
		PageToken: c.PageToken,
	})
	if err != nil {
		return err
	}
	return c.app.print(list)
}

func registerMessageCommands(parser *flags.Parser, a *app) error {
	group, err := parser.AddCommand("messages", "Send, fetch and list SMS messages", "", &messagesCommand{})
	if err != nil {
		return err
	}
	if _, err := group.AddCommand("send", "Send a message", "Send one message to each --to recipient.", &messagesSendCommand{app: a}); err != nil {
		return err
	}
	if _, err := group.AddCommand("fetch", "Fetch a message by SID", "", &messagesFetchCommand{app: a}); err != nil {
		return err
	}
	if _, err := group.AddCommand("list", "List messages", "List one page of messages; filters are passed through.", &messagesListCommand{app: a}); err != nil {
		return err
	}
	return nil
}
