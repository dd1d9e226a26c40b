// Command apisdk drives the messaging and github clients from the shell.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	sdk "github.com/sdkcourse/apisdk/go"
	"github.com/sdkcourse/apisdk/go/github"
	"github.com/sdkcourse/apisdk/go/messaging"
)

type globalOptions struct {
	EnvFile  *string       `long:"env-file" description:"Read missing environment variables from this file (default .env, optional)"`
	LogLevel string        `long:"log-level" description:"Log level (debug, info, warn, error); overrides APISDK_LOG_LEVEL"`
	Timeout  time.Duration `long:"timeout" description:"Per-request timeout" default:"30s"`
}

type app struct {
	ctx    context.Context
	opts   globalOptions
	out    io.Writer
	errOut io.Writer
	getenv func(string) string

	cfg    *config
	logger zerolog.Logger
}

func (a *app) setup() error {
	if a.cfg != nil {
		return nil
	}
	// an explicitly chosen env file must exist; an empty one disables it
	envFile, required := ".env", false
	if a.opts.EnvFile != nil {
		envFile, required = *a.opts.EnvFile, true
	}
	cfg, err := loadConfig(a.getenv, envFile, required)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if a.opts.LogLevel != "" {
		level = a.opts.LogLevel
	}
	a.logger = newLogger(a.errOut, level, cfg.LogFormat)
	a.cfg = &cfg
	return nil
}

func (a *app) clientOptions(baseURL string) []sdk.Option {
	opts := []sdk.Option{
		sdk.WithTelemetry(telemetryHooks(a.logger)),
		sdk.WithTimeout(a.opts.Timeout),
	}
	if baseURL != "" {
		opts = append(opts, sdk.WithBaseURL(baseURL))
	}
	return opts
}

func (a *app) messagingClient() (*messaging.Client, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}
	if !a.cfg.messagingConfigured() {
		return nil, errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be set")
	}
	return messaging.NewClient(a.cfg.TwilioAccountSID, a.cfg.TwilioAuthToken, a.clientOptions(a.cfg.TwilioBaseURL)...)
}

func (a *app) githubClient() (*github.Client, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}
	if a.cfg.GitHubToken == "" {
		a.logger.Warn().Msg("GITHUB_TOKEN not set, using anonymous access")
	}
	return github.NewClient(a.cfg.GitHubToken, a.clientOptions(a.cfg.GitHubBaseURL)...)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newParser(a *app) (*flags.Parser, error) {
	parser := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "apisdk"
	if err := registerMessageCommands(parser, a); err != nil {
		return nil, err
	}
	if err := registerStarCommands(parser, a); err != nil {
		return nil, err
	}
	if err := registerIssueCommands(parser, a); err != nil {
		return nil, err
	}
	return parser, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	a := &app{ctx: ctx, out: stdout, errOut: stderr, getenv: getenv}
	parser, err := newParser(a)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}
