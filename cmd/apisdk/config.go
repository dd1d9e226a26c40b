package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

type config struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioBaseURL    string

	GitHubToken   string
	GitHubBaseURL string

	LogLevel  string
	LogFormat string
}

// loadConfig reads settings from the process environment, falling back to
// values from envFile. A missing envFile is not an error unless required.
func loadConfig(getenv func(string) string, envFile string, required bool) (config, error) {
	fileEnv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = values
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return config{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(fileEnv[key])
	}
	return config{
		TwilioAccountSID: lookup("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  lookup("TWILIO_AUTH_TOKEN"),
		TwilioBaseURL:    lookup("TWILIO_BASE_URL"),
		GitHubToken:      lookup("GITHUB_TOKEN"),
		GitHubBaseURL:    lookup("GITHUB_BASE_URL"),
		LogLevel:         lookup("APISDK_LOG_LEVEL"),
		LogFormat:        lookup("APISDK_LOG_FORMAT"),
	}, nil
}

// messagingConfigured returns true if the messaging credentials are present
func (c config) messagingConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}
