// Package headers defines HTTP header constants used by the apisdk clients.
package headers

const (
	// Traceparent carries the W3C trace context of the calling span.
	Traceparent = "Traceparent"

	// IdempotencyToken lets the messaging API deduplicate retried sends.
	IdempotencyToken = "I-Twilio-Idempotency-Token"

	// TwilioRequestID is the messaging API's response correlation id.
	TwilioRequestID = "Twilio-Request-Id"

	// GitHubRequestID is the GitHub API's response correlation id.
	GitHubRequestID = "X-GitHub-Request-Id"

	// GitHubAPIVersion pins the REST API version.
	GitHubAPIVersion = "X-GitHub-Api-Version"

	// RetryAfter is the standard back-off hint in seconds.
	RetryAfter = "Retry-After"

	// RateLimitRemaining is the number of requests left in the window.
	RateLimitRemaining = "X-RateLimit-Remaining"

	// RateLimitReset is the unix time at which the window resets.
	RateLimitReset = "X-RateLimit-Reset"
)
