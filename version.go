package sdk

// Version is the published SDK version.
// 0.3.0: Add github.Stars.History page fan-out and Trending search.
// 0.2.0: Breaking - Messages.List takes ListMessagesParams instead of url.Values.
// 0.1.0: Initial messaging client (send, fetch, list).
const Version = "0.3.0"

// DefaultUserAgent is sent when no WithUserAgent option is supplied.
const DefaultUserAgent = "apisdk-go/" + Version
