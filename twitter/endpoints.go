package twitter

import (
	"fmt"
	"net/url"
	"strings"
)

const twitterAPIURL = "https://api.twitter.com"

// bearerTokens is the list of known Twitter web-app bearer tokens.
var bearerTokens = []string{
	"AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA",
	"AAAAAAAAAAAAAAAAAAAAAFQODgEAAAAAVHTp76lzh3rFzcHbmHVvQxYYpTw%3DckAlMINMjmCwxUcaXbAN4XqJVdgMJaHqNOFgPMK0zN1qLqLQCF",
}

// BearerToken is the active bearer token (first in list).
var BearerToken = bearerTokens[0]

// Endpoint is a v1.1 REST operation. Path may hold one %d verb for an ID.
type Endpoint struct {
	Name     string
	Path     string
	MaxCount int // per-call result cap, 0 if the endpoint is not a listing
}

// Endpoints maps operation names to their REST paths. The names double as
// rate-limit buckets.
var Endpoints = map[string]Endpoint{
	"StatusShow":     {Name: "StatusShow", Path: "/1.1/statuses/show.json"},
	"Retweets":       {Name: "Retweets", Path: "/1.1/statuses/retweets/%d.json", MaxCount: 100},
	"FriendshipShow": {Name: "FriendshipShow", Path: "/1.1/friendships/show.json"},
	"UserShow":       {Name: "UserShow", Path: "/1.1/users/show.json"},
}

// EndpointURL builds the full URL for an operation. id fills the path's %d
// verb when the endpoint has one.
func EndpointURL(operation string, id int64, query url.Values) (string, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return "", fmt.Errorf("unknown operation: %s", operation)
	}
	path := ep.Path
	if strings.Contains(path, "%d") {
		path = fmt.Sprintf(path, id)
	}
	u := twitterAPIURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}
