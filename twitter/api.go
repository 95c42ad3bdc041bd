package twitter

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/anatolykoptev/go-cascade/cascade"
)

var (
	_ cascade.RetweetSource = (*Client)(nil)
	_ cascade.FollowOracle  = (*Client)(nil)
)

// get fetches operation and files the failure under the cascade taxonomy:
// missing or hidden objects are data errors, everything else is transport.
func (c *Client) get(ctx context.Context, operation string, id int64, query url.Values) ([]byte, error) {
	u, err := EndpointURL(operation, id, query)
	if err != nil {
		return nil, err
	}
	body, err := c.doGET(ctx, operation, u)
	switch {
	case err == nil:
		return body, nil
	case errors.Is(err, errResource):
		return nil, dataError(operation, err)
	default:
		return nil, transportError(operation, err)
	}
}

// GetTweet fetches a single status by ID.
func (c *Client) GetTweet(ctx context.Context, id int64) (*Status, error) {
	body, err := c.get(ctx, "StatusShow", 0, url.Values{
		"id":         {strconv.FormatInt(id, 10)},
		"tweet_mode": {"extended"},
	})
	if err != nil {
		return nil, err
	}
	st, err := parseStatus(body)
	if err != nil {
		return nil, dataError("StatusShow", err)
	}
	return st, nil
}

// GetUser fetches a user profile by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	body, err := c.get(ctx, "UserShow", 0, url.Values{"user_id": {strconv.FormatInt(id, 10)}})
	if err != nil {
		return nil, err
	}
	u, err := parseUser(body)
	if err != nil {
		return nil, dataError("UserShow", err)
	}
	return u, nil
}

// Retweets returns the retweets of tweetID, newest first, up to
// RetweetsPerCall of them.
func (c *Client) Retweets(ctx context.Context, tweetID int64) ([]cascade.Tweet, error) {
	body, err := c.get(ctx, "Retweets", tweetID, url.Values{
		"count":      {strconv.Itoa(c.cfg.RetweetsPerCall)},
		"tweet_mode": {"extended"},
	})
	if err != nil {
		return nil, err
	}
	statuses, err := parseRetweets(body)
	if err != nil {
		return nil, dataError("Retweets", err)
	}
	tweets := make([]cascade.Tweet, 0, len(statuses))
	for _, st := range statuses {
		tweets = append(tweets, st.Tweet())
	}
	return tweets, nil
}

// Retweeters returns the distinct users who retweeted tweetID together
// with their follower counts, ready for edge inference.
func (c *Client) Retweeters(ctx context.Context, tweetID int64) ([]cascade.Retweeter, error) {
	tweets, err := c.Retweets(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	return cascade.RetweetersOf(tweets), nil
}

// Follows reports the follow relationship between users a and b in both
// directions.
func (c *Client) Follows(ctx context.Context, a, b int64) (aFollowsB, bFollowsA bool, err error) {
	body, err := c.get(ctx, "FriendshipShow", 0, url.Values{
		"source_id": {strconv.FormatInt(a, 10)},
		"target_id": {strconv.FormatInt(b, 10)},
	})
	if err != nil {
		return false, false, err
	}
	f, err := parseFriendship(body)
	if err != nil {
		return false, false, dataError("FriendshipShow", err)
	}
	return f.SourceFollowsTarget, f.TargetFollowsSource, nil
}
