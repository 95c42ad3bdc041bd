package twitter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const twitterTimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

type userObj struct {
	IDStr          string `json:"id_str"`
	Name           string `json:"name"`
	ScreenName     string `json:"screen_name"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
	StatusesCount  int    `json:"statuses_count"`
	CreatedAt      string `json:"created_at"`
	Verified       bool   `json:"verified"`
	Protected      bool   `json:"protected"`
}

type statusObj struct {
	IDStr           string     `json:"id_str"`
	Text            string     `json:"text"`
	FullText        string     `json:"full_text"`
	CreatedAt       string     `json:"created_at"`
	RetweetCount    int        `json:"retweet_count"`
	User            *userObj   `json:"user"`
	RetweetedStatus *statusObj `json:"retweeted_status"`
}

// parseStatus parses a statuses/show response.
func parseStatus(body []byte) (*Status, error) {
	var raw statusObj
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	return convertStatus(raw)
}

// parseRetweets parses a statuses/retweets response. Entries that cannot be
// converted fail the whole page: a retweet without an ID or author would
// corrupt the cascade.
func parseRetweets(body []byte) ([]*Status, error) {
	var raw []statusObj
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal retweets: %w", err)
	}
	out := make([]*Status, 0, len(raw))
	for i, r := range raw {
		s, err := convertStatus(r)
		if err != nil {
			return nil, fmt.Errorf("retweet %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseFriendship parses a friendships/show response.
func parseFriendship(body []byte) (Friendship, error) {
	var raw struct {
		Relationship *struct {
			Source struct {
				Following  *bool `json:"following"`
				FollowedBy *bool `json:"followed_by"`
			} `json:"source"`
		} `json:"relationship"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Friendship{}, fmt.Errorf("unmarshal friendship: %w", err)
	}
	if raw.Relationship == nil {
		return Friendship{}, fmt.Errorf("friendship: missing relationship")
	}
	src := raw.Relationship.Source
	if src.Following == nil || src.FollowedBy == nil {
		return Friendship{}, fmt.Errorf("friendship: missing following flags")
	}
	return Friendship{
		SourceFollowsTarget: *src.Following,
		TargetFollowsSource: *src.FollowedBy,
	}, nil
}

// parseUser parses a users/show response.
func parseUser(body []byte) (*User, error) {
	var raw userObj
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return convertUser(raw)
}

func convertStatus(r statusObj) (*Status, error) {
	id, err := parseID(r.IDStr)
	if err != nil {
		return nil, fmt.Errorf("status id: %w", err)
	}
	if r.User == nil {
		return nil, fmt.Errorf("status %d: missing user", id)
	}
	user, err := convertUser(*r.User)
	if err != nil {
		return nil, fmt.Errorf("status %d: %w", id, err)
	}

	text := r.FullText
	if text == "" {
		text = r.Text
	}
	s := &Status{
		ID:           id,
		Text:         text,
		CreatedAt:    parseTime(r.CreatedAt),
		User:         *user,
		RetweetCount: r.RetweetCount,
	}
	if r.RetweetedStatus != nil {
		if rid, err := parseID(r.RetweetedStatus.IDStr); err == nil {
			s.RetweetedStatusID = rid
		} else {
			slog.Debug("retweeted_status without usable id", slog.Int64("status", id), slog.Any("error", err))
		}
	}
	return s, nil
}

func convertUser(r userObj) (*User, error) {
	id, err := parseID(r.IDStr)
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	if r.ScreenName == "" {
		return nil, fmt.Errorf("user %d: empty screen_name", id)
	}
	return &User{
		ID:          id,
		Handle:      r.ScreenName,
		DisplayName: strings.TrimSpace(r.Name),
		Followers:   r.FollowersCount,
		Following:   r.FriendsCount,
		TweetCount:  r.StatusesCount,
		CreatedAt:   parseTime(r.CreatedAt),
		IsVerified:  r.Verified,
		IsProtected: r.Protected,
	}, nil
}

func parseID(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty id_str")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id_str %q: %w", s, err)
	}
	return id, nil
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(twitterTimeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
