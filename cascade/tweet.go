// Package cascade builds retweet cascades, renders them as graphs and infers
// follower-based propagation trees.
package cascade

import (
	"context"
	"errors"
)

// ErrTransport marks failures talking to the platform: network, auth, or
// rate-limit exhaustion.
var ErrTransport = errors.New("cascade: transport error")

// ErrData marks malformed or missing fields in a platform response.
var ErrData = errors.New("cascade: data error")

// Tweet is a tweet as returned by a RetweetSource.
type Tweet struct {
	ID              int64
	Text            string
	Author          string // handle, without the leading @
	AuthorID        int64
	AuthorFollowers int
}

// Retweeter is one user who retweeted the root, as fed to the Inferrer.
type Retweeter struct {
	UserID    int64
	Followers int
}

// Edge is an inferred parent assignment. Parent is the user the retweeter
// follows through which the tweet most plausibly reached them.
type Edge struct {
	UserID    int64
	Parent    int64
	Followers int64
}

// RetweetSource lists the direct retweets of a tweet.
type RetweetSource interface {
	Retweets(ctx context.Context, tweetID int64) ([]Tweet, error)
}

// SourceFunc adapts a plain function to RetweetSource.
type SourceFunc func(ctx context.Context, tweetID int64) ([]Tweet, error)

// Retweets implements RetweetSource.
func (f SourceFunc) Retweets(ctx context.Context, tweetID int64) ([]Tweet, error) {
	return f(ctx, tweetID)
}

// FollowOracle answers pairwise follow checks. aFollowsB reports whether a
// follows b, bFollowsA the reverse.
type FollowOracle interface {
	Follows(ctx context.Context, a, b int64) (aFollowsB, bFollowsA bool, err error)
}

// OracleFunc adapts a plain function to FollowOracle.
type OracleFunc func(ctx context.Context, a, b int64) (bool, bool, error)

// Follows implements FollowOracle.
func (f OracleFunc) Follows(ctx context.Context, a, b int64) (bool, bool, error) {
	return f(ctx, a, b)
}

// GraphSink receives nodes and edges and turns them into an artifact.
type GraphSink interface {
	// AddNode registers a node. An empty fill means no fill color.
	AddNode(key, label, fill string)
	AddEdge(from, to string)
	// RenderToFile writes the graph and returns the produced artifact's location.
	RenderToFile(ctx context.Context, path string) (string, error)
}

// RetweetersOf converts a list of retweets into inference input, keeping
// order and dropping repeated users.
func RetweetersOf(retweets []Tweet) []Retweeter {
	seen := make(map[int64]bool, len(retweets))
	out := make([]Retweeter, 0, len(retweets))
	for _, rt := range retweets {
		if seen[rt.AuthorID] {
			continue
		}
		seen[rt.AuthorID] = true
		out = append(out, Retweeter{UserID: rt.AuthorID, Followers: rt.AuthorFollowers})
	}
	return out
}
