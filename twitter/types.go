package twitter

import (
	"time"

	"github.com/anatolykoptev/go-cascade/cascade"
)

// User represents a Twitter/X account profile as returned by the v1.1 API.
type User struct {
	ID          int64
	Handle      string
	DisplayName string
	Followers   int
	Following   int
	TweetCount  int
	CreatedAt   time.Time
	IsVerified  bool
	IsProtected bool
}

// Status is a single tweet. Retweets carry the ID of the tweet they reshare.
type Status struct {
	ID                int64
	Text              string
	CreatedAt         time.Time
	User              User
	RetweetCount      int
	RetweetedStatusID int64
}

// Tweet converts s into the record the cascade builder consumes.
func (s *Status) Tweet() cascade.Tweet {
	return cascade.Tweet{
		ID:              s.ID,
		Text:            s.Text,
		Author:          s.User.Handle,
		AuthorID:        s.User.ID,
		AuthorFollowers: s.User.Followers,
	}
}

// Friendship is the directed relationship between a source and a target user.
type Friendship struct {
	SourceFollowsTarget bool
	TargetFollowsSource bool
}
