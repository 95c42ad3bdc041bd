package twitter

import (
	"testing"
)

const sampleUser = `{
	"id_str": "12345",
	"name": " Test User ",
	"screen_name": "testuser",
	"followers_count": 100,
	"friends_count": 50,
	"statuses_count": 200,
	"created_at": "Mon Jan 02 15:04:05 +0000 2020",
	"verified": true,
	"protected": false
}`

func TestParseStatus(t *testing.T) {
	body := `{
		"id": 1265889240300257280,
		"id_str": "1265889240300257280",
		"text": "short",
		"full_text": "Hello world, the full text",
		"created_at": "Thu May 28 07:00:00 +0000 2020",
		"retweet_count": 42,
		"user": ` + sampleUser + `
	}`

	s, err := parseStatus([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if s.ID != 1265889240300257280 {
		t.Fatalf("expected ID 1265889240300257280, got %d", s.ID)
	}
	if s.Text != "Hello world, the full text" {
		t.Fatalf("expected full_text to win, got %q", s.Text)
	}
	if s.RetweetCount != 42 {
		t.Fatalf("expected 42 retweets, got %d", s.RetweetCount)
	}
	if s.CreatedAt.Year() != 2020 {
		t.Fatalf("expected 2020 created_at, got %v", s.CreatedAt)
	}

	tw := s.Tweet()
	if tw.Author != "testuser" || tw.AuthorID != 12345 || tw.AuthorFollowers != 100 {
		t.Fatalf("unexpected cascade tweet %+v", tw)
	}
}

func TestParseStatus_MissingUser(t *testing.T) {
	if _, err := parseStatus([]byte(`{"id_str":"1","text":"x"}`)); err == nil {
		t.Fatal("expected error for status without user")
	}
	if _, err := parseStatus([]byte(`{"text":"x","user":` + sampleUser + `}`)); err == nil {
		t.Fatal("expected error for status without id")
	}
}

func TestParseRetweets(t *testing.T) {
	body := `[
		{"id_str": "2", "text": "RT @root: hi", "user": {"id_str": "20", "screen_name": "alice", "followers_count": 5},
		 "retweeted_status": {"id_str": "1"}},
		{"id_str": "3", "text": "RT @root: hi", "user": {"id_str": "30", "screen_name": "bob", "followers_count": 7},
		 "retweeted_status": {"id_str": "1"}}
	]`

	rts, err := parseRetweets([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(rts) != 2 {
		t.Fatalf("expected 2 retweets, got %d", len(rts))
	}
	if rts[0].User.Handle != "alice" || rts[1].User.Followers != 7 {
		t.Fatalf("unexpected retweets %+v %+v", rts[0], rts[1])
	}
	if rts[0].RetweetedStatusID != 1 {
		t.Fatalf("expected retweeted status 1, got %d", rts[0].RetweetedStatusID)
	}
}

func TestParseRetweets_Empty(t *testing.T) {
	rts, err := parseRetweets([]byte(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(rts) != 0 {
		t.Fatalf("expected no retweets, got %d", len(rts))
	}
}

func TestParseRetweets_BadEntryFailsPage(t *testing.T) {
	body := `[{"id_str": "2", "user": {"id_str": "20", "screen_name": "alice"}}, {"id_str": "x", "user": {"id_str": "30", "screen_name": "bob"}}]`
	if _, err := parseRetweets([]byte(body)); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestParseFriendship(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Friendship
		wantErr bool
	}{
		{
			name: "one way",
			body: `{"relationship":{"source":{"id_str":"1","following":true,"followed_by":false},"target":{"id_str":"2","following":false,"followed_by":true}}}`,
			want: Friendship{SourceFollowsTarget: true},
		},
		{
			name: "mutual",
			body: `{"relationship":{"source":{"following":true,"followed_by":true}}}`,
			want: Friendship{SourceFollowsTarget: true, TargetFollowsSource: true},
		},
		{name: "missing relationship", body: `{}`, wantErr: true},
		{name: "missing flags", body: `{"relationship":{"source":{"id_str":"1"}}}`, wantErr: true},
		{name: "invalid json", body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFriendship([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseUser(t *testing.T) {
	u, err := parseUser([]byte(sampleUser))
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 12345 || u.Handle != "testuser" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.DisplayName != "Test User" {
		t.Fatalf("expected trimmed name, got %q", u.DisplayName)
	}
	if !u.IsVerified {
		t.Fatal("expected verified")
	}
}

func TestCT0(t *testing.T) {
	ct0 := GenerateCT0()
	if len(ct0) != 64 {
		t.Fatalf("expected 64 char hex, got %d chars", len(ct0))
	}
	if ct0 == GenerateCT0() {
		t.Fatal("expected different ct0 values")
	}
}

func TestExtractCT0FromHeaders(t *testing.T) {
	h := map[string]string{"set-cookie": "guest_id=v1; ct0=abc123; Path=/; Secure"}
	if got := extractCT0FromHeaders(h); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}
	if got := extractCT0FromHeaders(map[string]string{}); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
