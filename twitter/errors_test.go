package twitter

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/anatolykoptev/go-cascade/cascade"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected errorClass
	}{
		{"no errors", `{"id_str":"1"}`, errNone},
		{"empty errors", `{"errors":[]}`, errNone},
		{"banned 88", `{"errors":[{"code":88}]}`, errBanned},
		{"suspended 64", `{"errors":[{"code":64}]}`, errSuspended},
		{"locked 326", `{"errors":[{"code":326}]}`, errLocked},
		{"csrf 353", `{"errors":[{"code":353}]}`, errCSRF},
		{"auth expired 32", `{"errors":[{"code":32}]}`, errAuthExpired},
		{"invalid token 89", `{"errors":[{"code":89}]}`, errAuthExpired},
		{"blocked 161", `{"errors":[{"code":161}]}`, errBlocked},
		{"not authorized 219", `{"errors":[{"code":219}]}`, errNotAuthorized},
		{"internal 131", `{"errors":[{"code":131}]}`, errInternal},
		{"no status 144", `{"errors":[{"code":144,"message":"No status found with that ID."}]}`, errNotFound},
		{"user not found 50", `{"errors":[{"code":50}]}`, errNotFound},
		{"protected 179", `{"errors":[{"code":179}]}`, errNotVisible},
		{"unknown code", `{"errors":[{"code":999}]}`, errNone},
		{"invalid json", `{invalid`, errNone},
		{"array body", `[{"id_str":"1"}]`, errNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyError([]byte(tt.body))
			if result != tt.expected {
				t.Fatalf("classifyError(%s) = %d, want %d", tt.body, result, tt.expected)
			}
		})
	}
}

func TestParseRateLimitReset(t *testing.T) {
	ts := time.Now().Add(3 * time.Minute).Unix()
	result := parseRateLimitReset(strconv.FormatInt(ts, 10))
	if result.Unix() != ts {
		t.Fatalf("expected %d, got %d", ts, result.Unix())
	}

	result = parseRateLimitReset("")
	if time.Until(result) < 14*time.Minute {
		t.Fatal("expected ~15min fallback for missing header")
	}

	result = parseRateLimitReset("not-a-number")
	if time.Until(result) < 14*time.Minute {
		t.Fatal("expected ~15min fallback for invalid input")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("connection reset")
	err := transportError("Retweets", cause)
	if !errors.Is(err, cascade.ErrTransport) || !errors.Is(err, cause) {
		t.Fatalf("transportError lost its chain: %v", err)
	}
	if errors.Is(err, cascade.ErrData) {
		t.Fatal("transport error must not match ErrData")
	}

	err = dataError("StatusShow", cause)
	if !errors.Is(err, cascade.ErrData) {
		t.Fatalf("dataError lost its chain: %v", err)
	}
}
