package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type stubSolver struct {
	token string
	err   error
}

func (s stubSolver) Solve(context.Context, string, string) (string, error) {
	return s.token, s.err
}

func TestLoginInput(t *testing.T) {
	acc := &Account{Username: "alice", Password: "pw", TOTPSecret: "JBSWY3DPEHPK3PXP"}
	c := &Client{cfg: ClientConfig{CaptchaSolver: stubSolver{token: "solved"}}}

	tests := []struct {
		subtask  string
		more     bool
		contains string
	}{
		{"LoginJsInstrumentationSubtask", true, `"js_instrumentation"`},
		{"LoginEnterUserIdentifierSSO", true, `"result":"alice"`},
		{"LoginEnterPassword", true, `"password":"pw"`},
		{"LoginArkoseCaptcha", true, `access_token=solved`},
		{"LoginTwoFactorAuthChallenge", true, `"enter_text"`},
		{"LoginEnterAlternateIdentifierSubtask", true, `"text":"alice"`},
		{"SomethingNew", true, `"action_list"`},
		{"LoginSuccessSubtask", false, ""},
		{"AccountDuplicationCheck", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.subtask, func(t *testing.T) {
			in, more, err := c.loginInput(context.Background(), acc, tt.subtask)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if more != tt.more {
				t.Fatalf("more = %v, want %v", more, tt.more)
			}
			data, err := json.Marshal(in)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), tt.contains) {
				t.Fatalf("payload %s does not contain %s", data, tt.contains)
			}
		})
	}
}

func TestLoginInputTOTPCode(t *testing.T) {
	acc := &Account{Username: "alice", TOTPSecret: "JBSWY3DPEHPK3PXP"}
	in, _, err := (&Client{}).loginInput(context.Background(), acc, "LoginTwoFactorAuthChallenge")
	if err != nil {
		t.Fatal(err)
	}
	code, _ := in.EnterText["text"].(string)
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
}

func TestLoginInputFailures(t *testing.T) {
	acc := &Account{Username: "alice"}
	tests := []struct {
		name    string
		solver  CaptchaSolver
		subtask string
	}{
		{"denied", nil, "DenyLoginSubtask"},
		{"captcha without solver", nil, "LoginArkoseChallenge"},
		{"captcha solver error", stubSolver{err: errors.New("boom")}, "LoginEnterRecaptcha"},
		{"2fa without secret", nil, "LoginTwoFactorAuthChallenge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{cfg: ClientConfig{CaptchaSolver: tt.solver}}
			if _, _, err := c.loginInput(context.Background(), acc, tt.subtask); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseFlowResponse(t *testing.T) {
	fr, err := parseFlowResponse([]byte(`{"flow_token":"ft","subtasks":[{"subtask_id":"LoginEnterPassword"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if fr.FlowToken != "ft" || fr.next() != "LoginEnterPassword" {
		t.Fatalf("unexpected %+v", fr)
	}
	if _, err := parseFlowResponse([]byte(`{"subtasks":[]}`)); err == nil {
		t.Fatal("expected error for empty flow_token")
	}
	if (&flowResponse{FlowToken: "x"}).next() != "" {
		t.Fatal("finished flow has no next subtask")
	}
}
