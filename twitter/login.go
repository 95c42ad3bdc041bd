package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/pquerna/otp/totp"
)

// arkosePublicKey is Twitter's FunCaptcha public key for login flows.
const arkosePublicKey = "0152B4EB-D2DC-460A-89A1-629838B529C9"

const (
	onboardingURL  = twitterAPIURL + "/1.1/onboarding/task.json"
	guestTokenURL  = twitterAPIURL + "/1.1/guest/activate.json"
	maxLoginRounds = 10
	loginTimeout   = 3 * time.Minute
)

type flowResponse struct {
	FlowToken string `json:"flow_token"`
	Subtasks  []struct {
		SubtaskID string `json:"subtask_id"`
	} `json:"subtasks"`
}

// next returns the first pending subtask, or "" when the flow is finished.
func (fr *flowResponse) next() string {
	if len(fr.Subtasks) == 0 {
		return ""
	}
	return fr.Subtasks[0].SubtaskID
}

func parseFlowResponse(body []byte) (*flowResponse, error) {
	var fr flowResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("parse flow response: %w", err)
	}
	if fr.FlowToken == "" {
		return nil, fmt.Errorf("empty flow_token in response: %s", truncateBytes(body, 200))
	}
	return &fr, nil
}

// subtaskInput is one entry of subtask_inputs. Exactly one of the payload
// fields is set, matching the subtask kind.
type subtaskInput struct {
	SubtaskID         string         `json:"subtask_id"`
	SettingsList      map[string]any `json:"settings_list,omitempty"`
	EnterPassword     map[string]any `json:"enter_password,omitempty"`
	EnterText         map[string]any `json:"enter_text,omitempty"`
	JSInstrumentation map[string]any `json:"js_instrumentation,omitempty"`
	WebModal          map[string]any `json:"web_modal,omitempty"`
	ActionList        map[string]any `json:"action_list,omitempty"`
}

// loginInput builds the answer to subtask for acc. It reports false for
// terminal subtasks.
func (c *Client) loginInput(ctx context.Context, acc *Account, subtask string) (subtaskInput, bool, error) {
	in := subtaskInput{SubtaskID: subtask}
	switch subtask {
	case "LoginSuccessSubtask", "AccountDuplicationCheck":
		return in, false, nil

	case "DenyLoginSubtask":
		return in, false, fmt.Errorf("login denied for %s (account may be locked or disabled)", acc.Username)

	case "LoginJsInstrumentationSubtask":
		in.JSInstrumentation = map[string]any{"response": `{"rf":{"a":"b"},"s":"s"}`, "link": "next_link"}

	case "LoginEnterUserIdentifierSSO":
		in.SettingsList = map[string]any{
			"setting_responses": []map[string]any{{
				"key":           "user_identifier",
				"response_data": map[string]any{"text_data": map[string]string{"result": acc.Username}},
			}},
			"link": "next_link",
		}

	case "LoginEnterPassword":
		in.EnterPassword = map[string]any{"password": acc.Password, "link": "next_link"}

	case "LoginArkoseChallenge", "LoginArkoseCaptcha", "LoginEnterRecaptcha":
		if c.cfg.CaptchaSolver == nil {
			return in, false, fmt.Errorf("CAPTCHA required but no solver configured for %s", acc.Username)
		}
		token, err := c.cfg.CaptchaSolver.Solve(ctx, arkosePublicKey, "https://twitter.com")
		if err != nil {
			return in, false, fmt.Errorf("CAPTCHA solve failed for %s: %w", acc.Username, err)
		}
		slog.Info("CAPTCHA solved for login", slog.String("user", acc.Username))
		in.SubtaskID = "LoginArkoseChallenge"
		in.WebModal = map[string]any{"completion_deeplink": "twitter://onboarding/web_modal/next_link?access_token=" + token}

	case "LoginTwoFactorAuthChallenge":
		if acc.TOTPSecret == "" {
			return in, false, fmt.Errorf("2FA required but no TOTP secret for %s", acc.Username)
		}
		code, err := totp.GenerateCode(acc.TOTPSecret, time.Now())
		if err != nil {
			return in, false, fmt.Errorf("TOTP code generation failed for %s: %w", acc.Username, err)
		}
		slog.Info("submitting TOTP code", slog.String("user", acc.Username))
		in.EnterText = map[string]any{"text": code, "link": "next_link"}

	case "LoginEnterAlternateIdentifierSubtask":
		in.EnterText = map[string]any{"text": acc.Username, "link": "next_link"}

	default:
		slog.Warn("unknown login subtask, skipping", slog.String("user", acc.Username), slog.String("subtask", subtask))
		in.ActionList = map[string]any{"link": "next_link"}
	}
	return in, true, nil
}

// login performs Twitter's multi-step onboarding flow and stores the
// resulting auth_token and ct0 on acc.
func (c *Client) login(acc *Account, bc *stealth.BrowserClient) error {
	slog.Info("logging in", slog.String("user", acc.Username))

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	guestToken, err := getGuestToken(bc)
	if err != nil {
		return fmt.Errorf("get guest token: %w", err)
	}

	fr, err := postFlow(bc, guestToken, onboardingURL+"?flow_name=login", loginFlowInit)
	if err != nil {
		return fmt.Errorf("init login flow: %w", err)
	}

	for range maxLoginRounds {
		subtask := fr.next()
		if subtask == "" {
			break
		}
		slog.Debug("login subtask", slog.String("user", acc.Username), slog.String("subtask", subtask))

		in, more, err := c.loginInput(ctx, acc, subtask)
		if err != nil {
			return err
		}
		if !more {
			slog.Debug("login flow complete", slog.String("user", acc.Username), slog.String("terminal", subtask))
			break
		}
		fr, err = postFlow(bc, guestToken, onboardingURL, map[string]any{
			"flow_token":     fr.FlowToken,
			"subtask_inputs": []subtaskInput{in},
		})
		if err != nil {
			return fmt.Errorf("login subtask %s for %s: %w", subtask, acc.Username, err)
		}
	}

	authToken := sessionCookie(bc, "auth_token")
	if authToken == "" {
		return fmt.Errorf("login completed but no auth_token in cookies for %s", acc.Username)
	}
	ct0 := sessionCookie(bc, "ct0")
	if ct0 == "" {
		ct0 = GenerateCT0()
	}

	acc.SetCredentials(authToken, ct0)
	slog.Info("login successful", slog.String("user", acc.Username))
	return nil
}

func sessionCookie(bc *stealth.BrowserClient, name string) string {
	if v := bc.GetCookieValue("https://api.twitter.com", name); v != "" {
		return v
	}
	return bc.GetCookieValue("https://twitter.com", name)
}

func postFlow(bc *stealth.BrowserClient, guestToken, url string, payload any) (*flowResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode flow payload: %w", err)
	}
	body, _, status, err := bc.DoWithHeaderOrder("POST", url, loginFlowHeaders(guestToken), bytes.NewReader(data), twitterHeaderOrder)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("flow step HTTP %d: %s", status, truncateBytes(body, 300))
	}
	return parseFlowResponse(body)
}

// getGuestToken activates a guest token for the login flow.
func getGuestToken(bc *stealth.BrowserClient) (string, error) {
	headers := map[string]string{
		"authorization": "Bearer " + BearerToken,
		"content-type":  "application/json",
		"user-agent":    defaultUserAgent,
	}
	body, _, status, err := bc.DoWithHeaderOrder("POST", guestTokenURL, headers, nil, twitterHeaderOrder)
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("guest token: HTTP %d", status)
	}
	var resp struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if resp.GuestToken == "" {
		return "", fmt.Errorf("empty guest token in response")
	}
	return resp.GuestToken, nil
}

// loginFlowInit is the body that opens flow_name=login.
var loginFlowInit = json.RawMessage(`{"input_flow_data":{"flow_context":{"debug_overrides":{},"start_location":{"location":"splash_screen"}}},"subtask_versions":{"action_list":2,"alert_dialog":1,"app_download_cta":1,"check_logged_in_account":1,"choice_selection":3,"contacts_live_sync_permission_prompt":0,"cta":7,"email_verification":2,"end_flow":1,"enter_date":1,"enter_email":2,"enter_password":5,"enter_phone":2,"enter_recaptcha":1,"enter_text":5,"enter_username":2,"generic_urt":3,"in_app_notification":1,"interest_picker":3,"js_instrumentation":1,"menu_dialog":1,"notifications_permission_prompt":2,"open_account":2,"open_home_timeline":1,"open_link":1,"phone_verification":4,"privacy_options":1,"security_key":3,"select_avatar":4,"select_banner":2,"settings_list":7,"show_code":1,"sign_up":2,"sign_up_review":4,"tweet_selection_urt":1,"update_users":1,"upload_media":1,"user_recommendations_list":4,"user_recommendations_urt":1,"wait_spinner":3,"web_modal":1}}`)
