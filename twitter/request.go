package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

const maxRetries = 3

// errResource is returned by doGET when the API reports the requested object
// as missing or invisible. Callers turn it into a data error.
var errResource = errors.New("resource unavailable")

// doGET executes a GET request with multi-account retry, ct0 rotation and
// relogin. Account-level failures move on to the next attempt; resource
// errors (not found, protected) return at once wrapping errResource.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, error) {
	// Anti-fingerprint jitter
	if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			select {
			case <-time.After(stealth.DefaultBackoff.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		acc, err := c.pool.NextWithWait(ctx, func(a *Account) bool {
			return a.AllowRequest(endpoint) && a.proxyReady()
		}, c.cfg.AccountWait)
		if err != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("pool exhausted for %s: %w", endpoint, lastErr)
			}
			return nil, fmt.Errorf("no account available for %s: %w", endpoint, err)
		}

		if acc.CT0Age() > ct0MaxAge {
			acc.RotateCT0()
			slog.Info("ct0 rotated (proactive)", slog.String("user", acc.Username))
			c.persist(acc)
		}

		authTok, ct0, ua := acc.Credentials()
		body, respHdrs, status, err := c.clientForAccount(acc).DoWithHeaderOrder("GET", url, apiHeaders(authTok, ct0, ua), nil, twitterHeaderOrder)
		if err != nil {
			c.requestFailed(acc, err)
			lastErr = err
			continue
		}
		acc.proxyRecovered()

		if status == 429 {
			c.recordAPICall(endpoint, false, true)
			acc.MarkEndpointRateLimited(endpoint, parseRateLimitReset(respHdrs["x-rate-limit-reset"]))
			lastErr = fmt.Errorf("429 rate limited")
			continue
		}

		class := classifyError(body)
		switch {
		case status == 200 && class == errNone,
			status == 200 && class == errInternal && hasResponseData(body):
			if newCT0 := extractCT0FromHeaders(respHdrs); newCT0 != "" && newCT0 != ct0 {
				acc.SetCT0(newCT0)
				c.persist(acc)
			}
			c.recordAPICall(endpoint, true, false)
			acc.RecordSuccess()
			return body, nil

		case status == 404 || class.isResourceError():
			// The account is fine; the object is not there for anyone.
			c.recordAPICall(endpoint, false, false)
			acc.RecordSuccess()
			return nil, fmt.Errorf("%s HTTP %d: %s: %w", endpoint, status, truncateBytes(body, 200), errResource)
		}

		c.recordAPICall(endpoint, false, false)
		lastErr = c.handleAccountError(acc, endpoint, status, class, body)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%s failed after %d attempts: %w", endpoint, maxRetries, lastErr)
	}
	return nil, fmt.Errorf("%s failed after %d attempts", endpoint, maxRetries)
}

// handleAccountError reacts to a failed response on acc (rotating ct0,
// relogging, or taking the account out of rotation) and returns the error
// to report if no later attempt succeeds.
func (c *Client) handleAccountError(acc *Account, endpoint string, status int, class errorClass, body []byte) error {
	switch class {
	case errCSRF:
		slog.Warn("CSRF error 353, rotating ct0", slog.String("user", acc.Username))
		acc.RotateCT0()
		c.persist(acc)
		return fmt.Errorf("CSRF token rejected")

	case errAuthExpired:
		slog.Warn("auth expired, attempting relogin", slog.String("user", acc.Username))
		if err := c.relogin(acc); err != nil {
			slog.Warn("relogin failed, soft-deactivating", slog.String("user", acc.Username), slog.Any("error", err))
			c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
			return err
		}
		return fmt.Errorf("auth expired for %s", acc.Username)

	case errInternal:
		slog.Warn("error 131 without data, retrying", slog.String("user", acc.Username), slog.String("endpoint", endpoint))
		return fmt.Errorf("Twitter internal error (131)")

	case errBanned:
		slog.Warn("account banned (code 88)", slog.String("user", acc.Username))
		c.pool.SoftDeactivate(acc, c.cfg.BanCooldown)
		return fmt.Errorf("account banned")

	case errSuspended:
		slog.Warn("account suspended (code 64), permanently deactivating", slog.String("user", acc.Username))
		c.pool.DeactivateItem(acc)
		return fmt.Errorf("account suspended")

	case errLocked:
		slog.Warn("account locked (code 326, captcha needed)", slog.String("user", acc.Username))
		if c.cfg.CaptchaSolver != nil {
			err := c.relogin(acc)
			if err == nil {
				slog.Info("CAPTCHA unlock succeeded", slog.String("user", acc.Username))
				return fmt.Errorf("account %s was locked", acc.Username)
			}
			slog.Warn("CAPTCHA unlock failed", slog.String("user", acc.Username), slog.Any("error", err))
		}
		c.pool.SoftDeactivate(acc, c.cfg.BanCooldown)
		return fmt.Errorf("account locked")

	case errBlocked, errNotAuthorized:
		slog.Warn("account error", slog.String("user", acc.Username), slog.Int("class", int(class)))
		c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
		return fmt.Errorf("account error class %d", class)
	}

	slog.Warn("doGET non-200", slog.String("endpoint", endpoint), slog.Int("status", status), slog.String("body", truncateBytes(body, 500)))
	if acc.RecordFailure() {
		total, failed, consec := acc.Stats()
		slog.Warn("account unhealthy, deactivating",
			slog.String("user", acc.Username),
			slog.Int("total", total),
			slog.Int("failed", failed),
			slog.Int("consec", consec))
		c.pool.DeactivateItem(acc)
	}
	return fmt.Errorf("%s HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
}

// requestFailed accounts a transport-level failure to acc or its proxy.
func (c *Client) requestFailed(acc *Account, err error) {
	if acc.Proxy == "" || !isProxyError(err) {
		acc.RecordFailure()
		return
	}
	fails, d := acc.proxyFailed(func(fails int) time.Duration {
		return stealth.BackoffConfig{
			InitialWait: c.cfg.ProxyBackoffInitial,
			MaxWait:     c.cfg.ProxyBackoffMax,
			Multiplier:  2.0,
			JitterPct:   0.3,
		}.Duration(fails - 1)
	})
	slog.Warn("proxy down, backing off",
		slog.String("user", acc.Username),
		slog.String("proxy", stealth.MaskProxy(acc.Proxy)),
		slog.Int("consec_fails", fails),
		slog.Duration("backoff", d))
}

// persist saves acc's current credentials, logging rather than failing.
func (c *Client) persist(acc *Account) {
	authTok, ct0, _ := acc.Credentials()
	if err := saveSession(c.cfg.SessionDir, acc.Username, authTok, ct0); err != nil {
		slog.Warn("session save failed", slog.String("user", acc.Username), slog.Any("error", err))
	}
}

// isProxyError returns true if the error looks like a proxy connectivity failure.
func isProxyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"proxy", "SOCKS", "tunnel", "connection refused", "no such host"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasResponseData reports whether a body with error 131 still carries a
// usable payload: any JSON array, or an object with fields besides "errors".
func hasResponseData(body []byte) bool {
	var arr []json.RawMessage
	if json.Unmarshal(body, &arr) == nil {
		return true
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) != nil {
		return false
	}
	delete(obj, "errors")
	return len(obj) > 0
}
