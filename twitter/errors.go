package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-cascade/cascade"
)

// errorClass categorizes Twitter API error responses for targeted handling.
type errorClass int

const (
	errNone          errorClass = iota
	errBanned                   // 88: rate limit abuse
	errSuspended                // 64: account suspended
	errLocked                   // 326: account locked (captcha needed)
	errCSRF                     // 353: csrf token mismatch
	errAuthExpired              // 32, 89: could not authenticate / invalid token
	errBlocked                  // 161: blocked from performing action
	errNotAuthorized            // 219: not authorized
	errInternal                 // 131: Twitter internal error
	errNotFound                 // 34, 50, 63, 144: resource does not exist
	errNotVisible               // 179: protected status
)

// classifyError inspects a response body for known Twitter error codes.
func classifyError(body []byte) errorClass {
	var errResp struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return errNone
	}

	for _, e := range errResp.Errors {
		switch e.Code {
		case 88:
			return errBanned
		case 64:
			return errSuspended
		case 326:
			return errLocked
		case 353:
			return errCSRF
		case 32, 89:
			return errAuthExpired
		case 161:
			return errBlocked
		case 219:
			return errNotAuthorized
		case 131:
			return errInternal
		case 34, 50, 63, 144:
			return errNotFound
		case 179:
			return errNotVisible
		}
	}
	return errNone
}

// isResourceError reports whether the class describes the requested object
// rather than the account that asked for it.
func (c errorClass) isResourceError() bool {
	return c == errNotFound || c == errNotVisible
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

// transportError tags err as a cascade.ErrTransport failure of op.
func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(cascade.ErrTransport, err))
}

// dataError tags err as a cascade.ErrData failure of op.
func dataError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(cascade.ErrData, err))
}
