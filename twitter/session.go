package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// sessionDir returns the directory for persisting session cookies.
func sessionDir(override string) string {
	if override != "" {
		return override
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".go-cascade", "sessions")
}

func sessionPath(dir, username string) string {
	return filepath.Join(dir, username+".json")
}

type savedSession struct {
	AuthToken string    `json:"auth_token"`
	CT0       string    `json:"ct0"`
	SavedAt   time.Time `json:"saved_at"`
}

// saveSession persists auth_token and ct0 to disk.
func saveSession(dir, username, authToken, ct0 string) error {
	d := sessionDir(dir)
	if err := os.MkdirAll(d, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(savedSession{AuthToken: authToken, CT0: ct0, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	path := sessionPath(d, username)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", path, err)
	}
	slog.Debug("session saved", slog.String("user", username))
	return nil
}

// loadSession returns the persisted credentials for username. A missing or
// expired session yields empty strings and no error.
func loadSession(dir, username string, ttl time.Duration) (authToken, ct0 string, err error) {
	data, err := os.ReadFile(sessionPath(sessionDir(dir), username))
	if errors.Is(err, os.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", "", fmt.Errorf("decode session %s: %w", username, err)
	}
	if time.Since(s.SavedAt) > ttl {
		slog.Debug("session expired", slog.String("user", username))
		return "", "", nil
	}
	return s.AuthToken, s.CT0, nil
}

// relogin drops acc's session and logs in again from scratch.
func (c *Client) relogin(acc *Account) error {
	slog.Info("attempting relogin", slog.String("user", acc.Username))

	acc.SetCredentials("", "")
	_ = os.Remove(sessionPath(sessionDir(c.cfg.SessionDir), acc.Username))

	if err := c.loadOrLogin(acc, c.clientForAccount(acc)); err != nil {
		return fmt.Errorf("relogin %s: %w", acc.Username, err)
	}

	acc.Reset()
	slog.Info("relogin succeeded", slog.String("user", acc.Username))
	return nil
}

// loadOrLogin prefers a persisted session, then credentials supplied with
// the account, and only then the password login flow.
func (c *Client) loadOrLogin(acc *Account, bc *stealth.BrowserClient) error {
	authToken, ct0, err := loadSession(c.cfg.SessionDir, acc.Username, c.cfg.SessionTTL)
	if err != nil {
		slog.Warn("error loading session", slog.String("user", acc.Username), slog.Any("error", err))
	}
	if authToken != "" && ct0 != "" {
		acc.SetCredentials(authToken, ct0)
		slog.Info("loaded session from disk", slog.String("user", acc.Username))
		return nil
	}

	if authToken, ct0, _ := acc.Credentials(); authToken != "" && ct0 != "" {
		acc.SetCredentials(authToken, ct0)
		slog.Info("using provided credentials", slog.String("user", acc.Username))
		c.persist(acc)
		return nil
	}

	if acc.Password == "" {
		return fmt.Errorf("no session and no password for account %s", acc.Username)
	}
	if err := c.login(acc, bc); err != nil {
		return fmt.Errorf("login failed for %s: %w", acc.Username, err)
	}
	c.persist(acc)
	return nil
}
