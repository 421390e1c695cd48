package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sources reported by Load.
const (
	SourceEnv     = "env"
	SourceState   = "state"
	SourceMissing = "missing"
)

const defaultHomeDir = ".google-ads-mcp"

// Credentials holds persisted OAuth material.
type Credentials struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// HomeDir returns the server home: ADS_MCP_HOME, or ~/.google-ads-mcp.
func HomeDir() string {
	if v := strings.TrimSpace(os.Getenv("ADS_MCP_HOME")); v != "" {
		return v
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, defaultHomeDir)
	}
	return defaultHomeDir
}

// Load returns credentials and their source: "env", "state", or "missing".
func Load(home string) (Credentials, string, error) {
	if home == "" {
		home = HomeDir()
	}

	if tok := strings.TrimSpace(os.Getenv("GOOGLE_ADS_REFRESH_TOKEN")); tok != "" {
		return Credentials{RefreshToken: tok}, SourceEnv, nil
	}

	raw, err := os.ReadFile(Path(home))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, SourceMissing, nil
		}
		return Credentials{}, "", err
	}

	var c Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credentials{}, "", fmt.Errorf("decode %s: %w", Path(home), err)
	}

	if c.RefreshToken != "" {
		return c, SourceState, nil
	}
	return Credentials{}, SourceMissing, nil
}

// PutRefreshToken writes the token atomically with 0600 permissions.
func PutRefreshToken(home, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("refresh token empty")
	}
	if home == "" {
		home = HomeDir()
	}

	dir := filepath.Join(home, "state")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	path := Path(home)
	tmp := path + ".tmp"

	enc, err := json.Marshal(Credentials{RefreshToken: token})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(enc); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	// best-effort fsync on directory
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Delete removes the stored credentials.
func Delete(home string) error {
	if home == "" {
		home = HomeDir()
	}
	if err := os.Remove(Path(home)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path is the credentials file location under home.
func Path(home string) string {
	return filepath.Join(home, "state", "credentials.json")
}

// Mask renders a secret as its first and last four characters.
func Mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + "…" + secret[len(secret)-4:]
}
