// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adsops/google-ads-mcp-server/internal/credentials"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
)

const (
	DefaultHTTPAddr   = ":8080"
	DefaultServerName = "google-ads-mcp-server"
)

// Config is the full runtime configuration.
type Config struct {
	DeveloperToken     string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	RefreshTokenSource string
	MCCID              string
	DefaultCustomerID  string

	APIVersion string
	BaseURL    string
	Timeout    time.Duration
	RetryMax   int

	DryRun          bool
	MaxBudgetChange float64

	HTTPAddr   string
	HTTPToken  string
	Allowlist  []*net.IPNet
	ServerName string
	Home       string
}

// Load builds a Config from the environment. The refresh token falls back to
// the credentials store under Home.
func Load() (Config, error) {
	cfg := Config{
		DeveloperToken:    env("GOOGLE_ADS_DEVELOPER_TOKEN"),
		ClientID:          env("GOOGLE_ADS_CLIENT_ID"),
		ClientSecret:      env("GOOGLE_ADS_CLIENT_SECRET"),
		MCCID:             strings.ReplaceAll(env("GOOGLE_ADS_MCC_ID"), "-", ""),
		DefaultCustomerID: strings.ReplaceAll(env("GOOGLE_ADS_DEFAULT_CUSTOMER_ID"), "-", ""),
		APIVersion:        envOr("GOOGLE_ADS_API_VERSION", googleads.DefaultAPIVersion),
		BaseURL:           envOr("GOOGLE_ADS_API_BASE_URL", googleads.DefaultBaseURL),
		Timeout:           60 * time.Second,
		RetryMax:          3,
		MaxBudgetChange:   mutate.DefaultMaxBudgetChange,
		HTTPAddr:          envOr("MCP_HTTP_ADDR", DefaultHTTPAddr),
		HTTPToken:         env("MCP_HTTP_TOKEN"),
		ServerName:        envOr("MCP_SERVER_NAME", DefaultServerName),
		Home:              credentials.HomeDir(),
	}

	var errs []error
	if v := env("GOOGLE_ADS_DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("GOOGLE_ADS_DRY_RUN: %w", err))
		}
		cfg.DryRun = b
	}
	if v := env("GOOGLE_ADS_MAX_BUDGET_CHANGE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			errs = append(errs, fmt.Errorf("GOOGLE_ADS_MAX_BUDGET_CHANGE: must be a positive number, got %q", v))
		} else {
			cfg.MaxBudgetChange = f
		}
	}
	if v := env("GOOGLE_ADS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("GOOGLE_ADS_TIMEOUT: must be a positive duration, got %q", v))
		} else {
			cfg.Timeout = d
		}
	}
	if v := env("GOOGLE_ADS_RETRY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("GOOGLE_ADS_RETRY_MAX: must be a non-negative integer, got %q", v))
		} else {
			cfg.RetryMax = n
		}
	}
	allow, err := ParseAllowlist(env("MCP_HTTP_ALLOWLIST"))
	if err != nil {
		errs = append(errs, fmt.Errorf("MCP_HTTP_ALLOWLIST: %w", err))
	}
	cfg.Allowlist = allow

	creds, source, err := credentials.Load(cfg.Home)
	if err != nil {
		errs = append(errs, fmt.Errorf("credentials store: %w", err))
	}
	cfg.RefreshToken = creds.RefreshToken
	cfg.RefreshTokenSource = source

	return cfg, errors.Join(errs...)
}

// Validate reports every missing credential at once.
func (c Config) Validate() error {
	var missing []string
	if c.DeveloperToken == "" {
		missing = append(missing, "GOOGLE_ADS_DEVELOPER_TOKEN")
	}
	if c.ClientID == "" {
		missing = append(missing, "GOOGLE_ADS_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "GOOGLE_ADS_CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "GOOGLE_ADS_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GoogleAds maps the configuration onto the upstream client settings.
func (c Config) GoogleAds() googleads.Config {
	return googleads.Config{
		DeveloperToken:  c.DeveloperToken,
		ClientID:        c.ClientID,
		ClientSecret:    c.ClientSecret,
		RefreshToken:    c.RefreshToken,
		LoginCustomerID: c.MCCID,
		APIVersion:      c.APIVersion,
		BaseURL:         c.BaseURL,
		Timeout:         c.Timeout,
		RetryMax:        c.RetryMax,
	}
}

// ParseAllowlist parses a comma-separated list of CIDRs or bare IPs.
func ParseAllowlist(raw string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "/") {
			ip := net.ParseIP(part)
			if ip == nil {
				return nil, fmt.Errorf("invalid ip %q", part)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			part = fmt.Sprintf("%s/%d", part, bits)
		}
		_, n, err := net.ParseCIDR(part)
		if err != nil {
			return nil, fmt.Errorf("invalid cidr %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, fallback string) string {
	if v := env(key); v != "" {
		return v
	}
	return fallback
}
