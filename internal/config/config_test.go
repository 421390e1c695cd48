package config

import (
	"strings"
	"testing"
	"time"

	"github.com/adsops/google-ads-mcp-server/internal/credentials"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOOGLE_ADS_DEVELOPER_TOKEN", "GOOGLE_ADS_CLIENT_ID", "GOOGLE_ADS_CLIENT_SECRET",
		"GOOGLE_ADS_REFRESH_TOKEN", "GOOGLE_ADS_MCC_ID", "GOOGLE_ADS_DEFAULT_CUSTOMER_ID",
		"GOOGLE_ADS_API_VERSION", "GOOGLE_ADS_API_BASE_URL", "GOOGLE_ADS_DRY_RUN",
		"GOOGLE_ADS_MAX_BUDGET_CHANGE", "GOOGLE_ADS_TIMEOUT", "GOOGLE_ADS_RETRY_MAX",
		"MCP_HTTP_ADDR", "MCP_HTTP_TOKEN", "MCP_HTTP_ALLOWLIST", "MCP_SERVER_NAME",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("ADS_MCP_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIVersion != "v19" || cfg.HTTPAddr != DefaultHTTPAddr || cfg.ServerName != DefaultServerName {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxBudgetChange != 1000 || cfg.RetryMax != 3 || cfg.Timeout != time.Minute {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
	if cfg.RefreshTokenSource != credentials.SourceMissing {
		t.Fatalf("source = %s", cfg.RefreshTokenSource)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_ADS_MCC_ID", "123-456-7890")
	t.Setenv("GOOGLE_ADS_DEFAULT_CUSTOMER_ID", "987-654-3210")
	t.Setenv("GOOGLE_ADS_DRY_RUN", "true")
	t.Setenv("GOOGLE_ADS_MAX_BUDGET_CHANGE", "250")
	t.Setenv("GOOGLE_ADS_TIMEOUT", "15s")
	t.Setenv("GOOGLE_ADS_RETRY_MAX", "0")
	t.Setenv("MCP_HTTP_ALLOWLIST", "10.0.0.0/8, 192.168.1.7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MCCID != "1234567890" || cfg.DefaultCustomerID != "9876543210" {
		t.Fatalf("ids not normalized: %+v", cfg)
	}
	if !cfg.DryRun || cfg.MaxBudgetChange != 250 || cfg.Timeout != 15*time.Second || cfg.RetryMax != 0 {
		t.Fatalf("unexpected parsed values: %+v", cfg)
	}
	if len(cfg.Allowlist) != 2 || cfg.Allowlist[1].String() != "192.168.1.7/32" {
		t.Fatalf("allowlist = %v", cfg.Allowlist)
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_ADS_DRY_RUN", "maybe")
	t.Setenv("GOOGLE_ADS_MAX_BUDGET_CHANGE", "-5")
	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"GOOGLE_ADS_DRY_RUN", "GOOGLE_ADS_MAX_BUDGET_CHANGE"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %s", err, want)
		}
	}
}

func TestRefreshTokenFromStore(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("ADS_MCP_HOME", home)
	if err := credentials.PutRefreshToken(home, "stored"); err != nil {
		t.Fatalf("put: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RefreshToken != "stored" || cfg.RefreshTokenSource != credentials.SourceState {
		t.Fatalf("got %q from %s", cfg.RefreshToken, cfg.RefreshTokenSource)
	}
}

func TestValidateListsAllMissing(t *testing.T) {
	err := Config{ClientID: "x"}.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"GOOGLE_ADS_DEVELOPER_TOKEN", "GOOGLE_ADS_CLIENT_SECRET", "GOOGLE_ADS_REFRESH_TOKEN"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("%q missing %s", msg, want)
		}
	}
	if strings.Contains(msg, "GOOGLE_ADS_CLIENT_ID") {
		t.Fatalf("client id is set but reported missing")
	}
	full := Config{DeveloperToken: "d", ClientID: "c", ClientSecret: "s", RefreshToken: "r"}
	if err := full.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseAllowlistInvalid(t *testing.T) {
	if _, err := ParseAllowlist("10.0.0.0/8,nope"); err == nil {
		t.Fatalf("expected error")
	}
	nets, err := ParseAllowlist(" ")
	if err != nil || len(nets) != 0 {
		t.Fatalf("empty allowlist: %v %v", nets, err)
	}
}
