package app

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/adsops/google-ads-mcp-server/internal/config"
	"github.com/adsops/google-ads-mcp-server/internal/metrics"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

func testConfig() config.Config {
	return config.Config{
		DeveloperToken:  "dev",
		ClientID:        "client",
		ClientSecret:    "secret",
		RefreshToken:    "refresh",
		MCCID:           "1112223333",
		BaseURL:         "http://127.0.0.1:1",
		MaxBudgetChange: 1000,
		ServerName:      "ads-test",
	}
}

func TestNewMCPServerRejectsMissingCredentials(t *testing.T) {
	_, err := NewMCPServer(config.Config{}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_ADS_DEVELOPER_TOKEN") {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestServerListsFullCatalog(t *testing.T) {
	srv, err := NewMCPServer(testConfig(), nil, metrics.NewMetrics("test"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	resp, err := srv.Handle(context.Background(), protocol.Request{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	if err != nil || resp.Error != nil {
		t.Fatalf("tools/list: %v %v", err, resp.Error)
	}
	list, ok := resp.Result.(protocol.ListResult)
	if !ok {
		t.Fatalf("unexpected result %T", resp.Result)
	}
	if len(list.Tools) != 36 {
		t.Fatalf("expected 36 tools, got %d", len(list.Tools))
	}
	if list.Tools[0].Name != "list_accounts" {
		t.Fatalf("first tool = %s", list.Tools[0].Name)
	}
	seen := map[string]bool{}
	for _, d := range list.Tools {
		if seen[d.Name] {
			t.Fatalf("duplicate tool %s", d.Name)
		}
		seen[d.Name] = true
		if d.InputSchema == nil || d.InputSchema.Type != "object" {
			t.Fatalf("%s: missing object schema", d.Name)
		}
	}
	for _, name := range []string{"get_geo_performance", "get_device_performance", "get_demographics", "get_ad_schedule", "get_audiences"} {
		if !seen[name] {
			t.Fatalf("missing analytics tool %s", name)
		}
	}

	initResp, _ := srv.Handle(context.Background(), protocol.Request{JSONRPC: "2.0", ID: 2, Method: "initialize"})
	info := initResp.Result.(protocol.InitializeResult)
	if info.ServerInfo.Name != "ads-test" {
		t.Fatalf("server name = %q", info.ServerInfo.Name)
	}
}

func TestNewEnvSeedsSession(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultCustomerID = "9876543210"
	cfg.DryRun = true
	env := NewEnv(cfg, nil, nopLogger(), nil)
	if env.Session.Active() != "9876543210" || !env.DryRun || env.MCCID != "1112223333" {
		t.Fatalf("unexpected env: %+v", env)
	}
}

func nopLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
