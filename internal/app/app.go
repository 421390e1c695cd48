// Package app wires configuration, the upstream client and the tool catalog
// into an MCP server.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/adsops/google-ads-mcp-server/internal/config"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mcp"
	"github.com/adsops/google-ads-mcp-server/internal/metrics"
	"github.com/adsops/google-ads-mcp-server/internal/tools"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "google_ads_mcp"

// NewToolbox builds the full tool catalog in listing order.
func NewToolbox(env *tools.Env) *mcp.Toolbox {
	return mcp.NewToolbox(
		// Account management
		tools.ListAccounts(env),
		tools.SetActiveAccount(env),
		tools.AccountStatus(env),

		// Read
		tools.Campaigns(env),
		tools.CampaignPerformance(env),
		tools.Keywords(env),
		tools.SearchTerms(env),
		tools.AdsList(env),
		tools.GAQLQuery(env),

		// Analytics reports
		tools.GeoPerformance(env),
		tools.DevicePerformance(env),
		tools.Demographics(env),
		tools.AdSchedule(env),
		tools.Audiences(env),

		// Campaigns and ad groups
		tools.CreateCampaign(env),
		tools.UpdateCampaign(env),
		tools.PauseCampaign(env),
		tools.EnableCampaign(env),
		tools.CreateAdGroup(env),
		tools.UpdateAdGroup(env),

		// Keywords
		tools.AddKeywords(env),
		tools.UpdateKeywordBids(env),
		tools.PauseKeywords(env),

		// Ads
		tools.CreateResponsiveSearchAd(env),
		tools.UpdateResponsiveSearchAd(env),
		tools.UpdateAdStatus(env),

		// Targeting
		tools.AddLocationTargets(env),
		tools.ExcludeLocations(env),
		tools.AddRadiusTarget(env),
		tools.SearchLocationTargets(env),
		tools.AddLanguageTargets(env),
		tools.ListAvailableLanguages(),

		// Negative keywords
		tools.AddNegativeKeywords(env),
		tools.CreateNegativeKeywordList(env),
		tools.AddKeywordsToNegativeList(env),
		tools.ApplyNegativeListToCampaigns(env),
	)
}

// NewEnv builds the tool environment around an upstream client.
func NewEnv(cfg config.Config, ads tools.Ads, log *logrus.Entry, m *metrics.Metrics) *tools.Env {
	return &tools.Env{
		Ads:             ads,
		Session:         tools.NewSession(cfg.DefaultCustomerID),
		MCCID:           cfg.MCCID,
		DryRun:          cfg.DryRun,
		MaxBudgetChange: cfg.MaxBudgetChange,
		Log:             log.WithField("layer", "tools"),
		Metrics:         m,
	}
}

// NewClient builds the Google Ads client with logging and request metrics.
func NewClient(cfg config.Config, log *logrus.Entry, m *metrics.Metrics) (*googleads.Client, error) {
	gc := cfg.GoogleAds()
	gc.Logger = log.WithField("layer", "googleads")
	if m != nil {
		gc.Observer = m
	}
	return googleads.New(gc)
}

// NewMCPServer validates cfg and constructs a fully wired MCP server.
func NewMCPServer(cfg config.Config, log *logrus.Entry, m *metrics.Metrics) (*mcp.Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	client, err := NewClient(cfg, log, m)
	if err != nil {
		return nil, fmt.Errorf("google ads client: %w", err)
	}
	log.WithFields(logrus.Fields{
		"mcc":            cfg.MCCID,
		"default":        cfg.DefaultCustomerID,
		"dry_run":        cfg.DryRun,
		"refresh_source": cfg.RefreshTokenSource,
	}).Info("google ads client ready")

	env := NewEnv(cfg, client, log, m)
	return mcp.NewServer(NewToolbox(env),
		mcp.WithLogger(log),
		mcp.WithMetrics(m),
		mcp.WithInfo(cfg.ServerName, ""),
	), nil
}

// RunMCPHTTP serves the MCP server over HTTP until ctx is cancelled.
func RunMCPHTTP(ctx context.Context, server *mcp.Server, cfg config.Config) error {
	return mcp.RunHTTP(ctx, server, mcp.HTTPConfig{
		Addr: cfg.HTTPAddr,
		Auth: mcp.AuthConfig{Token: cfg.HTTPToken, Allowlist: cfg.Allowlist},
	})
}

// RunMCPStdio serves the MCP server over stdin/stdout until EOF or ctx is
// cancelled.
func RunMCPStdio(ctx context.Context, server *mcp.Server, in io.Reader, out io.Writer) error {
	return mcp.RunStdio(ctx, server, in, out)
}
