package tools

import (
	"context"
	"encoding/json"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

type campaignsTool struct{ env *Env }

// Campaigns constructs the get_campaigns tool.
func Campaigns(env *Env) *campaignsTool { return &campaignsTool{env: env} }

func (t *campaignsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_campaigns",
		Description: "List campaigns with status, channel, bidding strategy, daily budget and flight dates.",
		InputSchema: objectSchema(map[string]protocol.JSONSchema{
			"include_removed": {Type: "boolean", Description: "Include removed campaigns (default: false)"},
		}),
	}
}

type campaignSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	Type            string `json:"type"`
	BiddingStrategy string `json:"bidding_strategy"`
	Budget          string `json:"budget"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
}

func (t *campaignsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		CustomerID     string `json:"customer_id"`
		IncludeRemoved bool   `json:"include_removed"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	cid, guidance, rerr := t.env.customer(args.CustomerID)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	query := gaql.Select(
		"campaign.id",
		"campaign.name",
		"campaign.status",
		"campaign.advertising_channel_type",
		"campaign.bidding_strategy_type",
		"campaign_budget.amount_micros",
		"campaign.start_date",
		"campaign.end_date",
	).From("campaign").
		Where("campaign.advertising_channel_type != 'UNSPECIFIED'").
		WhereIf(!args.IncludeRemoved, "campaign.status != 'REMOVED'").
		OrderBy("campaign.name").
		String()

	rows, err := t.env.search(ctx, cid, query)
	if err != nil {
		return t.env.failure("fetching campaigns", err)
	}
	if len(rows) == 0 {
		return textResult("No campaigns found.")
	}

	out := make([]campaignSummary, 0, len(rows))
	for _, r := range rows {
		c := campaignSummary{
			ID:              r.String("campaign.id"),
			Name:            r.String("campaign.name"),
			Status:          r.String("campaign.status"),
			Type:            r.String("campaign.advertising_channel_type"),
			BiddingStrategy: r.String("campaign.bidding_strategy_type"),
			Budget:          "N/A",
			StartDate:       r.String("campaign.start_date"),
			EndDate:         r.String("campaign.end_date"),
		}
		if r.Has("campaign_budget.amount_micros") {
			c.Budget = report.MoneyMicros(r.Int("campaign_budget.amount_micros"))
		}
		if c.EndDate == "" {
			c.EndDate = "Ongoing"
		}
		out = append(out, c)
	}
	return jsonResult(out)
}

type campaignPerformanceTool struct{ env *Env }

// CampaignPerformance constructs the get_campaign_performance tool.
func CampaignPerformance(env *Env) *campaignPerformanceTool {
	return &campaignPerformanceTool{env: env}
}

func (t *campaignPerformanceTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_campaign_performance",
		Description: "Campaign performance metrics (impressions, clicks, cost, conversions, CTR, CPC) for a date range.",
		InputSchema: objectSchema(map[string]protocol.JSONSchema{
			"date_range":  dateRangeSchema,
			"campaign_id": {Type: "string", Description: "Optional campaign ID filter"},
		}, "date_range"),
	}
}

var dateRangeSchema = protocol.JSONSchema{
	Type:        "string",
	Description: "Named range (LAST_7_DAYS, LAST_30_DAYS, THIS_MONTH, LAST_MONTH, ...) or YYYY-MM-DD:YYYY-MM-DD",
}

type campaignPerformance struct {
	CampaignID        string  `json:"campaign_id"`
	CampaignName      string  `json:"campaign_name"`
	Impressions       int64   `json:"impressions"`
	Clicks            int64   `json:"clicks"`
	Cost              string  `json:"cost"`
	Conversions       float64 `json:"conversions"`
	ConversionValue   float64 `json:"conversion_value"`
	CTR               string  `json:"ctr"`
	AvgCPC            string  `json:"avg_cpc"`
	CostPerConversion string  `json:"cost_per_conversion"`
}

func (t *campaignPerformanceTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		CustomerID string `json:"customer_id"`
		DateRange  string `json:"date_range"`
		CampaignID ID     `json:"campaign_id"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	if args.DateRange == "" {
		return protocol.CallResult{}, invalidArgs("date_range is required")
	}
	dr, err := gaql.ParseDateRange(args.DateRange, "")
	if err != nil {
		return protocol.CallResult{}, invalidArgs(err.Error())
	}
	campaignCond, rerr := campaignFilter(args.CampaignID)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	cid, guidance, rerr := t.env.customer(args.CustomerID)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	query := gaql.Select(
		"campaign.id",
		"campaign.name",
		"metrics.impressions",
		"metrics.clicks",
		"metrics.cost_micros",
		"metrics.conversions",
		"metrics.conversions_value",
		"metrics.ctr",
		"metrics.average_cpc",
		"metrics.cost_per_conversion",
	).From("campaign").
		Where(dr.Condition()).
		WhereIf(campaignCond != "", campaignCond).
		OrderBy("metrics.impressions DESC").
		String()

	rows, err := t.env.search(ctx, cid, query)
	if err != nil {
		return t.env.failure("fetching campaign performance", err)
	}
	if len(rows) == 0 {
		return textResult("No performance data found for the specified date range.")
	}

	out := make([]campaignPerformance, 0, len(rows))
	for _, r := range rows {
		p := campaignPerformance{
			CampaignID:        r.String("campaign.id"),
			CampaignName:      r.String("campaign.name"),
			Impressions:       r.Int("metrics.impressions"),
			Clicks:            r.Int("metrics.clicks"),
			Cost:              report.MoneyMicros(r.Int("metrics.cost_micros")),
			Conversions:       r.Float("metrics.conversions"),
			ConversionValue:   r.Float("metrics.conversions_value"),
			CTR:               report.Percent(r.Float("metrics.ctr"), 2),
			AvgCPC:            moneyMicrosFloat(r, "metrics.average_cpc"),
			CostPerConversion: "N/A",
		}
		if r.Float("metrics.cost_per_conversion") > 0 {
			p.CostPerConversion = moneyMicrosFloat(r, "metrics.cost_per_conversion")
		}
		out = append(out, p)
	}
	return jsonResult(out)
}

// moneyMicrosFloat renders a micros metric the API reports as a double.
func moneyMicrosFloat(r googleads.Row, path string) string {
	return report.Money(r.Float(path) / report.MicrosPerUnit)
}

// campaignFilter validates an optional campaign id and renders its predicate.
func campaignFilter(id ID) (string, *protocol.ResponseError) {
	if id == "" {
		return "", nil
	}
	v, err := gaql.ID(string(id))
	if err != nil {
		return "", invalidArgs("invalid campaign_id " + string(id))
	}
	return "campaign.id = " + v, nil
}

func derefResult(r *protocol.CallResult) protocol.CallResult {
	if r == nil {
		return protocol.CallResult{}
	}
	return *r
}
