package tools

import (
	"context"
	"encoding/json"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

type keywordsTool struct{ env *Env }

// Keywords constructs the get_keywords tool.
func Keywords(env *Env) *keywordsTool { return &keywordsTool{env: env} }

func (t *keywordsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_keywords",
		Description: "List keywords with match type, status, quality score and bid estimates. Filter by campaign or ad group.",
		InputSchema: objectSchema(map[string]protocol.JSONSchema{
			"campaign_id": {Type: "string", Description: "Optional campaign ID filter"},
			"ad_group_id": {Type: "string", Description: "Optional ad group ID filter"},
		}),
	}
}

type keywordSummary struct {
	CampaignName string `json:"campaign_name"`
	AdGroupName  string `json:"ad_group_name"`
	CriterionID  string `json:"criterion_id"`
	Keyword      string `json:"keyword"`
	MatchType    string `json:"match_type"`
	Status       string `json:"status"`
	QualityScore any    `json:"quality_score"`
	CPCBid       string `json:"cpc_bid"`
	FirstPageCPC string `json:"first_page_cpc"`
	TopOfPageCPC string `json:"top_of_page_cpc"`
}

func (t *keywordsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		CustomerID string `json:"customer_id"`
		CampaignID ID     `json:"campaign_id"`
		AdGroupID  ID     `json:"ad_group_id"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	campaignCond, rerr := campaignFilter(args.CampaignID)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	adGroupCond, rerr := adGroupFilter(args.AdGroupID)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	cid, guidance, rerr := t.env.customer(args.CustomerID)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	query := gaql.Select(
		"campaign.name",
		"ad_group.name",
		"ad_group_criterion.criterion_id",
		"ad_group_criterion.keyword.text",
		"ad_group_criterion.keyword.match_type",
		"ad_group_criterion.status",
		"ad_group_criterion.quality_info.quality_score",
		"ad_group_criterion.effective_cpc_bid_micros",
		"ad_group_criterion.position_estimates.first_page_cpc_micros",
		"ad_group_criterion.position_estimates.top_of_page_cpc_micros",
	).From("keyword_view").
		Where("ad_group_criterion.type = 'KEYWORD'").
		Where("ad_group_criterion.status != 'REMOVED'").
		WhereIf(campaignCond != "", campaignCond).
		WhereIf(adGroupCond != "", adGroupCond).
		OrderBy("campaign.name").
		OrderBy("ad_group.name").
		OrderBy("ad_group_criterion.keyword.text").
		Limit(1000).
		String()

	rows, err := t.env.search(ctx, cid, query)
	if err != nil {
		return t.env.failure("fetching keywords", err)
	}
	if len(rows) == 0 {
		return textResult("No keywords found.")
	}

	out := make([]keywordSummary, 0, len(rows))
	for _, r := range rows {
		k := keywordSummary{
			CampaignName: r.String("campaign.name"),
			AdGroupName:  r.String("ad_group.name"),
			CriterionID:  r.String("ad_group_criterion.criterion_id"),
			Keyword:      r.String("ad_group_criterion.keyword.text"),
			MatchType:    r.String("ad_group_criterion.keyword.match_type"),
			Status:       r.String("ad_group_criterion.status"),
			QualityScore: "N/A",
			CPCBid:       report.MoneyMicros(r.Int("ad_group_criterion.effective_cpc_bid_micros")),
			FirstPageCPC: report.MoneyMicros(r.Int("ad_group_criterion.position_estimates.first_page_cpc_micros")),
			TopOfPageCPC: report.MoneyMicros(r.Int("ad_group_criterion.position_estimates.top_of_page_cpc_micros")),
		}
		if r.Has("ad_group_criterion.quality_info.quality_score") {
			k.QualityScore = r.Int("ad_group_criterion.quality_info.quality_score")
		}
		out = append(out, k)
	}
	return jsonResult(out)
}

func adGroupFilter(id ID) (string, *protocol.ResponseError) {
	if id == "" {
		return "", nil
	}
	v, err := gaql.ID(string(id))
	if err != nil {
		return "", invalidArgs("invalid ad_group_id " + string(id))
	}
	return "ad_group.id = " + v, nil
}

type searchTermsTool struct{ env *Env }

// SearchTerms constructs the get_search_terms tool.
func SearchTerms(env *Env) *searchTermsTool { return &searchTermsTool{env: env} }

func (t *searchTermsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_search_terms",
		Description: "Search terms that triggered ads, ordered by impressions (top 500).",
		InputSchema: objectSchema(map[string]protocol.JSONSchema{
			"date_range":  dateRangeSchema,
			"campaign_id": {Type: "string", Description: "Optional campaign ID filter"},
		}),
	}
}

type searchTerm struct {
	Campaign    string  `json:"campaign"`
	AdGroup     string  `json:"ad_group"`
	SearchTerm  string  `json:"search_term"`
	Status      string  `json:"status"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        string  `json:"cost"`
	Conversions float64 `json:"conversions"`
	CTR         string  `json:"ctr"`
	AvgCPC      string  `json:"avg_cpc"`
}

func (t *searchTermsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		CustomerID string `json:"customer_id"`
		DateRange  string `json:"date_range"`
		CampaignID ID     `json:"campaign_id"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	dr, err := gaql.ParseDateRange(args.DateRange, gaql.DefaultDateRange)
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
		"campaign.name",
		"ad_group.name",
		"search_term_view.search_term",
		"search_term_view.status",
		"metrics.impressions",
		"metrics.clicks",
		"metrics.cost_micros",
		"metrics.conversions",
		"metrics.ctr",
		"metrics.average_cpc",
	).From("search_term_view").
		Where(dr.Condition()).
		WhereIf(campaignCond != "", campaignCond).
		OrderBy("metrics.impressions DESC").
		Limit(500).
		String()

	rows, err := t.env.search(ctx, cid, query)
	if err != nil {
		return t.env.failure("fetching search terms", err)
	}
	if len(rows) == 0 {
		return textResult("No search terms found for the specified date range.")
	}

	out := make([]searchTerm, 0, len(rows))
	for _, r := range rows {
		out = append(out, searchTerm{
			Campaign:    r.String("campaign.name"),
			AdGroup:     r.String("ad_group.name"),
			SearchTerm:  r.String("search_term_view.search_term"),
			Status:      r.String("search_term_view.status"),
			Impressions: r.Int("metrics.impressions"),
			Clicks:      r.Int("metrics.clicks"),
			Cost:        report.MoneyMicros(r.Int("metrics.cost_micros")),
			Conversions: r.Float("metrics.conversions"),
			CTR:         report.Percent(r.Float("metrics.ctr"), 2),
			AvgCPC:      moneyMicrosFloat(r, "metrics.average_cpc"),
		})
	}
	return jsonResult(out)
}
