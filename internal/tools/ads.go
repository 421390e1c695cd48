package tools

import (
	"context"
	"encoding/json"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

type adsTool struct{ env *Env }

// AdsList constructs the get_ads tool.
func AdsList(env *Env) *adsTool { return &adsTool{env: env} }

func (t *adsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_ads",
		Description: "List ads with headlines, descriptions and final URLs. Responsive search ads and expanded text ads are both supported.",
		InputSchema: objectSchema(map[string]protocol.JSONSchema{
			"campaign_id": {Type: "string", Description: "Optional campaign ID filter"},
			"ad_group_id": {Type: "string", Description: "Optional ad group ID filter"},
		}),
	}
}

type adSummary struct {
	CampaignName string   `json:"campaign_name"`
	AdGroupName  string   `json:"ad_group_name"`
	AdID         string   `json:"ad_id"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	FinalURLs    []string `json:"final_urls,omitempty"`
	DisplayURL   string   `json:"display_url,omitempty"`
	Headlines    []string `json:"headlines,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

func (t *adsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
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
		"campaign.id",
		"campaign.name",
		"ad_group.id",
		"ad_group.name",
		"ad_group_ad.ad.id",
		"ad_group_ad.ad.type",
		"ad_group_ad.status",
		"ad_group_ad.ad.expanded_text_ad.headline_part1",
		"ad_group_ad.ad.expanded_text_ad.headline_part2",
		"ad_group_ad.ad.expanded_text_ad.headline_part3",
		"ad_group_ad.ad.expanded_text_ad.description",
		"ad_group_ad.ad.expanded_text_ad.description2",
		"ad_group_ad.ad.responsive_search_ad.headlines",
		"ad_group_ad.ad.responsive_search_ad.descriptions",
		"ad_group_ad.ad.final_urls",
		"ad_group_ad.ad.display_url",
	).From("ad_group_ad").
		Where("ad_group_ad.status != 'REMOVED'").
		Where(campaignCond).
		Where(adGroupCond).
		OrderBy("campaign.name").
		OrderBy("ad_group.name").
		Limit(500).
		String()

	rows, err := t.env.search(ctx, cid, query)
	if err != nil {
		return t.env.failure("fetching ads", err)
	}
	if len(rows) == 0 {
		return textResult("No ads found.")
	}

	out := make([]adSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, summarizeAd(r))
	}
	return jsonResult(out)
}

func summarizeAd(r googleads.Row) adSummary {
	a := adSummary{
		CampaignName: r.String("campaign.name"),
		AdGroupName:  r.String("ad_group.name"),
		AdID:         r.String("ad_group_ad.ad.id"),
		Type:         r.String("ad_group_ad.ad.type"),
		Status:       r.String("ad_group_ad.status"),
		FinalURLs:    r.Strings("ad_group_ad.ad.final_urls"),
		DisplayURL:   r.String("ad_group_ad.ad.display_url"),
	}
	switch a.Type {
	case "EXPANDED_TEXT_AD":
		a.Headlines = nonEmpty(
			r.String("ad_group_ad.ad.expanded_text_ad.headline_part1"),
			r.String("ad_group_ad.ad.expanded_text_ad.headline_part2"),
			r.String("ad_group_ad.ad.expanded_text_ad.headline_part3"),
		)
		a.Descriptions = nonEmpty(
			r.String("ad_group_ad.ad.expanded_text_ad.description"),
			r.String("ad_group_ad.ad.expanded_text_ad.description2"),
		)
	case "RESPONSIVE_SEARCH_AD":
		a.Headlines = assetTexts(r.Objects("ad_group_ad.ad.responsive_search_ad.headlines"))
		a.Descriptions = assetTexts(r.Objects("ad_group_ad.ad.responsive_search_ad.descriptions"))
	}
	return a
}

func assetTexts(assets []googleads.Row) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.String("text"))
	}
	return out
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
