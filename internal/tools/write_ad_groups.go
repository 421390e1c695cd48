package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

type createAdGroupTool struct{ env *Env }

// CreateAdGroup constructs the create_ad_group tool.
func CreateAdGroup(env *Env) *createAdGroupTool { return &createAdGroupTool{env: env} }

func (t *createAdGroupTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "create_ad_group",
		Description: "Create a new ad group in a campaign. Ad groups are created PAUSED unless status is ENABLED.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"campaign_id": {Type: "string", Description: "Campaign ID to create the ad group in"},
			"name":        {Type: "string", Description: "Ad group name"},
			"status":      {Type: "string", Enum: []string{statusEnabled, statusPaused}, Description: "Ad group status (defaults to PAUSED)"},
			"type":        {Type: "string", Enum: []string{"SEARCH_STANDARD", "DISPLAY_STANDARD", "SHOPPING_PRODUCT_ADS", "VIDEO_TRUE_VIEW_IN_STREAM"}, Description: "Ad group type (default: SEARCH_STANDARD)"},
			"cpc_bid":     {Type: "number", Description: "Default max CPC bid in currency units"},
		}, "campaign_id", "name"),
	}
}

func (t *createAdGroupTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		CampaignID ID      `json:"campaign_id"`
		Name       string  `json:"name"`
		Status     string  `json:"status"`
		Type       string  `json:"type"`
		CPCBid     float64 `json:"cpc_bid"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	campaignID, err := gaql.ID(string(args.CampaignID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Campaign ID is required")
	}
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return protocol.CallResult{}, invalidArgs("Ad group name is required")
	}
	status, rerr := parseStatus(args.Status, statusPaused, statusEnabled, statusPaused)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	adGroupType := "SEARCH_STANDARD"
	if args.Type != "" {
		if adGroupType, err = gaql.Enum(args.Type); err != nil {
			return protocol.CallResult{}, invalidArgs(err.Error())
		}
	}
	if args.CPCBid < 0 {
		return protocol.CallResult{}, invalidArgs("cpc_bid must not be negative")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	campaign, err := t.env.firstRow(ctx, cid, gaql.Select("campaign.id", "campaign.name", "campaign.status").
		From("campaign").Where("campaign.id = "+campaignID).String())
	if err != nil {
		return t.env.failure("creating ad group", err)
	}
	if campaign == nil {
		return notFound("Campaign " + campaignID)
	}
	campaignName := campaign.String("campaign.name")

	adGroup := map[string]any{
		"campaign": googleads.ResourceName(cid, "campaigns", campaignID),
		"name":     name,
		"status":   status,
		"type":     adGroupType,
	}
	changes := []mutate.Change{
		mutate.Text("name", "N/A", name),
		mutate.Text("status", "N/A", status),
	}
	var bidMicros int64
	if args.CPCBid > 0 {
		bidMicros = mutate.Micros(args.CPCBid)
		adGroup["cpcBidMicros"] = bidMicros
		changes = append(changes, mutate.Bid(0, bidMicros))
	}

	done, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityAdGroup,
		action:  "creating ad group",
		title:   "Ad Group",
		name:    campaignName,
		changes: changes,
		ops:     []googleads.Operation{{Entity: googleads.EntityAdGroup, Create: adGroup}},
	})
	if res != nil {
		return *res, nil
	}

	bid := ""
	if bidMicros > 0 {
		bid = "Default CPC Bid: " + report.MoneyMicros(bidMicros)
	}
	msg := "✅ Ad group created successfully!\n\n" + lines(
		"Campaign: "+campaignName,
		"Ad Group: "+name,
		"ID: "+googleads.IDFromResourceName(done.resourceName(0)),
		"Status: "+status,
		bid,
	)
	if status == statusPaused {
		msg += "\n\nℹ️  Ad group created in PAUSED status for safety. Use update_ad_group to enable it."
	}
	return textResult(msg)
}

type updateAdGroupTool struct{ env *Env }

// UpdateAdGroup constructs the update_ad_group tool.
func UpdateAdGroup(env *Env) *updateAdGroupTool { return &updateAdGroupTool{env: env} }

func (t *updateAdGroupTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "update_ad_group",
		Description: "Update an ad group's name, status or default CPC bid.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"ad_group_id": {Type: "string", Description: "Ad group ID to update"},
			"name":        {Type: "string", Description: "New ad group name"},
			"status":      {Type: "string", Enum: []string{statusEnabled, statusPaused, statusRemoved}, Description: "New ad group status"},
			"cpc_bid":     {Type: "number", Description: "New default max CPC bid in currency units"},
		}, "ad_group_id"),
	}
}

func (t *updateAdGroupTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		AdGroupID ID       `json:"ad_group_id"`
		Name      string   `json:"name"`
		Status    string   `json:"status"`
		CPCBid    *float64 `json:"cpc_bid"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	adGroupID, err := gaql.ID(string(args.AdGroupID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Ad group ID is required")
	}
	status, rerr := parseStatus(args.Status, "", statusEnabled, statusPaused, statusRemoved)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	if args.CPCBid != nil && *args.CPCBid < 0 {
		return protocol.CallResult{}, invalidArgs("cpc_bid must not be negative")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	current, err := t.env.firstRow(ctx, cid, gaql.Select(
		"ad_group.id",
		"ad_group.name",
		"ad_group.status",
		"ad_group.cpc_bid_micros",
		"campaign.name",
	).From("ad_group").Where("ad_group.id = "+adGroupID).String())
	if err != nil {
		return t.env.failure("updating ad group", err)
	}
	if current == nil {
		return notFound("Ad group " + adGroupID)
	}

	update := map[string]any{"resourceName": googleads.ResourceName(cid, "adGroups", adGroupID)}
	var mask []string
	var changes []mutate.Change

	if old := current.String("ad_group.status"); status != "" && status != old {
		update["status"] = status
		mask = append(mask, "status")
		changes = append(changes, mutate.Status(old, status))
	}
	oldName := current.String("ad_group.name")
	if name := strings.TrimSpace(args.Name); name != "" && name != oldName {
		update["name"] = name
		mask = append(mask, "name")
		changes = append(changes, mutate.Text("name", oldName, name))
	}
	if args.CPCBid != nil {
		old := current.Int("ad_group.cpc_bid_micros")
		if bid := mutate.Micros(*args.CPCBid); bid != old {
			update["cpcBidMicros"] = bid
			mask = append(mask, "cpc_bid_micros")
			changes = append(changes, mutate.Bid(old, bid))
		}
	}
	if len(changes) == 0 {
		return textResult(msgNoChanges)
	}

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityAdGroup,
		action:  "updating ad group",
		title:   "Ad Group",
		name:    oldName,
		changes: changes,
		ops:     []googleads.Operation{{Entity: googleads.EntityAdGroup, Update: update, UpdateMask: mask}},
	}); res != nil {
		return *res, nil
	}

	display := oldName
	if n := strings.TrimSpace(args.Name); n != "" {
		display = n
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Ad group updated successfully!\n\nCampaign: %s\nAd Group: %s", current.String("campaign.name"), display)
	for _, c := range changes {
		b.WriteString("\n" + c.String())
	}
	return textResult(b.String())
}
