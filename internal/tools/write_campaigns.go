package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

var campaignTypes = []string{"SEARCH", "DISPLAY", "SHOPPING", "VIDEO"}

type createCampaignTool struct{ env *Env }

// CreateCampaign constructs the create_campaign tool.
func CreateCampaign(env *Env) *createCampaignTool { return &createCampaignTool{env: env} }

func (t *createCampaignTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "create_campaign",
		Description: "Create a new campaign with its own daily budget. Campaigns are created PAUSED unless status is ENABLED.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"name":                    {Type: "string", Description: "Campaign name"},
			"budget_amount":           {Type: "number", Description: "Daily budget in currency units (e.g., 50.00 for $50)"},
			"campaign_type":           {Type: "string", Enum: campaignTypes, Description: "Type of campaign"},
			"status":                  {Type: "string", Enum: []string{statusEnabled, statusPaused}, Description: "Campaign status (defaults to PAUSED for safety)"},
			"include_search_partners": {Type: "boolean", Description: "Include Google search partners (for SEARCH campaigns)"},
			"merchant_id":             {Type: "string", Description: "Merchant Center ID (required for SHOPPING campaigns)"},
			"priority":                {Type: "integer", Description: "Shopping campaign priority 0-2 (default: 0)"},
			"tracking_url_template":   {Type: "string", Description: "Tracking template for campaign URLs (e.g., {lpurl}?utm_source=google)"},
			"final_url_suffix":        {Type: "string", Description: "Parameters to append to all final URLs (e.g., utm_content=abc123)"},
		}, "name", "budget_amount", "campaign_type"),
	}
}

type createCampaignArgs struct {
	writeArgs
	Name                  string  `json:"name"`
	BudgetAmount          float64 `json:"budget_amount"`
	CampaignType          string  `json:"campaign_type"`
	Status                string  `json:"status"`
	IncludeSearchPartners *bool   `json:"include_search_partners"`
	MerchantID            ID      `json:"merchant_id"`
	Priority              int     `json:"priority"`
	TrackingURLTemplate   string  `json:"tracking_url_template"`
	FinalURLSuffix        string  `json:"final_url_suffix"`
}

func (t *createCampaignTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args createCampaignArgs
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return protocol.CallResult{}, invalidArgs("Campaign name is required")
	}
	if args.BudgetAmount <= 0 {
		return protocol.CallResult{}, invalidArgs("Budget amount is required")
	}
	channel := strings.ToUpper(strings.TrimSpace(args.CampaignType))
	if !slices.Contains(campaignTypes, channel) {
		return protocol.CallResult{}, invalidArgs("Campaign type is required (SEARCH, DISPLAY, SHOPPING or VIDEO)")
	}
	status, rerr := parseStatus(args.Status, statusPaused, statusEnabled, statusPaused)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	if args.Priority < 0 || args.Priority > 2 {
		return protocol.CallResult{}, invalidArgs("priority must be between 0 and 2")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	budgetMicros := mutate.Micros(args.BudgetAmount)
	// A negative id is a temporary resource name resolved within the request.
	budgetRN := googleads.ResourceName(cid, "campaignBudgets", "-1")
	budget := map[string]any{
		"resourceName":     budgetRN,
		"name":             name + " - Budget",
		"amountMicros":     budgetMicros,
		"deliveryMethod":   "STANDARD",
		"explicitlyShared": false,
	}
	campaign := map[string]any{
		"name":                   name,
		"status":                 status,
		"campaignBudget":         budgetRN,
		"advertisingChannelType": channel,
		"manualCpc":              map[string]any{"enhancedCpcEnabled": false},
	}
	switch channel {
	case "SEARCH":
		partners := args.IncludeSearchPartners == nil || *args.IncludeSearchPartners
		campaign["networkSettings"] = map[string]any{
			"targetGoogleSearch":         true,
			"targetSearchNetwork":        partners,
			"targetContentNetwork":       false,
			"targetPartnerSearchNetwork": false,
		}
	case "SHOPPING":
		if args.MerchantID != "" {
			campaign["shoppingSetting"] = map[string]any{
				"merchantId":       string(args.MerchantID),
				"campaignPriority": args.Priority,
			}
		}
	}
	if args.TrackingURLTemplate != "" {
		campaign["trackingUrlTemplate"] = args.TrackingURLTemplate
	}
	if args.FinalURLSuffix != "" {
		campaign["finalUrlSuffix"] = args.FinalURLSuffix
	}

	done, res := t.env.apply(ctx, cid, guard, write{
		entity: googleads.EntityCampaign,
		action: "creating campaign",
		title:  "Campaign",
		name:   name,
		changes: []mutate.Change{
			mutate.Text("name", "N/A", name),
			mutate.Text("type", "N/A", channel),
			mutate.Budget(0, budgetMicros),
			mutate.Status("N/A", status),
		},
		ops: []googleads.Operation{
			{Entity: googleads.EntityCampaignBudget, Create: budget},
			{Entity: googleads.EntityCampaign, Create: campaign},
		},
	})
	if res != nil {
		return *res, nil
	}

	msg := "✅ Campaign created successfully!\n\n" + lines(
		"Campaign: "+name,
		"Resource: "+done.resourceName(1),
		"Status: "+status,
		"Budget: "+report.MoneyMicros(budgetMicros)+"/day",
		"Type: "+channel,
		optional("Tracking Template: ", args.TrackingURLTemplate),
		optional("URL Suffix: ", args.FinalURLSuffix),
	)
	if status == statusPaused {
		msg += "\n\nℹ️  Campaign created in PAUSED status for safety. Use update_campaign to enable it."
	}
	return textResult(withWarnings(msg, done.warnings))
}

type updateCampaignTool struct{ env *Env }

// UpdateCampaign constructs the update_campaign tool.
func UpdateCampaign(env *Env) *updateCampaignTool { return &updateCampaignTool{env: env} }

func (t *updateCampaignTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "update_campaign",
		Description: "Update campaign settings (name, budget, status, tracking template, final URL suffix). Budget changes above max_budget_change are rejected.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"campaign_id":           {Type: "string", Description: "Campaign ID to update"},
			"name":                  {Type: "string", Description: "New campaign name"},
			"budget_amount":         {Type: "number", Description: "New daily budget in currency units"},
			"status":                {Type: "string", Enum: []string{statusEnabled, statusPaused, statusRemoved}, Description: "New campaign status"},
			"tracking_url_template": {Type: "string", Description: "Tracking template for campaign URLs (empty string clears it)"},
			"final_url_suffix":      {Type: "string", Description: "Parameters to append to all final URLs (empty string clears it)"},
			"max_budget_change":     {Type: "number", Description: "Largest allowed budget change in currency units (default: 1000)"},
		}, "campaign_id"),
	}
}

type updateCampaignArgs struct {
	writeArgs
	CampaignID          ID       `json:"campaign_id"`
	Name                string   `json:"name"`
	BudgetAmount        *float64 `json:"budget_amount"`
	Status              string   `json:"status"`
	TrackingURLTemplate *string  `json:"tracking_url_template"`
	FinalURLSuffix      *string  `json:"final_url_suffix"`
}

func (t *updateCampaignTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args updateCampaignArgs
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	return t.update(ctx, args)
}

func (t *updateCampaignTool) update(ctx context.Context, args updateCampaignArgs) (protocol.CallResult, *protocol.ResponseError) {
	campaignID, err := gaql.ID(string(args.CampaignID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Campaign ID is required")
	}
	status, rerr := parseStatus(args.Status, "", statusEnabled, statusPaused, statusRemoved)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	if args.BudgetAmount != nil && *args.BudgetAmount <= 0 {
		return protocol.CallResult{}, invalidArgs("budget_amount must be positive")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	current, err := t.env.firstRow(ctx, cid, gaql.Select(
		"campaign.id",
		"campaign.name",
		"campaign.status",
		"campaign.tracking_url_template",
		"campaign.final_url_suffix",
		"campaign_budget.id",
		"campaign_budget.amount_micros",
	).From("campaign").Where("campaign.id = "+campaignID).String())
	if err != nil {
		return t.env.failure("updating campaign", err)
	}
	if current == nil {
		return notFound("Campaign " + campaignID)
	}

	var changes []mutate.Change
	var ops []googleads.Operation
	update := map[string]any{"resourceName": googleads.ResourceName(cid, "campaigns", campaignID)}
	var mask []string

	oldStatus := current.String("campaign.status")
	if status != "" && status != oldStatus {
		changes = append(changes, mutate.Status(oldStatus, status))
		update["status"] = status
		mask = append(mask, "status")
	}
	if args.BudgetAmount != nil {
		oldMicros := current.Int("campaign_budget.amount_micros")
		newMicros := mutate.Micros(*args.BudgetAmount)
		if newMicros != oldMicros {
			changes = append(changes, mutate.Budget(oldMicros, newMicros))
			ops = append(ops, googleads.Operation{
				Entity: googleads.EntityCampaignBudget,
				Update: map[string]any{
					"resourceName": googleads.ResourceName(cid, "campaignBudgets", current.String("campaign_budget.id")),
					"amountMicros": newMicros,
				},
				UpdateMask: []string{"amount_micros"},
			})
		}
	}
	oldName := current.String("campaign.name")
	if name := strings.TrimSpace(args.Name); name != "" && name != oldName {
		changes = append(changes, mutate.Text("name", oldName, name))
		update["name"] = name
		mask = append(mask, "name")
	}
	if args.TrackingURLTemplate != nil {
		old := current.String("campaign.tracking_url_template")
		if *args.TrackingURLTemplate != old {
			changes = append(changes, mutate.Text("tracking_url_template", old, *args.TrackingURLTemplate))
			update["trackingUrlTemplate"] = *args.TrackingURLTemplate
			mask = append(mask, "tracking_url_template")
		}
	}
	if args.FinalURLSuffix != nil {
		old := current.String("campaign.final_url_suffix")
		if *args.FinalURLSuffix != old {
			changes = append(changes, mutate.Text("final_url_suffix", old, *args.FinalURLSuffix))
			update["finalUrlSuffix"] = *args.FinalURLSuffix
			mask = append(mask, "final_url_suffix")
		}
	}
	if len(changes) == 0 {
		return textResult(msgNoChanges)
	}
	if len(mask) > 0 {
		ops = append(ops, googleads.Operation{Entity: googleads.EntityCampaign, Update: update, UpdateMask: mask})
	}

	done, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityCampaign,
		action:  "updating campaign",
		title:   "Campaign",
		name:    oldName,
		changes: changes,
		ops:     ops,
	})
	if res != nil {
		return *res, nil
	}

	display := oldName
	if n := strings.TrimSpace(args.Name); n != "" {
		display = n
	}
	var b strings.Builder
	b.WriteString("✅ Campaign updated successfully!\n\nCampaign: " + display + "\n")
	for _, c := range changes {
		b.WriteString(c.String() + "\n")
	}
	if status == statusEnabled && oldStatus != statusEnabled {
		b.WriteString("\n⚡ Campaign is now live and spending budget!")
	}
	return textResult(withWarnings(strings.TrimRight(b.String(), "\n"), done.warnings))
}

const msgNoChanges = "ℹ️  No changes to apply. All values are already set as requested."

type campaignStatusTool struct {
	update *updateCampaignTool
	name   string
	status string
}

// PauseCampaign constructs the pause_campaign tool.
func PauseCampaign(env *Env) *campaignStatusTool {
	return &campaignStatusTool{update: UpdateCampaign(env), name: "pause_campaign", status: statusPaused}
}

// EnableCampaign constructs the enable_campaign tool.
func EnableCampaign(env *Env) *campaignStatusTool {
	return &campaignStatusTool{update: UpdateCampaign(env), name: "enable_campaign", status: statusEnabled}
}

func (t *campaignStatusTool) Descriptor() protocol.ToolDescriptor {
	verb := "Pause"
	if t.status == statusEnabled {
		verb = "Enable"
	}
	return protocol.ToolDescriptor{
		Name:        t.name,
		Description: fmt.Sprintf("%s a campaign", verb),
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"campaign_id": {Type: "string", Description: fmt.Sprintf("Campaign ID to %s", strings.ToLower(verb))},
		}, "campaign_id"),
	}
}

func (t *campaignStatusTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		CampaignID ID `json:"campaign_id"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	return t.update.update(ctx, updateCampaignArgs{writeArgs: args.writeArgs, CampaignID: args.CampaignID, Status: t.status})
}

func optional(label, v string) string {
	if v == "" {
		return ""
	}
	return label + v
}
