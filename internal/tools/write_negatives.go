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
)

type negativeKeywordsTool struct{ env *Env }

// AddNegativeKeywords constructs the add_negative_keywords tool.
func AddNegativeKeywords(env *Env) *negativeKeywordsTool { return &negativeKeywordsTool{env: env} }

func (t *negativeKeywordsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "add_negative_keywords",
		Description: "Add negative keywords to a campaign or an ad group (exactly one of campaign_id, ad_group_id).",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"campaign_id": {Type: "string", Description: "Campaign ID (campaign-level negatives)"},
			"ad_group_id": {Type: "string", Description: "Ad group ID (ad group-level negatives)"},
			"keywords":    {Type: "array", Items: keywordItemsSchema, Description: "Negative keywords (strings or {text, match_type})"},
		}, "keywords"),
	}
}

func (t *negativeKeywordsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		CampaignID ID           `json:"campaign_id"`
		AdGroupID  ID           `json:"ad_group_id"`
		Keywords   []keywordArg `json:"keywords"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	if args.CampaignID == "" && args.AdGroupID == "" {
		return protocol.CallResult{}, invalidArgs("Either campaign_id or ad_group_id is required")
	}
	if args.CampaignID != "" && args.AdGroupID != "" {
		return protocol.CallResult{}, invalidArgs("Specify either campaign_id or ad_group_id, not both")
	}
	campaignLevel := args.CampaignID != ""
	targetID, err := gaql.ID(string(args.CampaignID + args.AdGroupID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("invalid target id " + string(args.CampaignID+args.AdGroupID))
	}
	kws, rerr := normalizeKeywords(args.Keywords)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	var target googleads.Row
	if campaignLevel {
		target, err = t.env.campaignRow(ctx, cid, targetID)
	} else {
		target, err = t.env.firstRow(ctx, cid, gaql.Select("ad_group.id", "ad_group.name", "campaign.name").
			From("ad_group").Where("ad_group.id = "+targetID).String())
	}
	if err != nil {
		return t.env.failure("adding negative keywords", err)
	}
	if target == nil {
		if campaignLevel {
			return notFound("Campaign " + targetID)
		}
		return notFound("Ad group " + targetID)
	}

	level, label, entity := "campaign", "Campaign", googleads.EntityCampaignCriterion
	targetName := target.String("campaign.name")
	parentKey, parent := "campaign", googleads.ResourceName(cid, "campaigns", targetID)
	if !campaignLevel {
		level, label, entity = "ad_group", "Ad Group", googleads.EntityAdGroupCriterion
		targetName = fmt.Sprintf("%s (Campaign: %s)", target.String("ad_group.name"), target.String("campaign.name"))
		parentKey, parent = "adGroup", googleads.ResourceName(cid, "adGroups", targetID)
	}

	ops := make([]googleads.Operation, 0, len(kws))
	for _, k := range kws {
		ops = append(ops, googleads.Operation{
			Entity: entity,
			Create: map[string]any{
				parentKey:  parent,
				"negative": true,
				"keyword":  map[string]any{"text": k.Text, "matchType": k.MatchType},
			},
		})
	}
	list := keywordList(kws)

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  entity,
		action:  "adding negative keywords",
		title:   fmt.Sprintf("Negative Keywords (%s level)", level),
		name:    targetName,
		changes: []mutate.Change{mutate.Text("negative_keywords", "None", fmt.Sprintf("Adding %d negative keywords", len(ops)))},
		details: "Negative keywords to add:\n" + list,
		ops:     ops,
	}); res != nil {
		return *res, nil
	}
	return textResult(fmt.Sprintf("✅ Negative keywords added successfully!\n\n%s: %s\nNegative keywords added: %d\n\n%s",
		label, targetName, len(ops), list))
}

type createNegativeListTool struct{ env *Env }

// CreateNegativeKeywordList constructs the create_negative_keyword_list tool.
func CreateNegativeKeywordList(env *Env) *createNegativeListTool {
	return &createNegativeListTool{env: env}
}

func (t *createNegativeListTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "create_negative_keyword_list",
		Description: "Create a shared negative keyword list that can be applied to several campaigns.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"name": {Type: "string", Description: "List name"},
		}, "name"),
	}
}

func (t *createNegativeListTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		Name string `json:"name"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return protocol.CallResult{}, invalidArgs("List name is required")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	done, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntitySharedSet,
		action:  "creating negative keyword list",
		title:   "Negative Keyword List",
		name:    name,
		changes: []mutate.Change{mutate.Text("name", "N/A", name)},
		ops: []googleads.Operation{{
			Entity: googleads.EntitySharedSet,
			Create: map[string]any{"name": name, "type": "NEGATIVE_KEYWORDS"},
		}},
	})
	if res != nil {
		return *res, nil
	}

	listID := googleads.IDFromResourceName(done.resourceName(0))
	if listID == "" {
		listID = "unknown"
	}
	return textResult(fmt.Sprintf("✅ Negative keyword list created successfully!\n\nList name: %s\nList ID: %s\n\n"+
		"Next steps:\n"+
		"1. Use add_keywords_to_negative_list to add keywords\n"+
		"2. Use apply_negative_list_to_campaigns to apply to campaigns", name, listID))
}

// negativeList looks up a shared negative keyword list.
func (e *Env) negativeList(ctx context.Context, customerID, listID string) (googleads.Row, error) {
	return e.firstRow(ctx, customerID, gaql.Select("shared_set.id", "shared_set.name").
		From("shared_set").
		Where("shared_set.id = "+listID).
		Where("shared_set.type = 'NEGATIVE_KEYWORDS'").
		String())
}

type negativeListKeywordsTool struct{ env *Env }

// AddKeywordsToNegativeList constructs the add_keywords_to_negative_list tool.
func AddKeywordsToNegativeList(env *Env) *negativeListKeywordsTool {
	return &negativeListKeywordsTool{env: env}
}

func (t *negativeListKeywordsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "add_keywords_to_negative_list",
		Description: "Add keywords to a shared negative keyword list.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"list_id":  {Type: "string", Description: "Negative keyword list (shared set) ID"},
			"keywords": {Type: "array", Items: keywordItemsSchema, Description: "Keywords (strings or {text, match_type})"},
		}, "list_id", "keywords"),
	}
}

func (t *negativeListKeywordsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		ListID   ID           `json:"list_id"`
		Keywords []keywordArg `json:"keywords"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	listID, err := gaql.ID(string(args.ListID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("List ID is required")
	}
	kws, rerr := normalizeKeywords(args.Keywords)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	list, err := t.env.negativeList(ctx, cid, listID)
	if err != nil {
		return t.env.failure("adding keywords to negative list", err)
	}
	if list == nil {
		return notFound("Negative keyword list " + listID)
	}
	listName := list.String("shared_set.name")

	setRN := googleads.ResourceName(cid, "sharedSets", listID)
	ops := make([]googleads.Operation, 0, len(kws))
	for _, k := range kws {
		ops = append(ops, googleads.Operation{
			Entity: googleads.EntitySharedCriterion,
			Create: map[string]any{
				"sharedSet": setRN,
				"keyword":   map[string]any{"text": k.Text, "matchType": k.MatchType},
			},
		})
	}
	bullets := keywordList(kws)

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntitySharedCriterion,
		action:  "adding keywords to negative list",
		title:   "Add to Negative List",
		name:    listName,
		changes: []mutate.Change{mutate.Text("keywords", "Existing keywords", fmt.Sprintf("Adding %d keywords", len(ops)))},
		details: "Keywords to add:\n" + bullets,
		ops:     ops,
	}); res != nil {
		return *res, nil
	}
	return textResult(fmt.Sprintf("✅ Keywords added to negative list successfully!\n\nList: %s\nKeywords added: %d\n\n%s", listName, len(ops), bullets))
}

type applyNegativeListTool struct{ env *Env }

// ApplyNegativeListToCampaigns constructs the apply_negative_list_to_campaigns tool.
func ApplyNegativeListToCampaigns(env *Env) *applyNegativeListTool {
	return &applyNegativeListTool{env: env}
}

func (t *applyNegativeListTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "apply_negative_list_to_campaigns",
		Description: "Attach a shared negative keyword list to one or more campaigns.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"list_id":      {Type: "string", Description: "Negative keyword list (shared set) ID"},
			"campaign_ids": {Type: "array", Items: &protocol.JSONSchema{Type: "string"}, Description: "Campaign IDs"},
		}, "list_id", "campaign_ids"),
	}
}

func (t *applyNegativeListTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		ListID      ID   `json:"list_id"`
		CampaignIDs []ID `json:"campaign_ids"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	listID, err := gaql.ID(string(args.ListID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("List ID is required")
	}
	if len(args.CampaignIDs) == 0 {
		return protocol.CallResult{}, invalidArgs("Campaign IDs array is required and must not be empty")
	}
	in, err := gaql.IDList(idStrings(args.CampaignIDs))
	if err != nil {
		return protocol.CallResult{}, invalidArgs(err.Error())
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	list, err := t.env.negativeList(ctx, cid, listID)
	if err != nil {
		return t.env.failure("applying negative list to campaigns", err)
	}
	if list == nil {
		return notFound("Negative keyword list " + listID)
	}
	listName := list.String("shared_set.name")

	rows, err := t.env.search(ctx, cid, gaql.Select("campaign.id", "campaign.name").
		From("campaign").Where("campaign.id IN "+in).String())
	if err != nil {
		return t.env.failure("applying negative list to campaigns", err)
	}
	names := map[string]string{}
	for _, r := range rows {
		names[r.String("campaign.id")] = r.String("campaign.name")
	}

	setRN := googleads.ResourceName(cid, "sharedSets", listID)
	ops := make([]googleads.Operation, 0, len(args.CampaignIDs))
	listed := make([]string, 0, len(args.CampaignIDs))
	for _, id := range idStrings(args.CampaignIDs) {
		ops = append(ops, googleads.Operation{
			Entity: googleads.EntityCampaignSharedSet,
			Create: map[string]any{
				"campaign":  googleads.ResourceName(cid, "campaigns", id),
				"sharedSet": setRN,
			},
		})
		name := names[id]
		if name == "" {
			name = "Campaign " + id
		}
		listed = append(listed, name)
	}
	bullets := bulletList(listed)

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityCampaignSharedSet,
		action:  "applying negative list to campaigns",
		title:   "Apply Negative List",
		name:    listName,
		changes: []mutate.Change{mutate.Text("campaigns", "None", fmt.Sprintf("Applying to %d campaigns", len(ops)))},
		details: "Campaigns:\n" + bullets,
		ops:     ops,
	}); res != nil {
		return *res, nil
	}
	return textResult(fmt.Sprintf("✅ Negative keyword list applied successfully!\n\nList: %s\nApplied to %d campaigns:\n\n%s", listName, len(ops), bullets))
}
