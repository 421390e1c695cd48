package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

var matchTypes = []string{"EXACT", "PHRASE", "BROAD"}

const msgNoKeywords = "No keywords found with the provided IDs"

// keywordArg is a keyword given either as plain text or as
// {"text", "match_type", "cpc_bid"}.
type keywordArg struct {
	Text      string  `json:"text"`
	MatchType string  `json:"match_type"`
	CPCBid    float64 `json:"cpc_bid"`
}

func (k *keywordArg) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*k = keywordArg{Text: s}
		return nil
	}
	type plain keywordArg
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.New("keyword must be a string or an object with text")
	}
	*k = keywordArg(p)
	return nil
}

// normalize trims the text and defaults the match type to BROAD.
func (k keywordArg) normalize() (keywordArg, error) {
	k.Text = strings.TrimSpace(k.Text)
	if k.Text == "" {
		return k, errors.New("keyword text must not be empty")
	}
	k.MatchType = strings.ToUpper(strings.TrimSpace(k.MatchType))
	if k.MatchType == "" {
		k.MatchType = "BROAD"
	}
	if slices.Contains(matchTypes, k.MatchType) {
		return k, nil
	}
	return k, fmt.Errorf("invalid match_type %q for keyword %q", k.MatchType, k.Text)
}

func (k keywordArg) String() string {
	return fmt.Sprintf("%q (%s)", k.Text, k.MatchType)
}

func normalizeKeywords(in []keywordArg) ([]keywordArg, *protocol.ResponseError) {
	if len(in) == 0 {
		return nil, invalidArgs("Keywords array is required and must not be empty")
	}
	out := make([]keywordArg, 0, len(in))
	for _, k := range in {
		n, err := k.normalize()
		if err != nil {
			return nil, invalidArgs(err.Error())
		}
		out = append(out, n)
	}
	return out, nil
}

func keywordList(kws []keywordArg) string {
	var b strings.Builder
	for i, k := range kws {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  • " + k.String())
	}
	return b.String()
}

var keywordItemsSchema = &protocol.JSONSchema{
	Type: "object",
	Properties: map[string]protocol.JSONSchema{
		"text":       {Type: "string", Description: "Keyword text"},
		"match_type": {Type: "string", Enum: matchTypes, Description: "Match type (default: BROAD)"},
		"cpc_bid":    {Type: "number", Description: "Optional keyword-level max CPC bid"},
	},
	Required: []string{"text"},
}

type addKeywordsTool struct{ env *Env }

// AddKeywords constructs the add_keywords tool.
func AddKeywords(env *Env) *addKeywordsTool { return &addKeywordsTool{env: env} }

func (t *addKeywordsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "add_keywords",
		Description: "Add keywords to an ad group. Each keyword is a string (BROAD match) or an object with text, match_type and cpc_bid.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"ad_group_id": {Type: "string", Description: "Ad group ID to add keywords to"},
			"keywords":    {Type: "array", Items: keywordItemsSchema, Description: "Keywords to add"},
		}, "ad_group_id", "keywords"),
	}
}

func (t *addKeywordsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		AdGroupID ID           `json:"ad_group_id"`
		Keywords  []keywordArg `json:"keywords"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	adGroupID, err := gaql.ID(string(args.AdGroupID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Ad group ID is required")
	}
	kws, rerr := normalizeKeywords(args.Keywords)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	adGroup, err := t.env.firstRow(ctx, cid, gaql.Select("ad_group.id", "ad_group.name", "campaign.id", "campaign.name").
		From("ad_group").Where("ad_group.id = "+adGroupID).String())
	if err != nil {
		return t.env.failure("adding keywords", err)
	}
	if adGroup == nil {
		return notFound("Ad group " + adGroupID)
	}
	agName, campaignName := adGroup.String("ad_group.name"), adGroup.String("campaign.name")

	agRN := googleads.ResourceName(cid, "adGroups", adGroupID)
	ops := make([]googleads.Operation, 0, len(kws))
	for _, k := range kws {
		criterion := map[string]any{
			"adGroup": agRN,
			"status":  statusEnabled,
			"keyword": map[string]any{"text": k.Text, "matchType": k.MatchType},
		}
		if k.CPCBid > 0 {
			criterion["cpcBidMicros"] = mutate.Micros(k.CPCBid)
		}
		ops = append(ops, googleads.Operation{Entity: googleads.EntityAdGroupCriterion, Create: criterion})
	}

	list := keywordList(kws)
	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityAdGroupCriterion,
		action:  "adding keywords",
		title:   "Keywords",
		name:    fmt.Sprintf("%s (Campaign: %s)", agName, campaignName),
		changes: []mutate.Change{mutate.Text("keywords", "N/A", fmt.Sprintf("Adding %d keywords", len(ops)))},
		details: "Keywords to add:\n" + list,
		ops:     ops,
	}); res != nil {
		return *res, nil
	}

	return textResult(fmt.Sprintf("✅ Keywords added successfully!\n\nAd Group: %s\nCampaign: %s\nKeywords added: %d\n\n%s",
		agName, campaignName, len(ops), list))
}

// keywordIDsSchema is the criterion id list shared by keyword writes.
var keywordIDsSchema = protocol.JSONSchema{
	Type:        "array",
	Items:       &protocol.JSONSchema{Type: "string"},
	Description: "Keyword criterion IDs (see get_keywords)",
}

// lookupKeywords fetches keyword criteria by criterion id.
func (e *Env) lookupKeywords(ctx context.Context, customerID string, ids []ID) ([]googleads.Row, *protocol.ResponseError, error) {
	in, err := gaql.IDList(idStrings(ids))
	if err != nil {
		return nil, invalidArgs("Keyword IDs array is required"), nil
	}
	rows, err := e.search(ctx, customerID, gaql.Select(
		"ad_group_criterion.criterion_id",
		"ad_group_criterion.resource_name",
		"ad_group_criterion.keyword.text",
		"ad_group_criterion.keyword.match_type",
		"ad_group_criterion.cpc_bid_micros",
		"ad_group_criterion.negative",
		"ad_group_criterion.status",
		"ad_group.name",
		"campaign.name",
	).From("ad_group_criterion").
		Where("ad_group_criterion.type = 'KEYWORD'").
		Where("ad_group_criterion.criterion_id IN "+in).
		String())
	return rows, nil, err
}

type updateKeywordBidsTool struct{ env *Env }

// UpdateKeywordBids constructs the update_keyword_bids tool.
func UpdateKeywordBids(env *Env) *updateKeywordBidsTool { return &updateKeywordBidsTool{env: env} }

func (t *updateKeywordBidsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "update_keyword_bids",
		Description: "Set the max CPC bid of one or more keywords. Negative keywords are skipped.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"keyword_ids": keywordIDsSchema,
			"cpc_bid":     {Type: "number", Description: "New max CPC bid in currency units"},
		}, "keyword_ids", "cpc_bid"),
	}
}

func (t *updateKeywordBidsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		KeywordIDs []ID     `json:"keyword_ids"`
		CPCBid     *float64 `json:"cpc_bid"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	if len(args.KeywordIDs) == 0 {
		return protocol.CallResult{}, invalidArgs("Keyword IDs array is required")
	}
	if args.CPCBid == nil || *args.CPCBid <= 0 {
		return protocol.CallResult{}, invalidArgs("CPC bid is required")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	rows, rerr, err := t.env.lookupKeywords(ctx, cid, args.KeywordIDs)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	if err != nil {
		return t.env.failure("updating keyword bids", err)
	}
	if len(rows) == 0 {
		return protocol.ErrorText(msgNoKeywords), nil
	}

	newMicros := mutate.Micros(*args.CPCBid)
	var ops []googleads.Operation
	var changes []mutate.Change
	for _, r := range rows {
		text := r.String("ad_group_criterion.keyword.text")
		if r.Bool("ad_group_criterion.negative") {
			t.env.log().WithField("keyword", text).Debug("skipping negative keyword")
			continue
		}
		ops = append(ops, googleads.Operation{
			Entity:     googleads.EntityAdGroupCriterion,
			Update:     map[string]any{"resourceName": r.String("ad_group_criterion.resource_name"), "cpcBidMicros": newMicros},
			UpdateMask: []string{"cpc_bid_micros"},
		})
		c := mutate.Bid(r.Int("ad_group_criterion.cpc_bid_micros"), newMicros)
		c.Field = fmt.Sprintf("%q bid", text)
		changes = append(changes, c)
	}
	if len(ops) == 0 {
		return textResult("ℹ️  No keywords eligible for bid updates (all were negative keywords).")
	}

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityAdGroupCriterion,
		action:  "updating keyword bids",
		title:   "Keyword Bids",
		name:    fmt.Sprintf("%d keywords", len(ops)),
		changes: changes,
		ops:     ops,
	}); res != nil {
		return *res, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Keyword bids updated successfully!\n\nUpdated %d keywords to %s CPC\n", len(ops), report.MoneyMicros(newMicros))
	for _, c := range changes {
		fmt.Fprintf(&b, "\n  • %s: %s → %s", strings.TrimSuffix(c.Field, " bid"), report.MoneyMicros(c.OldMicros), report.MoneyMicros(c.NewMicros))
	}
	return textResult(b.String())
}

type pauseKeywordsTool struct{ env *Env }

// PauseKeywords constructs the pause_keywords tool.
func PauseKeywords(env *Env) *pauseKeywordsTool { return &pauseKeywordsTool{env: env} }

func (t *pauseKeywordsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "pause_keywords",
		Description: "Pause one or more keywords. Keywords already paused are skipped.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"keyword_ids": keywordIDsSchema,
		}, "keyword_ids"),
	}
}

func (t *pauseKeywordsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		KeywordIDs []ID `json:"keyword_ids"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	if len(args.KeywordIDs) == 0 {
		return protocol.CallResult{}, invalidArgs("Keyword IDs array is required")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	rows, rerr, err := t.env.lookupKeywords(ctx, cid, args.KeywordIDs)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	if err != nil {
		return t.env.failure("pausing keywords", err)
	}
	if len(rows) == 0 {
		return protocol.ErrorText(msgNoKeywords), nil
	}

	var ops []googleads.Operation
	for _, r := range rows {
		if r.String("ad_group_criterion.status") == statusPaused {
			continue
		}
		ops = append(ops, googleads.Operation{
			Entity:     googleads.EntityAdGroupCriterion,
			Update:     map[string]any{"resourceName": r.String("ad_group_criterion.resource_name"), "status": statusPaused},
			UpdateMask: []string{"status"},
		})
	}
	if len(ops) == 0 {
		return textResult("ℹ️  All selected keywords are already paused.")
	}

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityAdGroupCriterion,
		action:  "pausing keywords",
		title:   "Keywords",
		name:    fmt.Sprintf("%d keywords", len(ops)),
		changes: []mutate.Change{mutate.Status(statusEnabled, statusPaused)},
		ops:     ops,
	}); res != nil {
		return *res, nil
	}
	return textResult(fmt.Sprintf("✅ Keywords paused successfully!\n\nPaused %d keywords.", len(ops)))
}
