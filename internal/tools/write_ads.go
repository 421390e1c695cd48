package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

// Responsive search ad asset limits.
const (
	minHeadlines      = 3
	maxHeadlines      = 15
	maxHeadlineLen    = 30
	minDescriptions   = 2
	maxDescriptions   = 4
	maxDescriptionLen = 90
	maxPathLen        = 15
)

// assetArg is an ad text asset given as plain text or as
// {"text", "pinned_field"}. pinned_field is a position (1, 2, 3) or the full
// enum name (HEADLINE_1).
type assetArg struct {
	Text   string
	Pinned string
}

func (a *assetArg) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = assetArg{Text: s}
		return nil
	}
	var obj struct {
		Text   string          `json:"text"`
		Pinned json.RawMessage `json:"pinned_field"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("asset must be a string or an object with text")
	}
	*a = assetArg{Text: obj.Text}
	if len(obj.Pinned) == 0 || string(obj.Pinned) == "null" {
		return nil
	}
	var pos json.Number
	if err := json.Unmarshal(obj.Pinned, &pos); err == nil {
		a.Pinned = pos.String()
		return nil
	}
	if err := json.Unmarshal(obj.Pinned, &a.Pinned); err != nil {
		return errors.New("pinned_field must be a number or string")
	}
	return nil
}

// assets validates a headline or description list and renders the API form.
func assets(kind string, in []assetArg, min, max, maxLen int) ([]map[string]any, error) {
	label := strings.ToLower(kind) + "s"
	if len(in) < min {
		return nil, fmt.Errorf("At least %d %s are required for responsive search ads", min, label)
	}
	if len(in) > max {
		return nil, fmt.Errorf("At most %d %s are allowed", max, label)
	}
	out := make([]map[string]any, 0, len(in))
	for i, a := range in {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			return nil, fmt.Errorf("%s %d is empty", kind, i+1)
		}
		if n := utf8.RuneCountInString(text); n > maxLen {
			return nil, fmt.Errorf("%s %q is %d characters (max %d)", kind, text, n, maxLen)
		}
		asset := map[string]any{"text": text}
		if a.Pinned != "" {
			field, err := pinnedField(kind, a.Pinned)
			if err != nil {
				return nil, err
			}
			asset["pinnedField"] = field
		}
		out = append(out, asset)
	}
	return out, nil
}

func pinnedField(kind, raw string) (string, error) {
	prefix := strings.ToUpper(kind) + "_"
	v := strings.ToUpper(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, prefix)
	n, err := strconv.Atoi(v)
	limit := 3
	if kind == "Description" {
		limit = 2
	}
	if err != nil || n < 1 || n > limit {
		return "", fmt.Errorf("invalid pinned_field %q for %s (1-%d)", raw, strings.ToLower(kind), limit)
	}
	return prefix + strconv.Itoa(n), nil
}

func assetLines(in []assetArg) string {
	var b strings.Builder
	for i, a := range in {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %d. %s", i+1, strings.TrimSpace(a.Text))
		if a.Pinned != "" {
			fmt.Fprintf(&b, " (pinned to position %s)", a.Pinned)
		}
	}
	return b.String()
}

func validURLs(urls []string) error {
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("final URL %q must start with http:// or https://", u)
		}
	}
	return nil
}

var assetSchema = &protocol.JSONSchema{
	Type: "object",
	Properties: map[string]protocol.JSONSchema{
		"text":         {Type: "string"},
		"pinned_field": {Type: "integer", Description: "Pin to position (headlines 1-3, descriptions 1-2)"},
	},
	Required: []string{"text"},
}

type createRSATool struct{ env *Env }

// CreateResponsiveSearchAd constructs the create_responsive_search_ad tool.
func CreateResponsiveSearchAd(env *Env) *createRSATool { return &createRSATool{env: env} }

func (t *createRSATool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "create_responsive_search_ad",
		Description: "Create a responsive search ad: 3-15 headlines (max 30 chars), 2-4 descriptions (max 90 chars) and at least one final URL. Ads are created PAUSED unless status is ENABLED.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"ad_group_id":  {Type: "string", Description: "Ad group ID to create the ad in"},
			"headlines":    {Type: "array", Items: assetSchema, Description: "Headlines (strings or {text, pinned_field})"},
			"descriptions": {Type: "array", Items: assetSchema, Description: "Descriptions (strings or {text, pinned_field})"},
			"final_urls":   {Type: "array", Items: &protocol.JSONSchema{Type: "string"}, Description: "Landing page URLs"},
			"path1":        {Type: "string", Description: "First display URL path (max 15 chars)"},
			"path2":        {Type: "string", Description: "Second display URL path (max 15 chars)"},
			"status":       {Type: "string", Enum: []string{statusEnabled, statusPaused}, Description: "Ad status (defaults to PAUSED)"},
		}, "ad_group_id", "headlines", "descriptions", "final_urls"),
	}
}

func (t *createRSATool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		AdGroupID    ID         `json:"ad_group_id"`
		Headlines    []assetArg `json:"headlines"`
		Descriptions []assetArg `json:"descriptions"`
		FinalURLs    []string   `json:"final_urls"`
		Path1        string     `json:"path1"`
		Path2        string     `json:"path2"`
		Status       string     `json:"status"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	adGroupID, err := gaql.ID(string(args.AdGroupID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Ad group ID is required")
	}
	headlines, err := assets("Headline", args.Headlines, minHeadlines, maxHeadlines, maxHeadlineLen)
	if err != nil {
		return protocol.CallResult{}, invalidArgs(err.Error())
	}
	descriptions, err := assets("Description", args.Descriptions, minDescriptions, maxDescriptions, maxDescriptionLen)
	if err != nil {
		return protocol.CallResult{}, invalidArgs(err.Error())
	}
	if len(args.FinalURLs) == 0 {
		return protocol.CallResult{}, invalidArgs("At least one final URL is required")
	}
	if err := validURLs(args.FinalURLs); err != nil {
		return protocol.CallResult{}, invalidArgs(err.Error())
	}
	if utf8.RuneCountInString(args.Path1) > maxPathLen || utf8.RuneCountInString(args.Path2) > maxPathLen {
		return protocol.CallResult{}, invalidArgs(fmt.Sprintf("display paths are limited to %d characters", maxPathLen))
	}
	if args.Path2 != "" && args.Path1 == "" {
		return protocol.CallResult{}, invalidArgs("path2 requires path1")
	}
	status, rerr := parseStatus(args.Status, statusPaused, statusEnabled, statusPaused)
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
		return t.env.failure("creating ad", err)
	}
	if adGroup == nil {
		return notFound("Ad group " + adGroupID)
	}
	agName := adGroup.String("ad_group.name")

	rsa := map[string]any{"headlines": headlines, "descriptions": descriptions}
	if args.Path1 != "" {
		rsa["path1"] = args.Path1
	}
	if args.Path2 != "" {
		rsa["path2"] = args.Path2
	}
	adGroupAd := map[string]any{
		"adGroup": googleads.ResourceName(cid, "adGroups", adGroupID),
		"status":  status,
		"ad": map[string]any{
			"finalUrls":          args.FinalURLs,
			"responsiveSearchAd": rsa,
		},
	}

	details := "Headlines:\n" + assetLines(args.Headlines) +
		"\n\nDescriptions:\n" + assetLines(args.Descriptions) +
		"\n\nFinal URLs: " + strings.Join(args.FinalURLs, ", ")
	if args.Path1 != "" {
		details += "\nDisplay path: " + strings.Trim(args.Path1+"/"+args.Path2, "/")
	}

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity: googleads.EntityAdGroupAd,
		action: "creating ad",
		title:  "Responsive Search Ad",
		name:   agName,
		changes: []mutate.Change{
			mutate.Text("ad", "N/A", fmt.Sprintf("%d headlines, %d descriptions", len(headlines), len(descriptions))),
		},
		details: details,
		ops:     []googleads.Operation{{Entity: googleads.EntityAdGroupAd, Create: adGroupAd}},
	}); res != nil {
		return *res, nil
	}

	msg := fmt.Sprintf("✅ Responsive search ad created successfully!\n\nAd Group: %s\nCampaign: %s\nStatus: %s\n\nHeadlines: %d\nDescriptions: %d",
		agName, adGroup.String("campaign.name"), status, len(headlines), len(descriptions))
	if status == statusPaused {
		msg += "\n\nℹ️  Ad created in PAUSED status for safety. Use update_ad_status to enable it."
	}
	return textResult(msg)
}

type updateAdStatusTool struct{ env *Env }

// UpdateAdStatus constructs the update_ad_status tool.
func UpdateAdStatus(env *Env) *updateAdStatusTool { return &updateAdStatusTool{env: env} }

func (t *updateAdStatusTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "update_ad_status",
		Description: "Enable, pause or remove ads. Ads already in the requested status are skipped.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"ad_ids": {Type: "array", Items: &protocol.JSONSchema{Type: "string"}, Description: "Ad IDs (see get_ads)"},
			"status": {Type: "string", Enum: []string{statusEnabled, statusPaused, statusRemoved}, Description: "New ad status"},
		}, "ad_ids", "status"),
	}
}

func (t *updateAdStatusTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		AdIDs  []ID   `json:"ad_ids"`
		Status string `json:"status"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	in, err := gaql.IDList(idStrings(args.AdIDs))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Ad IDs array is required")
	}
	if strings.TrimSpace(args.Status) == "" {
		return protocol.CallResult{}, invalidArgs("Status is required (ENABLED, PAUSED, or REMOVED)")
	}
	status, rerr := parseStatus(args.Status, "", statusEnabled, statusPaused, statusRemoved)
	if rerr != nil {
		return protocol.CallResult{}, rerr
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	rows, err := t.env.search(ctx, cid, gaql.Select(
		"ad_group_ad.ad.id",
		"ad_group_ad.ad.name",
		"ad_group_ad.status",
		"ad_group_ad.resource_name",
		"ad_group.name",
		"campaign.name",
	).From("ad_group_ad").Where("ad_group_ad.ad.id IN "+in).String())
	if err != nil {
		return t.env.failure("updating ad status", err)
	}
	if len(rows) == 0 {
		return protocol.ErrorText("No ads found with the provided IDs"), nil
	}

	var ops []googleads.Operation
	oldStatus := ""
	for _, r := range rows {
		current := r.String("ad_group_ad.status")
		if current == status {
			continue
		}
		if oldStatus == "" {
			oldStatus = current
		}
		ops = append(ops, googleads.Operation{
			Entity:     googleads.EntityAdGroupAd,
			Update:     map[string]any{"resourceName": r.String("ad_group_ad.resource_name"), "status": status},
			UpdateMask: []string{"status"},
		})
	}
	if len(ops) == 0 {
		return textResult(fmt.Sprintf("ℹ️  All selected ads are already %s.", status))
	}

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityAdGroupAd,
		action:  "updating ad status",
		title:   "Ad Status",
		name:    fmt.Sprintf("%d ads", len(ops)),
		changes: []mutate.Change{mutate.Status(oldStatus, status)},
		ops:     ops,
	}); res != nil {
		return *res, nil
	}

	msg := fmt.Sprintf("✅ Ad status updated successfully!\n\nUpdated %d ads to %s.", len(ops), status)
	if status == statusEnabled {
		msg += "\n\n⚡ Ads are now live and serving!"
	}
	return textResult(msg)
}

type updateRSATool struct{ env *Env }

// UpdateResponsiveSearchAd constructs the update_responsive_search_ad tool.
func UpdateResponsiveSearchAd(env *Env) *updateRSATool { return &updateRSATool{env: env} }

func (t *updateRSATool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "update_responsive_search_ad",
		Description: "Replace the headlines, descriptions or final URLs of a responsive search ad. Omitted fields are left unchanged.",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"ad_id":        {Type: "string", Description: "Ad ID to update"},
			"headlines":    {Type: "array", Items: assetSchema, Description: "New headlines (3-15)"},
			"descriptions": {Type: "array", Items: assetSchema, Description: "New descriptions (2-4)"},
			"final_urls":   {Type: "array", Items: &protocol.JSONSchema{Type: "string"}, Description: "New final URLs"},
		}, "ad_id"),
	}
}

func (t *updateRSATool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		AdID         ID         `json:"ad_id"`
		Headlines    []assetArg `json:"headlines"`
		Descriptions []assetArg `json:"descriptions"`
		FinalURLs    []string   `json:"final_urls"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	adID, err := gaql.ID(string(args.AdID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Ad ID is required")
	}
	if args.Headlines == nil && args.Descriptions == nil && args.FinalURLs == nil {
		return textResult("ℹ️  No changes specified. Please provide headlines, descriptions, or final_urls to update.")
	}

	rsa := map[string]any{}
	var mask []string
	if args.Headlines != nil {
		h, err := assets("Headline", args.Headlines, minHeadlines, maxHeadlines, maxHeadlineLen)
		if err != nil {
			return protocol.CallResult{}, invalidArgs(err.Error())
		}
		rsa["headlines"] = h
		mask = append(mask, "responsive_search_ad.headlines")
	}
	if args.Descriptions != nil {
		d, err := assets("Description", args.Descriptions, minDescriptions, maxDescriptions, maxDescriptionLen)
		if err != nil {
			return protocol.CallResult{}, invalidArgs(err.Error())
		}
		rsa["descriptions"] = d
		mask = append(mask, "responsive_search_ad.descriptions")
	}
	if args.FinalURLs != nil {
		if len(args.FinalURLs) == 0 {
			return protocol.CallResult{}, invalidArgs("At least one final URL is required")
		}
		if err := validURLs(args.FinalURLs); err != nil {
			return protocol.CallResult{}, invalidArgs(err.Error())
		}
		mask = append(mask, "final_urls")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	current, err := t.env.firstRow(ctx, cid, gaql.Select(
		"ad_group_ad.ad.id",
		"ad_group_ad.ad.responsive_search_ad.headlines",
		"ad_group_ad.ad.responsive_search_ad.descriptions",
		"ad_group_ad.ad.final_urls",
		"ad_group_ad.ad.resource_name",
		"ad_group.name",
		"campaign.name",
	).From("ad_group_ad").
		Where("ad_group_ad.ad.id = "+adID).
		Where("ad_group_ad.ad.type = 'RESPONSIVE_SEARCH_AD'").
		String())
	if err != nil {
		return t.env.failure("updating ad", err)
	}
	if current == nil {
		return notFound("Responsive search ad " + adID)
	}

	update := map[string]any{"resourceName": current.String("ad_group_ad.ad.resource_name")}
	if len(rsa) > 0 {
		update["responsiveSearchAd"] = rsa
	}
	var changes []mutate.Change
	if args.Headlines != nil {
		old := len(current.Objects("ad_group_ad.ad.responsive_search_ad.headlines"))
		changes = append(changes, mutate.Text("headlines", fmt.Sprintf("%d headlines", old), fmt.Sprintf("%d headlines", len(args.Headlines))))
	}
	if args.Descriptions != nil {
		old := len(current.Objects("ad_group_ad.ad.responsive_search_ad.descriptions"))
		changes = append(changes, mutate.Text("descriptions", fmt.Sprintf("%d descriptions", old), fmt.Sprintf("%d descriptions", len(args.Descriptions))))
	}
	if args.FinalURLs != nil {
		update["finalUrls"] = args.FinalURLs
		changes = append(changes, mutate.Text("final_urls", strings.Join(current.Strings("ad_group_ad.ad.final_urls"), ", "), strings.Join(args.FinalURLs, ", ")))
	}

	agName := current.String("ad_group.name")
	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityAd,
		action:  "updating ad",
		title:   "Responsive Search Ad",
		name:    agName,
		changes: changes,
		ops:     []googleads.Operation{{Entity: googleads.EntityAd, Update: update, UpdateMask: mask}},
	}); res != nil {
		return *res, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Ad updated successfully!\n\nAd Group: %s\nCampaign: %s\n", agName, current.String("campaign.name"))
	for _, c := range changes {
		fmt.Fprintf(&b, "\n%s: %s", c.Field, c.New)
	}
	return textResult(b.String())
}
