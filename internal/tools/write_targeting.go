package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

// locationArg is a geo target constant given as an id (string or number) or
// as {"id"|"location_id", "name"}.
type locationArg struct {
	ID   string
	Name string
}

func (l *locationArg) UnmarshalJSON(b []byte) error {
	var id ID
	if err := id.UnmarshalJSON(b); err == nil {
		*l = locationArg{ID: string(id)}
		return nil
	}
	var obj struct {
		ID         ID     `json:"id"`
		LocationID ID     `json:"location_id"`
		Name       string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("location must be an id or an object with id")
	}
	*l = locationArg{ID: string(obj.ID), Name: obj.Name}
	if l.ID == "" {
		l.ID = string(obj.LocationID)
	}
	return nil
}

func (l locationArg) String() string {
	if l.Name != "" {
		return fmt.Sprintf("%s (%s)", l.Name, l.ID)
	}
	return "Location ID: " + l.ID
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, s := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  • " + s)
	}
	return b.String()
}

var locationItemsSchema = &protocol.JSONSchema{
	Type: "object",
	Properties: map[string]protocol.JSONSchema{
		"id":   {Type: "string", Description: "Geo target constant ID (see search_location_targets)"},
		"name": {Type: "string", Description: "Display name"},
	},
	Required: []string{"id"},
}

// campaignRow looks up a campaign for a targeting write.
func (e *Env) campaignRow(ctx context.Context, customerID, campaignID string) (googleads.Row, error) {
	return e.firstRow(ctx, customerID, gaql.Select("campaign.id", "campaign.name").
		From("campaign").Where("campaign.id = "+campaignID).String())
}

type locationTargetsTool struct {
	env      *Env
	negative bool
}

// AddLocationTargets constructs the add_location_targets tool.
func AddLocationTargets(env *Env) *locationTargetsTool { return &locationTargetsTool{env: env} }

// ExcludeLocations constructs the exclude_locations tool.
func ExcludeLocations(env *Env) *locationTargetsTool {
	return &locationTargetsTool{env: env, negative: true}
}

func (t *locationTargetsTool) Descriptor() protocol.ToolDescriptor {
	name, desc := "add_location_targets", "Target a campaign at locations (countries, regions, cities) by geo target constant ID."
	if t.negative {
		name, desc = "exclude_locations", "Exclude locations from a campaign by geo target constant ID."
	}
	return protocol.ToolDescriptor{
		Name:        name,
		Description: desc,
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"campaign_id": {Type: "string", Description: "Campaign ID"},
			"locations":   {Type: "array", Items: locationItemsSchema, Description: "Location IDs or {id, name} objects"},
		}, "campaign_id", "locations"),
	}
}

func (t *locationTargetsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		CampaignID ID            `json:"campaign_id"`
		Locations  []locationArg `json:"locations"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	campaignID, err := gaql.ID(string(args.CampaignID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Campaign ID is required")
	}
	if len(args.Locations) == 0 {
		return protocol.CallResult{}, invalidArgs("Locations array is required and must not be empty")
	}
	for _, l := range args.Locations {
		if _, err := gaql.ID(l.ID); err != nil {
			return protocol.CallResult{}, invalidArgs("Each location must have a numeric ID")
		}
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	action := "adding location targets"
	if t.negative {
		action = "excluding locations"
	}
	campaign, err := t.env.campaignRow(ctx, cid, campaignID)
	if err != nil {
		return t.env.failure(action, err)
	}
	if campaign == nil {
		return notFound("Campaign " + campaignID)
	}
	campaignName := campaign.String("campaign.name")

	campaignRN := googleads.ResourceName(cid, "campaigns", campaignID)
	ops := make([]googleads.Operation, 0, len(args.Locations))
	listed := make([]string, 0, len(args.Locations))
	for _, l := range args.Locations {
		ops = append(ops, googleads.Operation{
			Entity: googleads.EntityCampaignCriterion,
			Create: map[string]any{
				"campaign": campaignRN,
				"location": map[string]any{"geoTargetConstant": "geoTargetConstants/" + l.ID},
				"negative": t.negative,
			},
		})
		listed = append(listed, l.String())
	}
	list := bulletList(listed)

	w := write{
		entity:  googleads.EntityCampaignCriterion,
		action:  action,
		title:   "Location Targeting",
		name:    campaignName,
		changes: []mutate.Change{mutate.Text("locations", "None", fmt.Sprintf("Adding %d locations", len(ops)))},
		details: "Locations to target:\n" + list,
		ops:     ops,
	}
	if t.negative {
		w.title = "Location Exclusions"
		w.changes = []mutate.Change{mutate.Text("excluded_locations", "None", fmt.Sprintf("Excluding %d locations", len(ops)))}
		w.details = "Locations to exclude:\n" + list
	}
	if _, res := t.env.apply(ctx, cid, guard, w); res != nil {
		return *res, nil
	}

	if t.negative {
		return textResult(fmt.Sprintf("✅ Location exclusions added successfully!\n\nCampaign: %s\nLocations excluded: %d\n\n%s", campaignName, len(ops), list))
	}
	return textResult(fmt.Sprintf("✅ Location targeting added successfully!\n\nCampaign: %s\nLocations added: %d\n\n%s", campaignName, len(ops), list))
}

type radiusTargetTool struct{ env *Env }

// AddRadiusTarget constructs the add_radius_target tool.
func AddRadiusTarget(env *Env) *radiusTargetTool { return &radiusTargetTool{env: env} }

func (t *radiusTargetTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "add_radius_target",
		Description: "Target a radius around a point (latitude/longitude, optionally with a street address).",
		InputSchema: writeSchema(map[string]protocol.JSONSchema{
			"campaign_id":  {Type: "string", Description: "Campaign ID"},
			"latitude":     {Type: "number", Description: "Latitude of the center point"},
			"longitude":    {Type: "number", Description: "Longitude of the center point"},
			"radius":       {Type: "number", Description: "Radius around the point"},
			"radius_units": {Type: "string", Enum: []string{"MILES", "KILOMETERS"}, Description: "Radius units (default: MILES)"},
			"address": {
				Type:        "object",
				Description: "Optional address of the center point",
				Properties: map[string]protocol.JSONSchema{
					"street":      {Type: "string"},
					"city":        {Type: "string"},
					"state":       {Type: "string"},
					"postal_code": {Type: "string"},
					"country":     {Type: "string", Description: "Two-letter country code"},
				},
			},
		}, "campaign_id", "latitude", "longitude", "radius"),
	}
}

type addressArg struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a addressArg) String() string {
	return strings.Join(strings.Fields(strings.Join([]string{a.Street, a.City, a.State}, " ")), " ")
}

func (t *radiusTargetTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		writeArgs
		CampaignID  ID          `json:"campaign_id"`
		Latitude    *float64    `json:"latitude"`
		Longitude   *float64    `json:"longitude"`
		Radius      float64     `json:"radius"`
		RadiusUnits string      `json:"radius_units"`
		Address     *addressArg `json:"address"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	campaignID, err := gaql.ID(string(args.CampaignID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs("Campaign ID is required")
	}
	if args.Latitude == nil || args.Longitude == nil {
		return protocol.CallResult{}, invalidArgs("Latitude and longitude are required")
	}
	lat, lon := *args.Latitude, *args.Longitude
	if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return protocol.CallResult{}, invalidArgs("latitude must be within ±90 and longitude within ±180")
	}
	if args.Radius <= 0 {
		return protocol.CallResult{}, invalidArgs("Radius is required")
	}
	units := strings.ToUpper(strings.TrimSpace(args.RadiusUnits))
	if units == "" {
		units = "MILES"
	}
	if units != "MILES" && units != "KILOMETERS" {
		return protocol.CallResult{}, invalidArgs("radius_units must be MILES or KILOMETERS")
	}
	cid, guard, guidance, rerr := t.env.begin(args.writeArgs)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	campaign, err := t.env.campaignRow(ctx, cid, campaignID)
	if err != nil {
		return t.env.failure("adding radius target", err)
	}
	if campaign == nil {
		return notFound("Campaign " + campaignID)
	}
	campaignName := campaign.String("campaign.name")

	proximity := map[string]any{
		"geoPoint": map[string]any{
			"latitudeInMicroDegrees":  int64(math.Round(lat * 1_000_000)),
			"longitudeInMicroDegrees": int64(math.Round(lon * 1_000_000)),
		},
		"radius":      args.Radius,
		"radiusUnits": units,
	}
	where := fmt.Sprintf("%g, %g", lat, lon)
	if args.Address != nil {
		proximity["address"] = map[string]any{
			"streetAddress": args.Address.Street,
			"cityName":      args.Address.City,
			"provinceCode":  args.Address.State,
			"postalCode":    args.Address.PostalCode,
			"countryCode":   strings.ToUpper(args.Address.Country),
		}
		if s := args.Address.String(); s != "" {
			where = s
		}
	}
	radius := fmt.Sprintf("%g %s", args.Radius, units)

	if _, res := t.env.apply(ctx, cid, guard, write{
		entity:  googleads.EntityCampaignCriterion,
		action:  "adding radius target",
		title:   "Radius Targeting",
		name:    campaignName,
		changes: []mutate.Change{mutate.Text("radius_target", "None", radius+" around "+where)},
		ops: []googleads.Operation{{
			Entity: googleads.EntityCampaignCriterion,
			Create: map[string]any{
				"campaign":  googleads.ResourceName(cid, "campaigns", campaignID),
				"proximity": proximity,
				"negative":  false,
			},
		}},
	}); res != nil {
		return *res, nil
	}
	return textResult(fmt.Sprintf("✅ Radius targeting added successfully!\n\nCampaign: %s\nLocation: %s\nRadius: %s", campaignName, where, radius))
}

type searchLocationsTool struct{ env *Env }

// SearchLocationTargets constructs the search_location_targets tool.
func SearchLocationTargets(env *Env) *searchLocationsTool { return &searchLocationsTool{env: env} }

func (t *searchLocationsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "search_location_targets",
		Description: "Search geo target constants by name to find location IDs for targeting (top 20).",
		InputSchema: objectSchema(map[string]protocol.JSONSchema{
			"query":        {Type: "string", Description: "Location name to search for (e.g., 'New York')"},
			"country_code": {Type: "string", Description: "Optional two-letter country code filter (e.g., 'US')"},
		}),
	}
}

func (t *searchLocationsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		CustomerID  string `json:"customer_id"`
		Query       string `json:"query"`
		CountryCode string `json:"country_code"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	q := strings.TrimSpace(args.Query)
	country := strings.ToUpper(strings.TrimSpace(args.CountryCode))
	if q == "" && country == "" {
		return protocol.CallResult{}, invalidArgs("Either query or country_code is required")
	}
	if country != "" && (len(country) != 2 || strings.Trim(country, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") != "") {
		return protocol.CallResult{}, invalidArgs("country_code must be a two-letter code")
	}
	cid, guidance, rerr := t.env.customer(args.CustomerID)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	query := gaql.Select(
		"geo_target_constant.id",
		"geo_target_constant.name",
		"geo_target_constant.country_code",
		"geo_target_constant.target_type",
		"geo_target_constant.status",
		"geo_target_constant.canonical_name",
	).From("geo_target_constant").
		WhereIf(q != "", "geo_target_constant.name LIKE "+gaql.Literal("%"+q+"%")).
		WhereIf(country != "", "geo_target_constant.country_code = "+gaql.Literal(country)).
		Where("geo_target_constant.status = 'ENABLED'").
		OrderBy("geo_target_constant.target_type").
		Limit(20).
		String()

	rows, err := t.env.search(ctx, cid, query)
	if err != nil {
		return t.env.failure("searching location targets", err)
	}
	if len(rows) == 0 {
		return textResult("No location targets found for your query.")
	}

	entries := make([]string, 0, len(rows))
	for _, r := range rows {
		e := fmt.Sprintf("• %s (ID: %s)\n  Type: %s\n  Country: %s",
			r.String("geo_target_constant.name"),
			r.String("geo_target_constant.id"),
			r.String("geo_target_constant.target_type"),
			r.String("geo_target_constant.country_code"))
		if full := r.String("geo_target_constant.canonical_name"); full != "" {
			e += "\n  Full name: " + full
		}
		entries = append(entries, e)
	}
	return textResult("📍 Location Search Results:\n\n" + strings.Join(entries, "\n\n") +
		"\n\nTo use these locations, provide the ID when calling add_location_targets.")
}
