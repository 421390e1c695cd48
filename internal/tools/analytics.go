package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

// reportArgs are the filters shared by every analytics report.
type reportArgs struct {
	CustomerID     string `json:"customer_id"`
	DateRange      string `json:"date_range"`
	CampaignID     ID     `json:"campaign_id"`
	MinImpressions int64  `json:"min_impressions"`
}

// reportRequest is a validated reportArgs.
type reportRequest struct {
	customerID string
	dateRange  gaql.DateRange
	campaign   string
	minImpr    int64
}

func (r reportRequest) options() report.Options {
	return report.Options{DateRange: r.dateRange.String(), CampaignID: r.campaign}
}

// where adds the date, campaign and impression predicates.
func (r reportRequest) where(q *gaql.Query) *gaql.Query {
	q.Where(r.dateRange.Condition())
	if r.campaign != "" {
		q.Where("campaign.id = " + r.campaign)
	}
	return q.Where(fmt.Sprintf("metrics.impressions > %d", r.minImpr))
}

// resolveReport validates args and picks the account. A non-nil result is returned
// to the caller as-is.
func (e *Env) resolveReport(raw json.RawMessage) (reportRequest, *protocol.CallResult, *protocol.ResponseError) {
	var args reportArgs
	if err := decodeArgs(raw, &args); err != nil {
		return reportRequest{}, nil, err
	}
	dr, err := gaql.ParseDateRange(args.DateRange, gaql.DefaultDateRange)
	if err != nil {
		return reportRequest{}, nil, invalidArgs(err.Error())
	}
	if args.MinImpressions < 0 {
		return reportRequest{}, nil, invalidArgs("min_impressions must not be negative")
	}
	req := reportRequest{dateRange: dr, minImpr: args.MinImpressions}
	if args.CampaignID != "" {
		id, err := gaql.ID(string(args.CampaignID))
		if err != nil {
			return reportRequest{}, nil, invalidArgs("invalid campaign_id " + string(args.CampaignID))
		}
		req.campaign = id
	}
	cid, guidance, rerr := e.customer(args.CustomerID)
	if guidance != nil || rerr != nil {
		return reportRequest{}, guidance, rerr
	}
	req.customerID = cid
	return req, nil, nil
}

// fetchReport runs a report query and converts the rows for kind.
func (e *Env) fetchReport(ctx context.Context, req reportRequest, kind report.Kind, q *gaql.Query) ([]report.MetricRow, error) {
	rows, err := e.search(ctx, req.customerID, req.where(q).String())
	if err != nil {
		return nil, err
	}
	e.Metrics.ObserveRows(kind.String(), len(rows))
	return toMetricRows(kind, rows), nil
}

func reportSchema(extra map[string]protocol.JSONSchema) *protocol.JSONSchema {
	props := map[string]protocol.JSONSchema{
		"date_range":  {Type: "string", Description: "Date range: LAST_7_DAYS, LAST_30_DAYS (default), THIS_MONTH, LAST_MONTH, ... or YYYY-MM-DD:YYYY-MM-DD", Default: gaql.DefaultDateRange},
		"campaign_id": {Type: "string", Description: "Optional campaign ID to filter results"},
	}
	for k, v := range extra {
		props[k] = v
	}
	return objectSchema(props)
}

// reportTool is a single-query analytics report.
type reportTool struct {
	env   *Env
	desc  protocol.ToolDescriptor
	kind  report.Kind
	query func() *gaql.Query
	build func([]report.MetricRow, report.Options) report.Document
	// action names the fetch in error messages.
	action string
}

func (t *reportTool) Descriptor() protocol.ToolDescriptor { return t.desc }

func (t *reportTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	req, guidance, rerr := t.env.resolveReport(raw)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}
	rows, err := t.env.fetchReport(ctx, req, t.kind, t.query())
	if err != nil {
		return t.env.failure(t.action, err)
	}
	return textResult(t.build(rows, req.options()).Render())
}

// GeoPerformance constructs the get_geo_performance tool.
func GeoPerformance(env *Env) *reportTool {
	return &reportTool{
		env:    env,
		kind:   report.KindGeo,
		action: "fetching geographic performance",
		desc: protocol.ToolDescriptor{
			Name:        "get_geo_performance",
			Description: "Performance by geographic location (country/region/city) with a per-location campaign breakdown. Top 100 locations by impressions.",
			InputSchema: reportSchema(map[string]protocol.JSONSchema{
				"min_impressions": {Type: "integer", Description: "Minimum impressions threshold (default: 0)", Default: 0},
			}),
		},
		query: func() *gaql.Query {
			return gaql.Select(
				"campaign.id",
				"campaign.name",
				"geographic_view.country_criterion_id",
				"geographic_view.location_type",
				"geo_target_constant.name",
				"geo_target_constant.canonical_name",
				"geo_target_constant.country_code",
				"geo_target_constant.target_type",
				"metrics.impressions",
				"metrics.clicks",
				"metrics.cost_micros",
				"metrics.conversions",
				"metrics.ctr",
				"metrics.average_cpc",
				"metrics.cost_per_conversion",
				"metrics.all_conversions",
				"metrics.view_through_conversions",
			).From("geographic_view").OrderBy("metrics.impressions DESC").Limit(100)
		},
		build: report.GeoReport,
	}
}

// DevicePerformance constructs the get_device_performance tool.
func DevicePerformance(env *Env) *reportTool {
	return &reportTool{
		env:    env,
		kind:   report.KindDevice,
		action: "fetching device performance",
		desc: protocol.ToolDescriptor{
			Name:        "get_device_performance",
			Description: "Performance by device (mobile, desktop, tablet, connected TV) with engagement, search impression share, top ad groups and device share.",
			InputSchema: reportSchema(nil),
		},
		query: func() *gaql.Query {
			return gaql.Select(
				"campaign.id",
				"campaign.name",
				"ad_group.id",
				"ad_group.name",
				"segments.device",
				"metrics.impressions",
				"metrics.clicks",
				"metrics.cost_micros",
				"metrics.conversions",
				"metrics.ctr",
				"metrics.average_cpc",
				"metrics.cost_per_conversion",
				"metrics.average_cpm",
				"metrics.interaction_rate",
				"metrics.interactions",
				"metrics.video_views",
				"metrics.average_cpv",
				"metrics.search_impression_share",
			).From("ad_group").OrderBy("metrics.impressions DESC")
		},
		build: report.DeviceReport,
	}
}

// AdSchedule constructs the get_ad_schedule tool.
func AdSchedule(env *Env) *reportTool {
	return &reportTool{
		env:    env,
		kind:   report.KindHour,
		action: "fetching ad schedule performance",
		desc: protocol.ToolDescriptor{
			Name:        "get_ad_schedule",
			Description: "Performance by day of week and hour of day: best hours per day, peak hours, an hourly heatmap and scheduling insights.",
			InputSchema: reportSchema(nil),
		},
		query: func() *gaql.Query {
			return gaql.Select(
				"campaign.id",
				"campaign.name",
				"segments.hour",
				"segments.day_of_week",
				"metrics.impressions",
				"metrics.clicks",
				"metrics.cost_micros",
				"metrics.conversions",
				"metrics.ctr",
				"metrics.average_cpc",
				"metrics.conversion_rate",
				"metrics.cost_per_conversion",
			).From("campaign").OrderBy("segments.day_of_week").OrderBy("segments.hour")
		},
		build: report.ScheduleReport,
	}
}

// Audiences constructs the get_audiences tool.
func Audiences(env *Env) *reportTool {
	return &reportTool{
		env:    env,
		kind:   report.KindAudience,
		action: "fetching audience performance",
		desc: protocol.ToolDescriptor{
			Name:        "get_audiences",
			Description: "Audience performance grouped by audience type (affinity, in-market, remarketing, custom, combined) with top audiences and best performers.",
			InputSchema: reportSchema(nil),
		},
		query: func() *gaql.Query {
			return gaql.Select(
				"campaign.id",
				"campaign.name",
				"ad_group.id",
				"ad_group.name",
				"ad_group_criterion.criterion_id",
				"ad_group_criterion.type",
				"ad_group_criterion.user_interest.user_interest_category",
				"ad_group_criterion.user_list.user_list",
				"ad_group_criterion.custom_audience.custom_audience",
				"ad_group_criterion.combined_audience.combined_audience",
				"metrics.impressions",
				"metrics.clicks",
				"metrics.cost_micros",
				"metrics.conversions",
				"metrics.ctr",
				"metrics.average_cpc",
				"metrics.cost_per_conversion",
				"metrics.all_conversions",
			).From("ad_group_audience_view").OrderBy("metrics.impressions DESC").Limit(200)
		},
		build: report.AudienceReport,
	}
}

type demographicsTool struct{ env *Env }

// Demographics constructs the get_demographics tool.
func Demographics(env *Env) *demographicsTool { return &demographicsTool{env: env} }

func (t *demographicsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_demographics",
		Description: "Performance by age range and gender, with the gender and age distribution of impressions.",
		InputSchema: reportSchema(nil),
	}
}

func demographicQuery(view, criterion string) *gaql.Query {
	return gaql.Select(
		"campaign.id",
		"campaign.name",
		view+".resource_name",
		criterion,
		"metrics.impressions",
		"metrics.clicks",
		"metrics.cost_micros",
		"metrics.conversions",
		"metrics.ctr",
		"metrics.average_cpc",
		"metrics.conversion_rate",
		"metrics.cost_per_conversion",
	).From(view).OrderBy("metrics.impressions DESC")
}

func (t *demographicsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	req, guidance, rerr := t.env.resolveReport(raw)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	var age, gender []report.MetricRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		age, err = t.env.fetchReport(gctx, req, report.KindAge, demographicQuery("age_range_view", "ad_group_criterion.age_range.type"))
		return err
	})
	g.Go(func() error {
		var err error
		gender, err = t.env.fetchReport(gctx, req, report.KindGender, demographicQuery("gender_view", "ad_group_criterion.gender.type"))
		return err
	})
	if err := g.Wait(); err != nil {
		return t.env.failure("fetching demographic data", err)
	}
	return textResult(report.DemographicsReport(age, gender, req.options()).Render())
}
