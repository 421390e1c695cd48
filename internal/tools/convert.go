package tools

import (
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

func metricsOf(r googleads.Row) report.Metrics {
	return report.Metrics{
		Impressions:            r.Int("metrics.impressions"),
		Clicks:                 r.Int("metrics.clicks"),
		CostMicros:             r.Int("metrics.cost_micros"),
		Conversions:            r.Float("metrics.conversions"),
		AllConversions:         r.Float("metrics.all_conversions"),
		ViewThroughConversions: r.Float("metrics.view_through_conversions"),
		Interactions:           r.Int("metrics.interactions"),
		VideoViews:             r.Int("metrics.video_views"),
		SearchImpressionShare:  r.Float("metrics.search_impression_share"),
	}
}

func baseRow(r googleads.Row) report.MetricRow {
	return report.MetricRow{
		CampaignID:   r.String("campaign.id"),
		CampaignName: r.String("campaign.name"),
		AdGroupID:    r.String("ad_group.id"),
		AdGroupName:  r.String("ad_group.name"),
		Metrics:      metricsOf(r),
	}
}

// toMetricRows converts upstream rows for one report kind. Only the fields
// the kind's query selects are populated.
func toMetricRows(kind report.Kind, rows []googleads.Row) []report.MetricRow {
	out := make([]report.MetricRow, 0, len(rows))
	for _, r := range rows {
		m := baseRow(r)
		switch kind {
		case report.KindGeo:
			m.LocationID = r.String("geographic_view.country_criterion_id")
			m.Location = report.Location{
				Name:          r.String("geo_target_constant.name"),
				CanonicalName: r.String("geo_target_constant.canonical_name"),
				CountryCode:   r.String("geo_target_constant.country_code"),
				TargetType:    r.String("geo_target_constant.target_type"),
			}
		case report.KindDevice:
			m.Device = r.String("segments.device")
		case report.KindAge:
			m.AgeRangeResource = r.String("age_range_view.resource_name")
			m.AgeRange = r.String("ad_group_criterion.age_range.type")
		case report.KindGender:
			m.GenderResource = r.String("gender_view.resource_name")
			m.Gender = r.String("ad_group_criterion.gender.type")
		case report.KindHour, report.KindDay:
			m.Hour = r.String("segments.hour")
			m.DayOfWeek = r.String("segments.day_of_week")
		case report.KindAudienceType, report.KindAudience:
			m.AudienceID = r.String("ad_group_criterion.criterion_id")
			m.AudienceType = r.String("ad_group_criterion.type")
			m.AudienceInterest = r.String("ad_group_criterion.user_interest.user_interest_category")
			m.AudienceUserList = r.String("ad_group_criterion.user_list.user_list")
			m.AudienceCustom = r.String("ad_group_criterion.custom_audience.custom_audience")
			m.AudienceCombined = r.String("ad_group_criterion.combined_audience.combined_audience")
		}
		out = append(out, m)
	}
	return out
}
