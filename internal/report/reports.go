package report

import (
	"fmt"
	"strings"
)

// Options carry the request filters echoed in a report header.
type Options struct {
	DateRange  string
	CampaignID string
}

// No-data messages, one per report kind.
const (
	NoGeoData      = "No geographic performance data found for the specified criteria."
	NoDeviceData   = "No device performance data found for the specified criteria."
	NoScheduleData = "No ad schedule performance data found for the specified criteria."

	NoDemographicData = "No demographic data found. This might be because:\n" +
		"- Demographic targeting is not enabled\n" +
		"- The account doesn't have enough data\n" +
		"- Privacy thresholds haven't been met"

	NoAudienceData = "No audience performance data found. This might be because:\n" +
		"- No audiences are currently targeted\n" +
		"- The selected date range has no audience data\n" +
		"- Audience targeting is not enabled for the campaigns"
)

func (o Options) meta() []Field {
	campaigns := Field{Label: "Campaigns", Value: "All Campaigns"}
	if o.CampaignID != "" {
		campaigns = Field{Label: "Campaign Filter", Value: o.CampaignID}
	}
	if o.DateRange == "" {
		return []Field{campaigns}
	}
	return []Field{{Label: "Date Range", Value: o.DateRange}, campaigns}
}

func trafficFields(t Totals, d Derived) []Field {
	return []Field{
		{Label: "Impressions", Value: Count(t.Impressions)},
		{Label: "Clicks", Value: Count(t.Clicks)},
		{Label: "CTR", Value: Percent(d.CTR, 2)},
		{Label: "Avg. CPC", Value: Money(d.AvgCPC)},
	}
}

func conversionFields(t Totals, d Derived) []Field {
	return []Field{
		{Label: "Conversions", Value: Decimal(t.Conversions)},
		{Label: "Conv. Rate", Value: Percent(d.ConvRate, 2)},
		{Label: "Cost/Conv", Value: Money(d.CostPerConversion)},
	}
}

func costField(t Totals) Field {
	return Field{Label: "Cost", Value: MoneyMicros(t.CostMicros)}
}

func totalsSummary(count Field, t Totals) Section {
	return Section{
		Title: "Summary",
		Fields: []Field{
			count,
			{Label: "Total Impressions", Value: Count(t.Impressions)},
			{Label: "Total Cost", Value: MoneyMicros(t.CostMicros)},
		},
	}
}

func countField(label string, n int) Field {
	return Field{Label: label, Value: fmt.Sprintf("%d", n)}
}

// shareField renders one group of a distribution listing with its bar.
func shareField(label string, share float64, impressions int64) Field {
	return Field{Label: label, Value: strings.TrimSpace(fmt.Sprintf("%s (%s impressions) %s", Percent(share, 1), Count(impressions), Bar(share)))}
}
