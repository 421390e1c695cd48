package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts = Options{DateRange: "LAST_30_DAYS"}

func TestReportsNoData(t *testing.T) {
	cases := map[string]struct {
		doc  Document
		want string
	}{
		"geo":          {GeoReport(nil, opts), NoGeoData},
		"device":       {DeviceReport(nil, opts), NoDeviceData},
		"schedule":     {ScheduleReport(nil, opts), NoScheduleData},
		"audience":     {AudienceReport(nil, opts), NoAudienceData},
		"demographics": {DemographicsReport(nil, nil, opts), NoDemographicData},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, tc.doc.Empty())
			assert.Equal(t, tc.want, tc.doc.Render())
		})
	}
}

func TestDeviceReportRender(t *testing.T) {
	rows := []MetricRow{
		deviceRow("2", 100, 10, 5_000_000, 2),
		deviceRow("3", 50, 2, 1_000_000, 0),
	}
	out := DeviceReport(rows, Options{DateRange: "LAST_7_DAYS", CampaignID: "42"}).Render()

	assert.True(t, strings.HasPrefix(out, "# Device Performance Report"))
	assert.Contains(t, out, "- Date Range: LAST_7_DAYS")
	assert.Contains(t, out, "- Campaign Filter: 42")
	assert.Contains(t, out, "### MOBILE")
	assert.Contains(t, out, "- CTR: 10.00%")
	assert.Contains(t, out, "- Cost/Conv: $2.50")
	assert.Contains(t, out, "- MOBILE: 66.7% (100 impressions) "+strings.Repeat("█", 33)+"\n")
	assert.Contains(t, out, "- DESKTOP: 33.3% (50 impressions) "+strings.Repeat("█", 16)+"\n")
	assert.Contains(t, out, "- Total Devices: 2")
	assert.Contains(t, out, "- Total Impressions: 150")
	assert.Contains(t, out, "- Total Cost: $6.00")
	assert.Less(t, strings.Index(out, "### MOBILE"), strings.Index(out, "### DESKTOP"))
}

func TestDeviceReportAllZero(t *testing.T) {
	out := DeviceReport([]MetricRow{deviceRow("2", 0, 0, 0, 0)}, opts).Render()
	assert.Contains(t, out, "- CTR: 0.00%")
	assert.Contains(t, out, "- Avg. CPC: $0.00")
	assert.Contains(t, out, "- MOBILE: 0.0% (0 impressions)\n")
	assert.NotContains(t, out, "NaN")
}

func TestGeoReportCampaignBreakdown(t *testing.T) {
	loc := Location{Name: "Germany", CanonicalName: "Germany", CountryCode: "DE", TargetType: "Country"}
	rows := []MetricRow{
		{CampaignID: "1", CampaignName: "A", LocationID: "2276", Location: loc, Metrics: Metrics{Impressions: 10, Clicks: 1, CostMicros: 100_000}},
		{CampaignID: "2", CampaignName: "B", LocationID: "2276", Location: loc, Metrics: Metrics{Impressions: 30, Clicks: 3, CostMicros: 300_000}},
		{CampaignID: "1", CampaignName: "A", LocationID: "2276", Location: loc, Metrics: Metrics{Impressions: 25, Clicks: 2, CostMicros: 200_000}},
		{CampaignID: "3", CampaignName: "C", LocationID: "2276", Location: loc, Metrics: Metrics{Impressions: 1}},
		{CampaignID: "5", CampaignName: "E", LocationID: "2276", Location: loc},
		{CampaignID: "4", CampaignName: "D", LocationID: "2250", Location: Location{Name: "France", CountryCode: "FR"}, Metrics: Metrics{Impressions: 5}},
	}
	out := GeoReport(rows, opts).Render()

	assert.Contains(t, out, "### Germany (DE)")
	assert.Contains(t, out, "- Location ID: 2276")
	assert.Contains(t, out, "Campaign Breakdown (4 campaigns):")
	assert.Contains(t, out, "- A\n  Impressions: 35 | Clicks: 3 | Cost: $0.30")
	assert.NotContains(t, out, "- E\n")
	assert.Contains(t, out, "- Total Locations: 2")
	assert.Contains(t, out, "- Total Impressions: 71")
	assert.Less(t, strings.Index(out, "Germany (DE)"), strings.Index(out, "France (FR)"))
}

func TestDemographicsPartial(t *testing.T) {
	gender := []MetricRow{
		{CampaignName: "A", GenderResource: "customers/1/genderViews/1~10", Metrics: Metrics{Impressions: 60, Clicks: 6, CostMicros: 600_000, Conversions: 3}},
		{CampaignName: "A", GenderResource: "customers/1/genderViews/1~11", Metrics: Metrics{Impressions: 40}},
	}
	out := DemographicsReport(nil, gender, opts).Render()
	assert.NotContains(t, out, "Age Breakdown")
	assert.Contains(t, out, "## Gender Breakdown")
	assert.Contains(t, out, "- Cost/Conv: $0.20")
	assert.Contains(t, out, "### Gender Distribution")
	assert.Contains(t, out, "- Male: 60.0% "+strings.Repeat("█", 30))
	assert.Contains(t, out, "- Female: 40.0% "+strings.Repeat("█", 20))
}

func TestDemographicsAgeBlocks(t *testing.T) {
	age := []MetricRow{
		{CampaignName: "A", AgeRangeResource: "x~503001", Metrics: Metrics{Impressions: 5}},
		{CampaignName: "B", AgeRangeResource: "x~503001", Metrics: Metrics{Impressions: 5}},
		{CampaignName: "A", AgeRangeResource: "x~999", Metrics: Metrics{Impressions: 1}},
	}
	out := DemographicsReport(age, nil, opts).Render()
	assert.Contains(t, out, "### 18-24 Years")
	assert.Contains(t, out, "- Campaigns: 2")
	assert.Contains(t, out, "### Unknown Years")
	assert.NotContains(t, out, "Gender Breakdown")
}

func TestScheduleReport(t *testing.T) {
	rows := []MetricRow{
		{DayOfWeek: "FRIDAY", Hour: "9", Metrics: Metrics{Impressions: 200, Clicks: 20, Conversions: 2}},
		{DayOfWeek: "MONDAY", Hour: "9", Metrics: Metrics{Impressions: 100, Clicks: 5}},
		{DayOfWeek: "MONDAY", Hour: "23", Metrics: Metrics{Impressions: 150, Clicks: 30, Conversions: 6}},
		{DayOfWeek: "MONDAY", Hour: "1", Metrics: Metrics{Impressions: 20, Clicks: 1}},
	}
	out := ScheduleReport(rows, opts).Render()

	assert.Less(t, strings.Index(out, "### Monday"), strings.Index(out, "### Friday"))
	assert.Contains(t, out, "- 23:00: 150 impr, 20.0% CTR")
	assert.Contains(t, out, "### 09:00 - 10:00")
	assert.Contains(t, out, "### 23:00 - 00:00")
	assert.Contains(t, out, HeatmapHeader())
	assert.Contains(t, out, "- Highest CTR: 23:00 (20.00%), 09:00 (8.33%)")
	assert.Contains(t, out, "- Best Conv. Rate: 23:00 (20.00%), 09:00 (8.00%)")
	assert.Contains(t, out, "- Total Impressions: 470")
}

func TestAudienceReport(t *testing.T) {
	rows := []MetricRow{
		{CampaignName: "A", AdGroupName: "g1", AudienceID: "1", AudienceType: "USER_LIST", AudienceUserList: "customers/1/userLists/11", Metrics: Metrics{Impressions: 300, Clicks: 30, Conversions: 3}},
		{CampaignName: "B", AdGroupName: "g2", AudienceID: "1", AudienceType: "USER_LIST", AudienceUserList: "customers/1/userLists/11", Metrics: Metrics{Impressions: 100, Clicks: 5}},
		{CampaignName: "A", AdGroupName: "g1", AudienceID: "2", AudienceType: "USER_INTEREST", AudienceInterest: "customers/1/userInterests/92948", Metrics: Metrics{Impressions: 200, Clicks: 40, Conversions: 10}},
	}
	doc := AudienceReport(rows, opts)
	out := doc.Render()

	assert.Contains(t, out, "### REMARKETING LISTS (1 audiences)")
	assert.Contains(t, out, "- 1. List: 11 (ID: 1)")
	assert.Contains(t, out, "Campaigns: 2 | Ad Groups: 2")
	assert.Contains(t, out, "## Audience Type Distribution\n- Remarketing Lists: 66.7% (400 impressions) "+strings.Repeat("█", 33)+"\n")
	assert.Contains(t, out, "- Interest-based: 33.3% (200 impressions) "+strings.Repeat("█", 16)+"\n")
	assert.Contains(t, out, "- Best CTR: 92948 (20.00%)")
	assert.Contains(t, out, "- Best Conv. Rate: 92948 (25.00%)")
	assert.Contains(t, out, "- Total Audience Types: 2")
	assert.Contains(t, out, "- Total Unique Audiences: 2")

	require.Len(t, doc.Sections, 4)
	summary := doc.Sections[3]
	assert.Equal(t, "Total Unique Audiences", summary.Fields[1].Label)
}

func TestReportMetaWithoutDateRange(t *testing.T) {
	out := DeviceReport([]MetricRow{deviceRow("2", 10, 1, 0, 0)}, Options{}).Render()
	assert.NotContains(t, out, "Date Range")
	assert.Contains(t, out, "- Campaigns: All Campaigns")
}
