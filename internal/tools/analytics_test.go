package tools

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/metrics"
	"github.com/adsops/google-ads-mcp-server/internal/report"
)

func TestDevicePerformance(t *testing.T) {
	ads := &fakeAds{search: rowsFor("ad_group",
		row(t, `{"campaign":{"id":"1","name":"Brand"},"adGroup":{"id":"10","name":"Core"},"segments":{"device":"MOBILE"},"metrics":{"impressions":"1000","clicks":"50","costMicros":"25000000","conversions":2}}`),
		row(t, `{"campaign":{"id":"1","name":"Brand"},"adGroup":{"id":"10","name":"Core"},"segments":{"device":"DESKTOP"},"metrics":{"impressions":"500","clicks":"10","costMicros":"5000000"}}`),
	)}
	env := newEnv(ads)
	env.Metrics = metrics.NewMetrics("test")

	text, res, rerr := invoke(t, DevicePerformance(env), `{"date_range":"last_7_days","campaign_id":1}`)
	require.Nil(t, rerr)
	assert.False(t, res.IsError)
	assert.Contains(t, text, "Device Performance Report")
	assert.Contains(t, text, "MOBILE")
	assert.Contains(t, text, "DESKTOP")
	assert.Less(t, strings.Index(text, "MOBILE"), strings.Index(text, "DESKTOP"), "devices ranked by impressions")
	assert.Contains(t, text, "- MOBILE: 66.7% (1,000 impressions) "+strings.Repeat("█", 33))

	require.Len(t, ads.queries, 1)
	q := ads.queries[0]
	assert.Contains(t, q, "segments.date DURING LAST_7_DAYS")
	assert.Contains(t, q, "campaign.id = 1")
	assert.Contains(t, q, "metrics.impressions > 0")
}

func TestGeoPerformance(t *testing.T) {
	germany := `"geographicView":{"countryCriterionId":"2276","locationType":"AREA_OF_INTEREST"},"geoTargetConstant":{"name":"Germany","canonicalName":"Germany","countryCode":"DE","targetType":"Country"}`
	ads := &fakeAds{search: rowsFor("geographic_view",
		row(t, `{"campaign":{"id":"1","name":"Brand"},`+germany+`,"metrics":{"impressions":"300","clicks":"30","costMicros":"3000000"}}`),
		row(t, `{"campaign":{"id":"2","name":"Generic"},`+germany+`,"metrics":{"impressions":"100","clicks":"5","costMicros":"1000000"}}`),
		row(t, `{"campaign":{"id":"1","name":"Brand"},"geographicView":{"countryCriterionId":"2250"},"geoTargetConstant":{"name":"France","countryCode":"FR"},"metrics":{"impressions":"50"}}`),
	)}

	text, res, rerr := invoke(t, GeoPerformance(newEnv(ads)), `{}`)
	require.Nil(t, rerr)
	assert.False(t, res.IsError)
	assert.Contains(t, text, "### Germany (DE)")
	assert.Contains(t, text, "- Type: Country")
	assert.Contains(t, text, "- Location ID: 2276")
	assert.Contains(t, text, "Campaign Breakdown (2 campaigns):\n- Brand\n  Impressions: 300 | Clicks: 30 | Cost: $3.00")
	assert.Contains(t, text, "### France (FR)")
	assert.Contains(t, text, "- Total Locations: 2")
	assert.Less(t, strings.Index(text, "Germany (DE)"), strings.Index(text, "France (FR)"))

	require.Len(t, ads.queries, 1)
	assert.Contains(t, ads.queries[0], "FROM geographic_view")
	assert.Contains(t, ads.queries[0], "LIMIT 100")
}

func TestAdSchedule(t *testing.T) {
	ads := &fakeAds{search: rowsFor("campaign",
		row(t, `{"campaign":{"id":"1","name":"Brand"},"segments":{"hour":0,"dayOfWeek":"TUESDAY"},"metrics":{"impressions":"500","clicks":"50"}}`),
		row(t, `{"campaign":{"id":"1","name":"Brand"},"segments":{"hour":5,"dayOfWeek":"MONDAY"},"metrics":{"impressions":"150","clicks":"3"}}`),
	)}

	text, _, rerr := invoke(t, AdSchedule(newEnv(ads)), `{"date_range":"LAST_MONTH"}`)
	require.Nil(t, rerr)
	assert.Contains(t, text, "# Ad Schedule Performance Report")
	assert.Contains(t, text, "### Monday")
	assert.Contains(t, text, "### Tuesday")
	assert.Less(t, strings.Index(text, "### Monday"), strings.Index(text, "### Tuesday"))
	assert.Contains(t, text, "- 05:00: 150 impr, 2.0% CTR")
	assert.Contains(t, text, "### 00:00 - 01:00")
	assert.Contains(t, text, "\n      █"+strings.Repeat(" ", 9)+"░\n")
	assert.Contains(t, text, "- Highest CTR: 00:00 (10.00%), 05:00 (2.00%)")

	require.Len(t, ads.queries, 1)
	assert.Contains(t, ads.queries[0], "segments.date DURING LAST_MONTH")
}

func TestAudiences(t *testing.T) {
	ads := &fakeAds{search: rowsFor("ad_group_audience_view",
		row(t, `{"campaign":{"id":"1","name":"Brand"},"adGroup":{"id":"10","name":"Core"},"adGroupCriterion":{"criterionId":"77","type":"USER_LIST","userList":{"userList":"customers/1/userLists/55"}},"metrics":{"impressions":"300","clicks":"30"}}`),
		row(t, `{"campaign":{"id":"2","name":"Generic"},"adGroup":{"id":"20","name":"Wide"},"adGroupCriterion":{"criterionId":"88","type":"USER_INTEREST","userInterest":{"userInterestCategory":"customers/1/userInterests/92948"}},"metrics":{"impressions":"100","clicks":"2"}}`),
	)}

	text, _, rerr := invoke(t, Audiences(newEnv(ads)), `{}`)
	require.Nil(t, rerr)
	assert.Contains(t, text, "### REMARKETING LISTS (1 audiences)")
	assert.Contains(t, text, "- 1. List: 55 (ID: 77)")
	assert.Contains(t, text, "### INTEREST-BASED (1 audiences)")
	assert.Contains(t, text, "- 1. 92948 (ID: 88)")
	assert.Contains(t, text, "- Remarketing Lists: 75.0% (300 impressions) "+strings.Repeat("█", 37)+"\n")
	assert.Contains(t, text, "- Interest-based: 25.0% (100 impressions) "+strings.Repeat("█", 12)+"\n")
	assert.Contains(t, text, "- Total Unique Audiences: 2")
	assert.NotContains(t, text, "Unknown")

	require.Len(t, ads.queries, 1)
	assert.Contains(t, ads.queries[0], "LIMIT 200")
}

func TestReportNoData(t *testing.T) {
	env := newEnv(&fakeAds{})
	cases := map[string]struct {
		tool *reportTool
		want string
	}{
		"device":   {DevicePerformance(env), report.NoDeviceData},
		"geo":      {GeoPerformance(env), report.NoGeoData},
		"schedule": {AdSchedule(env), report.NoScheduleData},
		"audience": {Audiences(env), report.NoAudienceData},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			text, _, rerr := invoke(t, tc.tool, `{}`)
			require.Nil(t, rerr)
			assert.Equal(t, tc.want, text)
		})
	}
}

func TestReportArgumentValidation(t *testing.T) {
	ads := &fakeAds{}
	env := newEnv(ads)

	_, _, rerr := invoke(t, GeoPerformance(env), `{"date_range":"SOMETIME"}`)
	require.NotNil(t, rerr)
	assert.Equal(t, -32602, rerr.Code)

	_, _, rerr = invoke(t, GeoPerformance(env), `{"min_impressions":-1}`)
	require.NotNil(t, rerr)

	_, _, rerr = invoke(t, GeoPerformance(env), `{"campaign_id":"1 OR 1=1"}`)
	require.NotNil(t, rerr)
	assert.Empty(t, ads.queries, "invalid input must not reach the API")

	_, _, rerr = invoke(t, GeoPerformance(env), `{"min_impressions":25,"date_range":"2026-01-01:2026-01-31"}`)
	require.Nil(t, rerr)
	require.Len(t, ads.queries, 1)
	assert.Contains(t, ads.queries[0], "metrics.impressions > 25")
	assert.Contains(t, ads.queries[0], "segments.date BETWEEN '2026-01-01' AND '2026-01-31'")
	assert.Contains(t, ads.queries[0], "LIMIT 100")
}

func TestDemographicsFetchesBothViews(t *testing.T) {
	ads := &fakeAds{search: func(_, query string) ([]googleads.Row, error) {
		switch {
		case strings.Contains(query, "FROM age_range_view"):
			return []googleads.Row{
				row(t, `{"campaign":{"id":"1","name":"Brand"},"adGroupCriterion":{"ageRange":{"type":"AGE_RANGE_18_24"}},"metrics":{"impressions":"300","clicks":"9"}}`),
			}, nil
		case strings.Contains(query, "FROM gender_view"):
			return []googleads.Row{
				row(t, `{"campaign":{"id":"1","name":"Brand"},"adGroupCriterion":{"gender":{"type":"FEMALE"}},"metrics":{"impressions":"200","clicks":"4"}}`),
			}, nil
		}
		return nil, nil
	}}

	text, _, rerr := invoke(t, Demographics(newEnv(ads)), `{}`)
	require.Nil(t, rerr)
	assert.Contains(t, text, "Demographic Performance Report")
	assert.Contains(t, text, "18-24 Years")
	assert.Contains(t, text, "Female")
	assert.Contains(t, text, "Gender Distribution")
	assert.Len(t, ads.queries, 2)
}

func TestDemographicsNoDataAndFailure(t *testing.T) {
	text, _, rerr := invoke(t, Demographics(newEnv(&fakeAds{})), `{}`)
	require.Nil(t, rerr)
	assert.Equal(t, report.NoDemographicData, text)

	ads := &fakeAds{search: func(_, query string) ([]googleads.Row, error) {
		if strings.Contains(query, "gender_view") {
			return nil, errors.New("quota exhausted")
		}
		return nil, nil
	}}
	text, res, rerr := invoke(t, Demographics(newEnv(ads)), `{}`)
	require.Nil(t, rerr)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error fetching demographic data: quota exhausted", text)
}
