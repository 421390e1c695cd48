package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEnumerated(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		row  MetricRow
		want string
	}{
		{"device code", KindDevice, MetricRow{Device: "5"}, "CONNECTED_TV"},
		{"device enum", KindDevice, MetricRow{Device: "tablet"}, "TABLET"},
		{"device unknown", KindDevice, MetricRow{Device: "99"}, UnknownLabel},
		{"age from resource", KindAge, MetricRow{AgeRangeResource: "customers/1/ageRangeViews/22~503002"}, "25-34"},
		{"age from enum", KindAge, MetricRow{AgeRange: "AGE_RANGE_65_UP"}, "65+"},
		{"age resource without code", KindAge, MetricRow{AgeRangeResource: "customers/1/ageRangeViews/22", AgeRange: "AGE_RANGE_18_24"}, "18-24"},
		{"age unknown code", KindAge, MetricRow{AgeRangeResource: "x~123"}, UnknownLabel},
		{"gender", KindGender, MetricRow{GenderResource: "customers/1/genderViews/9~11"}, "Female"},
		{"gender enum", KindGender, MetricRow{Gender: "MALE"}, "Male"},
		{"day code", KindDay, MetricRow{DayOfWeek: "8"}, "Sunday"},
		{"day unknown", KindDay, MetricRow{DayOfWeek: "UNSPECIFIED"}, UnknownLabel},
		{"hour", KindHour, MetricRow{Hour: "7"}, "07:00"},
		{"hour out of range", KindHour, MetricRow{Hour: "24"}, UnknownLabel},
		{"audience type", KindAudienceType, MetricRow{AudienceType: "USER_LIST"}, "Remarketing Lists"},
		{"audience type raw", KindAudienceType, MetricRow{AudienceType: "LIFE_EVENT"}, "LIFE_EVENT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.kind, tc.row).Label)
		})
	}
}

func TestExtractIdentifiers(t *testing.T) {
	k := Extract(KindGeo, MetricRow{LocationID: "2840", Location: Location{Name: "United States"}})
	assert.Equal(t, Key{ID: "2840", Label: "United States"}, k)

	k = Extract(KindGeo, MetricRow{LocationID: "2840"})
	assert.Equal(t, "2840", k.Label)

	k = Extract(KindCampaign, MetricRow{})
	assert.Equal(t, UnknownLabel, k.Label)

	k = Extract(KindAudience, MetricRow{AudienceID: "77", AudienceUserList: "customers/1/userLists/555"})
	assert.Equal(t, Key{ID: "77", Label: "List: 555"}, k)
}

func TestTrailingSegment(t *testing.T) {
	assert.Equal(t, "503001", TrailingSegment("a/b~503001", "~"))
	assert.Equal(t, "plain", TrailingSegment("plain", "~"))
	assert.Equal(t, "", TrailingSegment("ends~", "~"))
	assert.Equal(t, "c", TrailingSegment("a/b/c", "/"))
}

func TestAudienceName(t *testing.T) {
	assert.Equal(t, "80432", AudienceName(MetricRow{AudienceInterest: "customers/1/userInterests/80432"}))
	assert.Equal(t, "Custom: 9", AudienceName(MetricRow{AudienceCustom: "customers/1/customAudiences/9"}))
	assert.Equal(t, "Combined: 4", AudienceName(MetricRow{AudienceCombined: "customers/1/combinedAudiences/4"}))
	assert.Equal(t, "Unknown Audience", AudienceName(MetricRow{}))
}
