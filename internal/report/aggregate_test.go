package report

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviceRow(device string, impressions, clicks, costMicros int64, conversions float64) MetricRow {
	return MetricRow{
		CampaignID:   "1",
		CampaignName: "Brand",
		AdGroupID:    "10",
		AdGroupName:  "Core",
		Device:       device,
		Metrics: Metrics{
			Impressions: impressions,
			Clicks:      clicks,
			CostMicros:  costMicros,
			Conversions: conversions,
		},
	}
}

func sampleRows() []MetricRow {
	return []MetricRow{
		deviceRow("2", 100, 10, 5_000_000, 2),
		deviceRow("3", 50, 2, 1_000_000, 0),
		deviceRow("MOBILE", 30, 1, 250_000, 0.5),
		deviceRow("4", 7, 0, 0, 0),
		deviceRow("99", 3, 1, 10_000, 0.25),
		deviceRow("", 0, 0, 0, 0),
	}
}

func TestAggregateConservesTotals(t *testing.T) {
	rows := sampleRows()
	agg := Aggregate(KindDevice, KindAdGroup, rows)

	var impressions, clicks, cost int64
	for _, r := range rows {
		impressions += r.Metrics.Impressions
		clicks += r.Metrics.Clicks
		cost += r.Metrics.CostMicros
	}

	var groupImpressions int64
	for _, g := range agg.Groups() {
		groupImpressions += g.Totals.Impressions
		assert.Equal(t, g.Totals.Impressions, g.Children.Totals().Impressions, "children of %s", g.Key.Label)
	}
	assert.Equal(t, impressions, groupImpressions)

	totals := agg.Totals()
	assert.Equal(t, impressions, totals.Impressions)
	assert.Equal(t, clicks, totals.Clicks)
	assert.Equal(t, cost, totals.CostMicros)
}

func TestAggregateOrderIndependent(t *testing.T) {
	rows := sampleRows()
	want := Aggregate(KindDevice, 0, rows)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]MetricRow(nil), rows...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Aggregate(KindDevice, 0, shuffled)

		require.Equal(t, want.Len(), got.Len())
		for _, wg := range want.Groups() {
			gg, ok := got.Lookup(wg.Key.ID)
			require.True(t, ok, "missing group %s", wg.Key.ID)
			assert.Equal(t, wg.Totals.Impressions, gg.Totals.Impressions)
			assert.Equal(t, wg.Totals.Clicks, gg.Totals.Clicks)
			assert.Equal(t, wg.Totals.CostMicros, gg.Totals.CostMicros)
			assert.InDelta(t, wg.Totals.Conversions, gg.Totals.Conversions, 1e-9)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(KindGeo, KindCampaign, nil)
	assert.Equal(t, 0, agg.Len())
	assert.Empty(t, agg.Ranked())
	assert.Equal(t, Totals{}, agg.Totals())
}

func TestUnknownDeviceCode(t *testing.T) {
	agg := Aggregate(KindDevice, 0, []MetricRow{deviceRow("99", 5, 1, 0, 0), deviceRow("SMARTWATCH", 5, 0, 0, 0)})
	require.Equal(t, 1, agg.Len())
	g := agg.Groups()[0]
	assert.Equal(t, UnknownLabel, g.Key.Label)
	assert.Equal(t, int64(10), g.Totals.Impressions)
}

func TestDeviceScenario(t *testing.T) {
	rows := []MetricRow{
		deviceRow("2", 100, 10, 5_000_000, 2),
		deviceRow("3", 50, 2, 1_000_000, 0),
	}
	sum := Summarize(Aggregate(KindDevice, 0, rows))
	require.Len(t, sum.Groups, 2)
	assert.Equal(t, int64(150), sum.Totals.Impressions)
	assert.Equal(t, int64(12), sum.Totals.Clicks)

	mobile, desktop := sum.Groups[0], sum.Groups[1]
	assert.Equal(t, "MOBILE", mobile.Key.Label)
	assert.Equal(t, "DESKTOP", desktop.Key.Label)

	md := sum.Derive(mobile)
	assert.Equal(t, "10.00%", Percent(md.CTR, 2))
	assert.Equal(t, "$0.50", Money(md.AvgCPC))
	assert.Equal(t, "20.00%", Percent(md.ConvRate, 2))
	assert.Equal(t, "$2.50", Money(md.CostPerConversion))
	assert.Equal(t, "66.7%", Percent(md.Share, 1))

	dd := sum.Derive(desktop)
	assert.Equal(t, "4.00%", Percent(dd.CTR, 2))
	assert.Equal(t, "$0.50", Money(dd.AvgCPC))
	assert.Equal(t, 0.0, dd.ConvRate)
	assert.Equal(t, 0.0, dd.CostPerConversion)
	assert.Equal(t, "$0.00", Money(dd.CostPerConversion))
	assert.Equal(t, "33.3%", Percent(dd.Share, 1))
}

func TestDeriveZeroDenominators(t *testing.T) {
	d := Derive(Totals{CostMicros: 1_000_000, Conversions: 0}, Totals{})
	for name, v := range map[string]float64{
		"ctr":       d.CTR,
		"avg_cpc":   d.AvgCPC,
		"conv_rate": d.ConvRate,
		"cpa":       d.CostPerConversion,
		"avg_cpm":   d.AvgCPM,
		"share":     d.Share,
	} {
		assert.Equal(t, 0.0, v, name)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
	}
}

func TestDeriveAvgCPM(t *testing.T) {
	d := Derive(Totals{Impressions: 2000, CostMicros: 3_000_000}, Totals{Impressions: 2000})
	assert.InDelta(t, 1.5, d.AvgCPM, 1e-9)
	assert.InDelta(t, 1.0, d.Share, 1e-9)
}

func TestRankedStableOnTies(t *testing.T) {
	rows := []MetricRow{
		{LocationID: "300", Location: Location{Name: "C"}, Metrics: Metrics{Impressions: 10}},
		{LocationID: "100", Location: Location{Name: "A"}, Metrics: Metrics{Impressions: 50}},
		{LocationID: "200", Location: Location{Name: "B"}, Metrics: Metrics{Impressions: 10}},
		{LocationID: "400", Location: Location{Name: "D"}, Metrics: Metrics{Impressions: 10}},
	}
	for i := 0; i < 5; i++ {
		ranked := Aggregate(KindGeo, 0, rows).Ranked()
		var ids []string
		for _, g := range ranked {
			ids = append(ids, g.Key.ID)
		}
		assert.Equal(t, []string{"100", "300", "200", "400"}, ids)
	}
}

func TestByOrdinalWeekdays(t *testing.T) {
	rows := []MetricRow{
		{DayOfWeek: "SUNDAY", Metrics: Metrics{Impressions: 100}},
		{DayOfWeek: "2", Metrics: Metrics{Impressions: 1}},
		{DayOfWeek: "WEDNESDAY", Metrics: Metrics{Impressions: 40}},
	}
	var labels []string
	for _, g := range Aggregate(KindDay, 0, rows).ByOrdinal() {
		labels = append(labels, g.Key.Label)
	}
	assert.Equal(t, []string{"Monday", "Wednesday", "Sunday"}, labels)
}

func TestSearchImpressionShareIgnoresMissing(t *testing.T) {
	var tot Totals
	tot.Add(Metrics{SearchImpressionShare: 0.5})
	tot.Add(Metrics{SearchImpressionShare: 0})
	tot.Add(Metrics{SearchImpressionShare: 0.7})
	assert.InDelta(t, 0.6, tot.SearchImpressionShare(), 1e-9)
	assert.Equal(t, 0.0, Totals{}.SearchImpressionShare())
}

func TestSetSemantics(t *testing.T) {
	s := NewSet()
	for _, v := range []string{"b", "a", "b", "", "c"} {
		s.Add(v)
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"b", "a", "c"}, s.Values())
	var nilSet *Set
	assert.Equal(t, 0, nilSet.Len())
}

func TestTopRows(t *testing.T) {
	rows := []MetricRow{
		{CampaignName: "x", Metrics: Metrics{Impressions: 1}},
		{CampaignName: "y", Metrics: Metrics{Impressions: 9}},
		{CampaignName: "z", Metrics: Metrics{Impressions: 9}},
	}
	top := TopRows(rows, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "y", top[0].CampaignName)
	assert.Equal(t, "z", top[1].CampaignName)
	assert.Equal(t, "x", rows[0].CampaignName, "input must not be reordered")
}
