package report

import (
	"fmt"
	"strings"
)

// Minimum volumes before an hour qualifies for the insight rankings.
const (
	insightMinImpressions = 100
	insightMinClicks      = 10
)

// ScheduleReport renders day-of-week and hour-of-day performance with an
// hourly impressions heatmap.
func ScheduleReport(rows []MetricRow, opts Options) Document {
	if len(rows) == 0 {
		return NoData(NoScheduleData)
	}

	days := Aggregate(KindDay, KindHour, rows)
	hours := Aggregate(KindHour, 0, rows)
	grand := hours.Totals()

	byDay := Section{Title: "Performance by Day of Week"}
	for _, g := range days.ByOrdinal() {
		d := Derive(g.Totals, grand)
		blk := Block{Title: g.Key.Label}
		blk.Fields = append(blk.Fields, trafficFields(g.Totals, d)...)
		blk.Fields = append(blk.Fields,
			Field{Label: "Conversions", Value: Decimal(g.Totals.Conversions)},
			Field{Label: "Conv. Rate", Value: Percent(d.ConvRate, 2)},
		)
		best := List{Title: "Best Hours"}
		for _, h := range Top(g.Children.Ranked(), 3) {
			hd := Derive(h.Totals, grand)
			best.Items = append(best.Items, fmt.Sprintf("%s: %s impr, %s CTR", h.Key.Label, Count(h.Totals.Impressions), Percent(hd.CTR, 1)))
		}
		blk.Lists = append(blk.Lists, best)
		byDay.Blocks = append(byDay.Blocks, blk)
	}

	byHour := Section{Title: "Performance by Hour of Day", Lines: []string{"Top 5 Peak Hours:"}}
	for _, h := range Top(hours.Ranked(), 5) {
		d := Derive(h.Totals, grand)
		byHour.Blocks = append(byHour.Blocks, Block{
			Title: hourWindow(h.Key),
			Fields: []Field{
				{Label: "Impressions", Value: Count(h.Totals.Impressions)},
				{Label: "CTR", Value: Percent(d.CTR, 2)},
				{Label: "Conv. Rate", Value: Percent(d.ConvRate, 2)},
				{Label: "Avg. CPC", Value: Money(d.AvgCPC)},
			},
		})
	}

	heatmap := Section{
		Title: "Hourly Heatmap (Impressions)",
		Lines: []string{
			"```",
			HeatmapHeader(),
			"      " + strings.TrimRight(strings.Join(HeatmapCells(hours.Groups()), ""), " "),
			"```",
		},
	}

	insights := Section{
		Title: "Insights",
		Fields: []Field{
			{Label: "Highest CTR", Value: hourHighlights(hours, func(g *Group) bool {
				return g.Totals.Impressions > insightMinImpressions
			}, func(d Derived) float64 { return d.CTR })},
			{Label: "Best Conv. Rate", Value: hourHighlights(hours, func(g *Group) bool {
				return g.Totals.Clicks > insightMinClicks
			}, func(d Derived) float64 { return d.ConvRate })},
		},
	}

	summary := Section{
		Title: "Summary",
		Fields: []Field{
			{Label: "Total Impressions", Value: Count(grand.Impressions)},
			{Label: "Total Cost", Value: MoneyMicros(grand.CostMicros)},
			{Label: "Total Conversions", Value: Decimal(grand.Conversions)},
		},
	}

	return Document{
		Title:    "Ad Schedule Performance Report",
		Meta:     opts.meta(),
		Sections: []Section{byDay, byHour, heatmap, insights, summary},
	}
}

func hourWindow(k Key) string {
	if k.Ordinal < 0 || k.Ordinal > 23 {
		return k.Label
	}
	return k.Label + " - " + HourLabel((k.Ordinal+1)%24)
}

// hourHighlights ranks qualifying hours by a derived ratio and lists the top 3.
func hourHighlights(hours *Aggregation, qualifies func(*Group) bool, ratio func(Derived) float64) string {
	candidates := RankBy(Filter(hours.ByOrdinal(), qualifies), func(g *Group) float64 {
		return ratio(Derive(g.Totals, Totals{}))
	})
	if len(candidates) == 0 {
		return "not enough data"
	}
	parts := make([]string, 0, 3)
	for _, g := range Top(candidates, 3) {
		parts = append(parts, fmt.Sprintf("%s (%s)", g.Key.Label, Percent(ratio(Derive(g.Totals, Totals{})), 2)))
	}
	return strings.Join(parts, ", ")
}
