package report

import (
	"fmt"
	"strings"
)

// AudienceReport groups rows by audience criterion type, then by audience.
func AudienceReport(rows []MetricRow, opts Options) Document {
	if len(rows) == 0 {
		return NoData(NoAudienceData)
	}

	sum := Summarize(Aggregate(KindAudienceType, KindAudience, rows))
	types := Section{Title: "Audience Types"}
	distribution := Section{Title: "Audience Type Distribution"}
	unique := 0

	for _, g := range sum.Groups {
		d := sum.Derive(g)
		t := g.Totals
		unique += g.Children.Len()

		blk := Block{Title: fmt.Sprintf("%s (%d audiences)", strings.ToUpper(g.Key.Label), g.Children.Len())}
		blk.Lines = append(blk.Lines, "Overall Performance:")
		blk.Fields = append(blk.Fields, trafficFields(t, d)...)
		blk.Fields = append(blk.Fields, costField(t))
		blk.Fields = append(blk.Fields, conversionFields(t, d)...)
		blk.Fields = append(blk.Fields, Field{Label: "All Conversions", Value: Decimal(t.AllConversions)})

		top := List{Title: "Top Performing Audiences"}
		for i, a := range Top(g.Children.Ranked(), 5) {
			ad := Derive(a.Totals, Totals{})
			top.Items = append(top.Items, fmt.Sprintf("%d. %s (ID: %s)\nImpressions: %s | CTR: %s | Conv. Rate: %s | Avg. CPC: %s | Campaigns: %d | Ad Groups: %d",
				i+1, a.Key.Label, orDash(a.Rows[0].AudienceID),
				Count(a.Totals.Impressions), Percent(ad.CTR, 2), Percent(ad.ConvRate, 2), Money(ad.AvgCPC),
				a.Campaigns.Len(), a.AdGroups.Len()))
		}
		blk.Lists = append(blk.Lists, top)
		types.Blocks = append(types.Blocks, blk)

		distribution.Fields = append(distribution.Fields, shareField(g.Key.Label, d.Share, t.Impressions))
	}

	insights := Section{Title: "Insights"}
	if best, ratio := bestAudience(sum.Groups, func(g *Group) bool {
		return g.Totals.Impressions > insightMinImpressions
	}, func(d Derived) float64 { return d.CTR }); best != nil {
		insights.Fields = append(insights.Fields, Field{Label: "Best CTR", Value: fmt.Sprintf("%s (%s)", best.Key.Label, Percent(ratio, 2))})
	}
	if best, ratio := bestAudience(sum.Groups, func(g *Group) bool {
		return g.Totals.Clicks > insightMinClicks
	}, func(d Derived) float64 { return d.ConvRate }); best != nil {
		insights.Fields = append(insights.Fields, Field{Label: "Best Conv. Rate", Value: fmt.Sprintf("%s (%s)", best.Key.Label, Percent(ratio, 2))})
	}
	if len(insights.Fields) == 0 {
		insights.Lines = append(insights.Lines, "Not enough volume for audience highlights.")
	}

	summary := totalsSummary(countField("Total Audience Types", sum.GroupCount), sum.Totals)
	summary.Fields = append(summary.Fields[:1], append([]Field{countField("Total Unique Audiences", unique)}, summary.Fields[1:]...)...)

	return Document{
		Title:    "Audience Performance Report",
		Meta:     opts.meta(),
		Sections: []Section{types, distribution, insights, summary},
	}
}

// bestAudience scans audiences across types in rank order and returns the
// first one with the strictly highest positive ratio.
func bestAudience(types []*Group, qualifies func(*Group) bool, ratio func(Derived) float64) (*Group, float64) {
	var best *Group
	var bestRatio float64
	for _, t := range types {
		for _, a := range t.Children.Groups() {
			if !qualifies(a) {
				continue
			}
			if r := ratio(Derive(a.Totals, Totals{})); r > bestRatio {
				best, bestRatio = a, r
			}
		}
	}
	return best, bestRatio
}
