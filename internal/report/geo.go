package report

import "fmt"

// GeoReport groups rows by location with a per-location campaign breakdown.
func GeoReport(rows []MetricRow, opts Options) Document {
	if len(rows) == 0 {
		return NoData(NoGeoData)
	}

	sum := Summarize(Aggregate(KindGeo, KindCampaign, rows))
	locations := Section{Title: "Locations"}
	for _, g := range sum.Groups {
		loc := g.Rows[0].Location
		d := sum.Derive(g)
		t := g.Totals

		title := g.Key.Label
		if loc.CountryCode != "" {
			title = fmt.Sprintf("%s (%s)", title, loc.CountryCode)
		}
		blk := Block{Title: title}
		if loc.CanonicalName != "" {
			blk.Lines = append(blk.Lines, loc.CanonicalName)
		}
		blk.Fields = append(blk.Fields,
			Field{Label: "Type", Value: orDash(loc.TargetType)},
			Field{Label: "Location ID", Value: orDash(g.Rows[0].LocationID)},
		)
		blk.Fields = append(blk.Fields, trafficFields(t, d)...)
		blk.Fields = append(blk.Fields, costField(t))
		blk.Fields = append(blk.Fields, conversionFields(t, d)...)
		blk.Fields = append(blk.Fields,
			Field{Label: "All Conversions", Value: Decimal(t.AllConversions)},
			Field{Label: "View-through", Value: Decimal(t.ViewThroughConversions)},
		)

		campaigns := List{Title: fmt.Sprintf("Campaign Breakdown (%d campaigns)", g.Children.Len())}
		for _, c := range Top(g.Children.Ranked(), 3) {
			campaigns.Items = append(campaigns.Items, fmt.Sprintf("%s\nImpressions: %s | Clicks: %s | Cost: %s",
				c.Key.Label, Count(c.Totals.Impressions), Count(c.Totals.Clicks), MoneyMicros(c.Totals.CostMicros)))
		}
		blk.Lists = append(blk.Lists, campaigns)
		locations.Blocks = append(locations.Blocks, blk)
	}

	return Document{
		Title:    "Geographic Performance Report",
		Meta:     opts.meta(),
		Sections: []Section{locations, totalsSummary(countField("Total Locations", sum.GroupCount), sum.Totals)},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
