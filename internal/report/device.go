package report

import "fmt"

// DeviceReport groups rows by device with engagement, coverage and share.
func DeviceReport(rows []MetricRow, opts Options) Document {
	if len(rows) == 0 {
		return NoData(NoDeviceData)
	}

	sum := Summarize(Aggregate(KindDevice, KindAdGroup, rows))
	devices := Section{Title: "Devices"}
	share := Section{Title: "Device Share"}
	for _, g := range sum.Groups {
		d := sum.Derive(g)
		t := g.Totals

		blk := Block{Title: g.Key.Label}
		blk.Fields = append(blk.Fields, trafficFields(t, d)...)
		blk.Fields = append(blk.Fields,
			Field{Label: "Avg. CPM", Value: Money(d.AvgCPM)},
			costField(t),
		)
		blk.Fields = append(blk.Fields, conversionFields(t, d)...)
		blk.Fields = append(blk.Fields,
			Field{Label: "Interactions", Value: Count(t.Interactions)},
			Field{Label: "Video Views", Value: Count(t.VideoViews)},
			Field{Label: "Avg. Search Impression Share", Value: Percent(t.SearchImpressionShare(), 1)},
			countField("Campaigns", g.Campaigns.Len()),
			countField("Ad Groups", g.AdGroups.Len()),
		)

		top := List{Title: "Top Ad Groups"}
		for _, ag := range Top(g.Children.Ranked(), 3) {
			ad := Derive(ag.Totals, Totals{})
			top.Items = append(top.Items, fmt.Sprintf("%s (%s)\nImpressions: %s | CTR: %s | Conv: %s",
				ag.Key.Label, ag.Rows[0].CampaignName, Count(ag.Totals.Impressions), Percent(ad.CTR, 2), Decimal(ag.Totals.Conversions)))
		}
		blk.Lists = append(blk.Lists, top)
		devices.Blocks = append(devices.Blocks, blk)

		share.Fields = append(share.Fields, shareField(g.Key.Label, d.Share, t.Impressions))
	}

	return Document{
		Title:    "Device Performance Report",
		Meta:     opts.meta(),
		Sections: []Section{devices, share, totalsSummary(countField("Total Devices", sum.GroupCount), sum.Totals)},
	}
}
