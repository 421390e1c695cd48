package report

import "strings"

// DemographicsReport renders age and gender breakdowns. Either row set may be
// empty; only when both are does the report collapse to the no-data message.
func DemographicsReport(age, gender []MetricRow, opts Options) Document {
	if len(age) == 0 && len(gender) == 0 {
		return NoData(NoDemographicData)
	}

	doc := Document{Title: "Demographic Performance Report", Meta: opts.meta()}
	distribution := Section{Title: "Demographics Summary"}

	if len(age) > 0 {
		sum := Summarize(Aggregate(KindAge, 0, age))
		sec := Section{Title: "Age Breakdown"}
		for _, g := range sum.Groups {
			blk := demographicBlock(g, sum, false)
			blk.Title = g.Key.Label + " Years"
			sec.Blocks = append(sec.Blocks, blk)
		}
		doc.Sections = append(doc.Sections, sec)
		distribution.Blocks = append(distribution.Blocks, shareBlock("Age Distribution", sum))
	}

	if len(gender) > 0 {
		sum := Summarize(Aggregate(KindGender, 0, gender))
		sec := Section{Title: "Gender Breakdown"}
		for _, g := range sum.Groups {
			blk := demographicBlock(g, sum, true)
			blk.Title = g.Key.Label
			sec.Blocks = append(sec.Blocks, blk)
		}
		doc.Sections = append(doc.Sections, sec)
		distribution.Blocks = append(distribution.Blocks, shareBlock("Gender Distribution", sum))
	}

	doc.Sections = append(doc.Sections, distribution)
	return doc
}

func demographicBlock(g *Group, sum Summary, costPerConv bool) Block {
	d := sum.Derive(g)
	t := g.Totals
	var blk Block
	blk.Fields = append(blk.Fields, trafficFields(t, d)...)
	blk.Fields = append(blk.Fields,
		costField(t),
		Field{Label: "Conversions", Value: Decimal(t.Conversions)},
		Field{Label: "Conv. Rate", Value: Percent(d.ConvRate, 2)},
	)
	if costPerConv {
		blk.Fields = append(blk.Fields, Field{Label: "Cost/Conv", Value: Money(d.CostPerConversion)})
	}
	blk.Fields = append(blk.Fields, countField("Campaigns", g.Campaigns.Len()))
	return blk
}

func shareBlock(title string, sum Summary) Block {
	blk := Block{Title: title}
	for _, g := range sum.Groups {
		share := sum.Derive(g).Share
		blk.Fields = append(blk.Fields, Field{Label: g.Key.Label, Value: strings.TrimSpace(Percent(share, 1) + " " + Bar(share))})
	}
	return blk
}
