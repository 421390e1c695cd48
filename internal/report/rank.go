package report

import "sort"

// Ranked returns the groups ordered by impressions, highest first. Ties keep
// first-seen order.
func (a *Aggregation) Ranked() []*Group {
	return RankBy(a.Groups(), func(g *Group) float64 { return float64(g.Totals.Impressions) })
}

// ByOrdinal returns the groups in their canonical key order (weekdays, hours,
// age brackets). Ties keep first-seen order.
func (a *Aggregation) ByOrdinal() []*Group {
	gs := a.Groups()
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].Key.Ordinal != gs[j].Key.Ordinal {
			return gs[i].Key.Ordinal < gs[j].Key.Ordinal
		}
		return gs[i].seq < gs[j].seq
	})
	return gs
}

// RankBy sorts groups by metric descending, keeping encounter order on ties.
// The input slice is reordered in place and returned.
func RankBy(gs []*Group, metric func(*Group) float64) []*Group {
	sort.SliceStable(gs, func(i, j int) bool {
		mi, mj := metric(gs[i]), metric(gs[j])
		if mi != mj {
			return mi > mj
		}
		return gs[i].seq < gs[j].seq
	})
	return gs
}

// Filter keeps groups for which keep returns true, preserving order.
func Filter(gs []*Group, keep func(*Group) bool) []*Group {
	out := make([]*Group, 0, len(gs))
	for _, g := range gs {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

// Top returns at most n leading groups.
func Top(gs []*Group, n int) []*Group {
	if n < 0 {
		n = 0
	}
	if len(gs) > n {
		return gs[:n]
	}
	return gs
}

// TopRows returns the n rows with the most impressions, ties in input order.
func TopRows(rows []MetricRow, n int) []MetricRow {
	out := make([]MetricRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Metrics.Impressions > out[j].Metrics.Impressions
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary is the report-wide rollup: ranked groups plus grand totals.
type Summary struct {
	Groups     []*Group
	GroupCount int
	Totals     Totals
}

// Summarize ranks a by impressions and computes grand totals.
func Summarize(a *Aggregation) Summary {
	return Summary{
		Groups:     a.Ranked(),
		GroupCount: a.Len(),
		Totals:     a.Totals(),
	}
}

// Derive computes ratios for g against the summary's grand totals.
func (s Summary) Derive(g *Group) Derived {
	return Derive(g.Totals, s.Totals)
}
