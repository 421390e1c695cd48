package report

// Totals are running sums over the rows folded into one group.
type Totals struct {
	Impressions            int64
	Clicks                 int64
	CostMicros             int64
	Conversions            float64
	AllConversions         float64
	ViewThroughConversions float64
	Interactions           int64
	VideoViews             int64

	searchShareSum  float64
	searchShareRows int
}

// Add folds one row's metrics into the totals.
func (t *Totals) Add(m Metrics) {
	t.Impressions += m.Impressions
	t.Clicks += m.Clicks
	t.CostMicros += m.CostMicros
	t.Conversions += m.Conversions
	t.AllConversions += m.AllConversions
	t.ViewThroughConversions += m.ViewThroughConversions
	t.Interactions += m.Interactions
	t.VideoViews += m.VideoViews
	if m.SearchImpressionShare > 0 {
		t.searchShareSum += m.SearchImpressionShare
		t.searchShareRows++
	}
}

// Merge adds another set of totals.
func (t *Totals) Merge(o Totals) {
	t.Impressions += o.Impressions
	t.Clicks += o.Clicks
	t.CostMicros += o.CostMicros
	t.Conversions += o.Conversions
	t.AllConversions += o.AllConversions
	t.ViewThroughConversions += o.ViewThroughConversions
	t.Interactions += o.Interactions
	t.VideoViews += o.VideoViews
	t.searchShareSum += o.searchShareSum
	t.searchShareRows += o.searchShareRows
}

// SearchImpressionShare averages the share over rows that reported one.
func (t Totals) SearchImpressionShare() float64 {
	return safeDiv(t.searchShareSum, float64(t.searchShareRows))
}

// Set is an insertion-ordered set of strings.
type Set struct {
	seen  map[string]struct{}
	order []string
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{seen: map[string]struct{}{}}
}

// Add inserts v unless it is empty or already present.
func (s *Set) Add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

// Len reports the number of distinct members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Values returns members in insertion order.
func (s *Set) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Group accumulates every row that shares one Key.
type Group struct {
	Key       Key
	Totals    Totals
	Campaigns *Set
	AdGroups  *Set
	// Children is a nested aggregation (e.g. campaigns within a location);
	// nil unless the parent aggregation was built with a child kind.
	Children *Aggregation
	// Rows keeps the folded rows for drill-down sections.
	Rows []MetricRow

	seq int
}

// Aggregation maps group keys to groups, remembering first-seen order so that
// ranking ties stay stable.
type Aggregation struct {
	kind   Kind
	child  Kind
	index  map[string]*Group
	groups []*Group
}

// NewAggregation returns an empty aggregation over kind. When child is
// non-zero, every group carries a nested aggregation over child.
func NewAggregation(kind, child Kind) *Aggregation {
	return &Aggregation{kind: kind, child: child, index: map[string]*Group{}}
}

// Aggregate folds rows into a fresh aggregation.
func Aggregate(kind, child Kind, rows []MetricRow) *Aggregation {
	a := NewAggregation(kind, child)
	for _, r := range rows {
		a.Fold(r)
	}
	return a
}

// Kind returns the grouping dimension.
func (a *Aggregation) Kind() Kind { return a.kind }

// Fold adds one row and returns the group it landed in.
func (a *Aggregation) Fold(row MetricRow) *Group {
	key := Extract(a.kind, row)
	g, ok := a.index[key.ID]
	if !ok {
		g = &Group{
			Key:       key,
			Campaigns: NewSet(),
			AdGroups:  NewSet(),
			seq:       len(a.groups),
		}
		if a.child != 0 {
			g.Children = NewAggregation(a.child, 0)
		}
		a.index[key.ID] = g
		a.groups = append(a.groups, g)
	}

	g.Totals.Add(row.Metrics)
	g.Campaigns.Add(firstNonEmpty(row.CampaignID, row.CampaignName))
	g.AdGroups.Add(firstNonEmpty(row.AdGroupID, row.AdGroupName))
	g.Rows = append(g.Rows, row)
	if g.Children != nil {
		g.Children.Fold(row)
	}
	return g
}

// Len reports the number of groups.
func (a *Aggregation) Len() int {
	if a == nil {
		return 0
	}
	return len(a.groups)
}

// Lookup returns the group with the given key ID.
func (a *Aggregation) Lookup(id string) (*Group, bool) {
	g, ok := a.index[id]
	return g, ok
}

// Groups returns groups in first-seen order.
func (a *Aggregation) Groups() []*Group {
	if a == nil {
		return nil
	}
	out := make([]*Group, len(a.groups))
	copy(out, a.groups)
	return out
}

// Totals sums every group.
func (a *Aggregation) Totals() Totals {
	var t Totals
	if a == nil {
		return t
	}
	for _, g := range a.groups {
		t.Merge(g.Totals)
	}
	return t
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
