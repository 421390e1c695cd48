// Package report groups flat advertising metric rows into ranked, multi-section
// text reports (geography, device, demographics, ad schedule, audiences).
//
// Every report build is a pure function of its input rows: no I/O, no shared
// state. Callers fetch rows, convert them to MetricRow and hand them over.
package report

// MicrosPerUnit is the number of micros in one currency unit.
const MicrosPerUnit = 1_000_000

// Metrics holds the per-row metric values. Missing upstream values are zero.
type Metrics struct {
	Impressions            int64
	Clicks                 int64
	CostMicros             int64
	Conversions            float64
	AllConversions         float64
	ViewThroughConversions float64
	Interactions           int64
	VideoViews             int64
	// SearchImpressionShare is a 0..1 fraction; zero means "not reported".
	SearchImpressionShare float64
}

// Location describes a geo target attached to a geographic row.
type Location struct {
	Name          string
	CanonicalName string
	CountryCode   string
	TargetType    string
}

// MetricRow is one upstream result row. Which dimensional fields are populated
// depends on the report kind the row was fetched for.
type MetricRow struct {
	CampaignID   string
	CampaignName string
	AdGroupID    string
	AdGroupName  string

	LocationID string
	Location   Location

	// Enumerated dimensions carry the raw upstream code: either a numeric code
	// ("2") or an enum name ("MOBILE").
	Device    string
	AgeRange  string
	Gender    string
	Hour      string
	DayOfWeek string

	// AgeRangeResource and GenderResource are criterion view resource names
	// ("customers/1/ageRangeViews/2~503001"); the trailing segment is the code.
	AgeRangeResource string
	GenderResource   string

	AudienceID       string
	AudienceType     string
	AudienceInterest string
	AudienceUserList string
	AudienceCustom   string
	AudienceCombined string

	Metrics Metrics
}
