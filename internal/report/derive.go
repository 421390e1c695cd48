package report

import "math"

// Derived holds the ratios computed from one group's totals. CTR, ConvRate and
// Share are fractions; renderers multiply by 100. Currency values are in units,
// not micros.
type Derived struct {
	CTR               float64
	AvgCPC            float64
	ConvRate          float64
	CostPerConversion float64
	AvgCPM            float64
	Share             float64
}

// Derive computes ratios for t. grand is the report-wide total used for Share.
// A zero denominator always yields 0.
func Derive(t, grand Totals) Derived {
	cost := float64(t.CostMicros)
	return Derived{
		CTR:               safeDiv(float64(t.Clicks), float64(t.Impressions)),
		AvgCPC:            safeDiv(cost, float64(t.Clicks)) / MicrosPerUnit,
		ConvRate:          safeDiv(t.Conversions, float64(t.Clicks)),
		CostPerConversion: safeDiv(cost, t.Conversions) / MicrosPerUnit,
		AvgCPM:            safeDiv(cost*1000, float64(t.Impressions)) / MicrosPerUnit,
		Share:             safeDiv(float64(t.Impressions), float64(grand.Impressions)),
	}
}

// Cost returns the total cost in currency units.
func (t Totals) Cost() float64 {
	return float64(t.CostMicros) / MicrosPerUnit
}

func safeDiv(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0
	}
	v := num / den
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
