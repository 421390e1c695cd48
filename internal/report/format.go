package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Percent renders a fraction as a percentage with the given decimals.
func Percent(frac float64, places int) string {
	return strconv.FormatFloat(frac*100, 'f', places, 64) + "%"
}

// Money renders a currency amount with two decimals ("$1,234.50").
func Money(units float64) string {
	return moneyString(decimal.NewFromFloat(units))
}

// MoneyMicros renders a micros amount as currency without float rounding.
func MoneyMicros(micros int64) string {
	return moneyString(decimal.New(micros, -6))
}

func moneyString(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = humanize.Comma(n)
	}
	return sign + "$" + whole + "." + frac
}

// Count renders an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Decimal renders a real-valued metric (conversions) with two decimals.
func Decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Bar renders a share as one block per two percentage points.
func Bar(share float64) string {
	n := int(math.Floor(share * 100 / 2))
	if n <= 0 {
		return ""
	}
	return strings.Repeat("█", n)
}

// Heatmap glyphs, densest first.
const (
	GlyphFull   = "█ "
	GlyphHigh   = "▓ "
	GlyphMedium = "▒ "
	GlyphLow    = "░ "
	GlyphMin    = "· "
	GlyphBlank  = "  "
)

// HeatGlyph picks the glyph for a value at ratio of the maximum.
func HeatGlyph(ratio float64) string {
	switch {
	case ratio > 0.8:
		return GlyphFull
	case ratio > 0.6:
		return GlyphHigh
	case ratio > 0.4:
		return GlyphMedium
	case ratio > 0.2:
		return GlyphLow
	default:
		return GlyphMin
	}
}

// HeatmapCells renders 24 hourly cells from groups keyed by hour. Hours that
// never appeared are blank; present hours are scaled against the busiest hour.
func HeatmapCells(hours []*Group) []string {
	var max int64
	byHour := make(map[int]*Group, len(hours))
	for _, g := range hours {
		if g.Key.Ordinal < 0 || g.Key.Ordinal > 23 {
			continue
		}
		byHour[g.Key.Ordinal] = g
		if g.Totals.Impressions > max {
			max = g.Totals.Impressions
		}
	}

	cells := make([]string, 24)
	for h := range cells {
		g, ok := byHour[h]
		if !ok {
			cells[h] = GlyphBlank
			continue
		}
		cells[h] = HeatGlyph(safeDiv(float64(g.Totals.Impressions), float64(max)))
	}
	return cells
}

// HeatmapHeader is the column header matching HeatmapCells.
func HeatmapHeader() string {
	var b strings.Builder
	b.WriteString("Hour  ")
	for h := 0; h < 24; h++ {
		b.WriteString(twoDigits(h))
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}
