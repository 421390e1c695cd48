package gaql

import (
	"errors"
	"testing"
	"time"
)

func TestQueryString(t *testing.T) {
	q := Select("campaign.id", "campaign.name").
		From("campaign").
		Where("campaign.status != 'REMOVED'").
		Where("").
		WhereIf(false, "campaign.id = 1").
		OrderBy("campaign.name").
		Limit(10)

	want := "SELECT campaign.id, campaign.name FROM campaign WHERE campaign.status != 'REMOVED' ORDER BY campaign.name LIMIT 10"
	if got := q.String(); got != want {
		t.Fatalf("query mismatch:\n got %s\nwant %s", got, want)
	}

	bare := Select("customer.id").From("customer").String()
	if bare != "SELECT customer.id FROM customer" {
		t.Fatalf("unexpected bare query: %s", bare)
	}
}

func TestParseDateRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)
	cases := []struct {
		raw      string
		wantCond string
		wantStr  string
	}{
		{"", "segments.date DURING LAST_30_DAYS", "LAST_30_DAYS"},
		{"last_7_days", "segments.date DURING LAST_7_DAYS", "LAST_7_DAYS"},
		{"2026-01-01:2026-01-31", "segments.date BETWEEN '2026-01-01' AND '2026-01-31'", "2026-01-01:2026-01-31"},
		{"last 10 days", "segments.date BETWEEN '2026-03-06' AND '2026-03-15'", "2026-03-06:2026-03-15"},
	}
	for _, tc := range cases {
		r, err := parseDateRangeAt(tc.raw, "", now)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.raw, err)
		}
		if got := r.Condition(); got != tc.wantCond {
			t.Fatalf("%q: condition %q, want %q", tc.raw, got, tc.wantCond)
		}
		if got := r.String(); got != tc.wantStr {
			t.Fatalf("%q: string %q, want %q", tc.raw, got, tc.wantStr)
		}
	}
}

func TestParseDateRangeFallback(t *testing.T) {
	r, err := ParseDateRange("  ", "LAST_MONTH")
	if err != nil || r.Named != "LAST_MONTH" {
		t.Fatalf("expected LAST_MONTH fallback, got %+v err=%v", r, err)
	}
}

func TestParseDateRangeInvalid(t *testing.T) {
	for _, raw := range []string{"2026-02-01:2026-01-01", "2026-13-01:2026-12-01", "sometime", "2026-01-01:"} {
		if _, err := ParseDateRange(raw, ""); !errors.Is(err, ErrInvalidDateRange) {
			t.Fatalf("%q: expected ErrInvalidDateRange, got %v", raw, err)
		}
	}
}

func TestIDs(t *testing.T) {
	if id, err := ID(" 123 "); err != nil || id != "123" {
		t.Fatalf("ID: got %q err=%v", id, err)
	}
	for _, bad := range []string{"", "12a", "1 OR 1=1", "-5"} {
		if _, err := ID(bad); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("ID(%q): expected ErrInvalidID, got %v", bad, err)
		}
	}
	list, err := IDList([]string{"1", "22", "333"})
	if err != nil || list != "(1, 22, 333)" {
		t.Fatalf("IDList: got %q err=%v", list, err)
	}
	if _, err := IDList(nil); err == nil {
		t.Fatalf("expected error for empty list")
	}
	cid, err := CustomerID("123-456-7890")
	if err != nil || cid != "1234567890" {
		t.Fatalf("CustomerID: got %q err=%v", cid, err)
	}
}

func TestLiteralAndEnum(t *testing.T) {
	if got := Literal(`O'Brien\x`); got != `'O\'Brien\\x'` {
		t.Fatalf("Literal: %s", got)
	}
	if v, err := Enum("exact"); err != nil || v != "EXACT" {
		t.Fatalf("Enum: %q err=%v", v, err)
	}
	if _, err := Enum("EXACT' OR"); err == nil {
		t.Fatalf("expected enum error")
	}
}
