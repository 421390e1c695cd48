package report

import (
	"strconv"
	"strings"
)

// Kind selects the dimension a row is grouped by.
type Kind int

const (
	KindGeo Kind = iota + 1
	KindDevice
	KindAge
	KindGender
	KindHour
	KindDay
	KindAudienceType
	KindAudience
	KindCampaign
	KindAdGroup
)

func (k Kind) String() string {
	switch k {
	case KindGeo:
		return "geo"
	case KindDevice:
		return "device"
	case KindAge:
		return "age"
	case KindGender:
		return "gender"
	case KindHour:
		return "hour"
	case KindDay:
		return "day"
	case KindAudienceType:
		return "audience_type"
	case KindAudience:
		return "audience"
	case KindCampaign:
		return "campaign"
	case KindAdGroup:
		return "ad_group"
	default:
		return "unknown"
	}
}

// UnknownLabel is the label of every code missing from a lookup table.
const UnknownLabel = "Unknown"

const unknownID = "unknown"

// Key identifies one report bucket. ID is the grouping identity, Label is what
// gets rendered and Ordinal orders buckets that have a canonical sequence
// (hours, weekdays, age brackets).
type Key struct {
	ID      string
	Label   string
	Ordinal int
}

type enumEntry struct {
	label   string
	ordinal int
}

// enumTable maps numeric codes and enum names to one canonical entry.
type enumTable map[string]enumEntry

func (t enumTable) lookup(code string) Key {
	code = strings.ToUpper(strings.TrimSpace(code))
	if e, ok := t[code]; ok {
		return Key{ID: e.label, Label: e.label, Ordinal: e.ordinal}
	}
	return Key{ID: unknownID, Label: UnknownLabel, Ordinal: unknownOrdinal}
}

const unknownOrdinal = 1 << 20

func entries(label string, ordinal int, codes ...string) map[string]enumEntry {
	m := make(map[string]enumEntry, len(codes))
	for _, c := range codes {
		m[c] = enumEntry{label: label, ordinal: ordinal}
	}
	return m
}

func table(parts ...map[string]enumEntry) enumTable {
	t := enumTable{}
	for _, p := range parts {
		for k, v := range p {
			t[k] = v
		}
	}
	return t
}

var deviceTable = table(
	entries("MOBILE", 0, "2", "MOBILE"),
	entries("DESKTOP", 1, "3", "DESKTOP"),
	entries("TABLET", 2, "4", "TABLET"),
	entries("CONNECTED_TV", 3, "5", "CONNECTED_TV"),
	entries("OTHER", 4, "6", "OTHER"),
)

var ageTable = table(
	entries("18-24", 0, "503001", "AGE_RANGE_18_24"),
	entries("25-34", 1, "503002", "AGE_RANGE_25_34"),
	entries("35-44", 2, "503003", "AGE_RANGE_35_44"),
	entries("45-54", 3, "503004", "AGE_RANGE_45_54"),
	entries("55-64", 4, "503005", "AGE_RANGE_55_64"),
	entries("65+", 5, "503006", "AGE_RANGE_65_UP"),
	entries("Undetermined", 6, "503999", "AGE_RANGE_UNDETERMINED"),
)

var genderTable = table(
	entries("Male", 0, "10", "MALE"),
	entries("Female", 1, "11", "FEMALE"),
	entries("Undetermined", 2, "20", "UNDETERMINED"),
)

// Weekday codes follow the upstream DayOfWeek enum (MONDAY=2 .. SUNDAY=8).
var dayTable = table(
	entries("Monday", 0, "2", "MONDAY"),
	entries("Tuesday", 1, "3", "TUESDAY"),
	entries("Wednesday", 2, "4", "WEDNESDAY"),
	entries("Thursday", 3, "5", "THURSDAY"),
	entries("Friday", 4, "6", "FRIDAY"),
	entries("Saturday", 5, "7", "SATURDAY"),
	entries("Sunday", 6, "8", "SUNDAY"),
)

var audienceTypeLabels = map[string]string{
	"USER_INTEREST":     "Interest-based",
	"USER_LIST":         "Remarketing Lists",
	"CUSTOM_AUDIENCE":   "Custom Audiences",
	"COMBINED_AUDIENCE": "Combined Audiences",
	"CUSTOM_INTENT":     "Custom Intent",
	"CUSTOM_AFFINITY":   "Custom Affinity",
}

// Weekdays lists the canonical weekday labels, Monday first.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Extract maps a row to its bucket for the given kind. It never fails:
// unrecognised codes land in the "Unknown" bucket.
func Extract(kind Kind, row MetricRow) Key {
	switch kind {
	case KindGeo:
		return identifierKey(row.LocationID, row.Location.Name)
	case KindDevice:
		return deviceTable.lookup(row.Device)
	case KindAge:
		return ageTable.lookup(criterionCode(row.AgeRangeResource, row.AgeRange))
	case KindGender:
		return genderTable.lookup(criterionCode(row.GenderResource, row.Gender))
	case KindHour:
		return hourKey(row.Hour)
	case KindDay:
		return dayTable.lookup(row.DayOfWeek)
	case KindAudienceType:
		return audienceTypeKey(row.AudienceType)
	case KindAudience:
		return identifierKey(row.AudienceID, AudienceName(row))
	case KindCampaign:
		return identifierKey(row.CampaignID, row.CampaignName)
	case KindAdGroup:
		return identifierKey(row.AdGroupID, row.AdGroupName)
	default:
		return Key{ID: unknownID, Label: UnknownLabel, Ordinal: unknownOrdinal}
	}
}

func identifierKey(id, name string) Key {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	switch {
	case id == "" && name == "":
		return Key{ID: unknownID, Label: UnknownLabel}
	case id == "":
		return Key{ID: "name:" + name, Label: name}
	case name == "":
		return Key{ID: id, Label: id}
	default:
		return Key{ID: id, Label: name}
	}
}

func hourKey(raw string) Key {
	h, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || h < 0 || h > 23 {
		return Key{ID: unknownID, Label: UnknownLabel, Ordinal: unknownOrdinal}
	}
	return Key{ID: strconv.Itoa(h), Label: HourLabel(h), Ordinal: h}
}

// HourLabel renders an hour of day as "HH:00".
func HourLabel(h int) string {
	return twoDigits(h) + ":00"
}

func twoDigits(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func audienceTypeKey(raw string) Key {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return Key{ID: unknownID, Label: UnknownLabel}
	}
	if label, ok := audienceTypeLabels[t]; ok {
		return Key{ID: t, Label: label}
	}
	return Key{ID: t, Label: t}
}

// criterionCode prefers the code embedded in a criterion view resource name
// and falls back to the explicit type field.
func criterionCode(resource, fallback string) string {
	if strings.TrimSpace(resource) != "" {
		code := TrailingSegment(resource, "~")
		if _, err := strconv.Atoi(code); err == nil || strings.TrimSpace(fallback) == "" {
			return code
		}
	}
	return fallback
}

// TrailingSegment returns the part of s after the last sep. Strings without
// sep are returned whole.
func TrailingSegment(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

// AudienceName builds the display name of an audience criterion.
func AudienceName(row MetricRow) string {
	switch {
	case row.AudienceInterest != "":
		return TrailingSegment(row.AudienceInterest, "/")
	case row.AudienceUserList != "":
		return "List: " + TrailingSegment(row.AudienceUserList, "/")
	case row.AudienceCustom != "":
		return "Custom: " + TrailingSegment(row.AudienceCustom, "/")
	case row.AudienceCombined != "":
		return "Combined: " + TrailingSegment(row.AudienceCombined, "/")
	default:
		return "Unknown Audience"
	}
}
