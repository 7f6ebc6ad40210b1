package matchmaking

import "strings"

const maxTimezoneGapHours = 4

// utcOffsets is deliberately small. Unknown names resolve to UTC.
var utcOffsets = map[string]float64{
	"UTC":  0,
	"GMT":  0,
	"WET":  0,
	"CET":  1,
	"EET":  2,
	"MSK":  3,
	"GST":  4,
	"IST":  5.5,
	"ALMT": 6,
	"ICT":  7,
	"SGT":  8,
	"JST":  9,
	"AEST": 10,
	"NZST": 12,
	"HST":  -10,
	"AKST": -9,
	"PST":  -8,
	"MST":  -7,
	"CST":  -6,
	"EST":  -5,
	"AST":  -4,
	"BRT":  -3,
}

// TimezoneOffset returns the UTC offset in hours for a named zone, or 0 if unknown.
func TimezoneOffset(name string) float64 {
	return utcOffsets[strings.ToUpper(strings.TrimSpace(name))]
}

// TimezonesCompatible reports whether two zones are at most four hours apart.
func TimezonesCompatible(a, b string) bool {
	diff := TimezoneOffset(a) - TimezoneOffset(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= maxTimezoneGapHours
}
