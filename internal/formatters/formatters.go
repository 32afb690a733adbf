// Package formatters turns raw EXIF values into display strings.
//
// Every formatter is total: when a value cannot be converted it falls back
// to the value's string form.
package formatters

import (
	"math"
	"strconv"
	"strings"

	"github.com/digimosa/exif-inspector/internal/metadata"
)

// SecondsUnit is appended to exposure times.
const SecondsUnit = "秒"

// RationalToFloat converts a number, a metadata.Rational or a "num/den"
// string to a float. ok is false when the value cannot be converted.
func RationalToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint32:
		return float64(t), true
	case metadata.Rational:
		return t.Float()
	case string:
		return parseRationalString(t)
	case []any:
		if len(t) == 1 {
			return RationalToFloat(t[0])
		}
	}
	return 0, false
}

func parseRationalString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if num, den, found := strings.Cut(s, "/"); found {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ExposureTime renders an exposure time in seconds. Fraction strings are
// kept verbatim; values below one second become "1/<n>".
func ExposureTime(v any) string {
	if s, ok := v.(string); ok && strings.Contains(s, "/") {
		return s + SecondsUnit
	}
	f, ok := RationalToFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return metadata.Stringify(v)
	}
	if f >= 1 {
		return metadata.FormatFloat(f) + SecondsUnit
	}
	if f <= 0 {
		return metadata.Stringify(v)
	}
	return "1/" + strconv.FormatInt(int64(math.Round(1/f)), 10) + SecondsUnit
}

// FNumber renders an aperture as "f/<value>".
func FNumber(v any) string {
	if f, ok := RationalToFloat(v); ok {
		return "f/" + metadata.FormatFloat(f)
	}
	return "f/" + metadata.Stringify(v)
}

// FocalLength renders a focal length as "<value>mm".
func FocalLength(v any) string {
	if f, ok := RationalToFloat(v); ok {
		return metadata.FormatFloat(f) + "mm"
	}
	return metadata.Stringify(v) + "mm"
}

// EnumTable maps small EXIF codes to descriptions.
type EnumTable map[int]string

// Enum looks a coded value up in table. The value is truncated to an int
// first. Values that are not numeric, or codes the table does not know,
// come back as their string form.
func Enum(v any, table EnumTable) string {
	raw := metadata.Stringify(v)
	if key, ok := enumKey(v, raw); ok {
		if desc, found := table[key]; found {
			return desc
		}
	}
	return raw
}

func enumKey(v any, raw string) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
