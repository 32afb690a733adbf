// Package metadata holds the two decoded views of an image's EXIF data and
// the lookup rules that reconcile them.
//
// The flat view is keyed by bare tag name ("Make", "DateTimeOriginal") and
// keeps native values. The namespaced view is keyed by "<Group> <Tag>"
// ("Image Make", "EXIF DateTimeOriginal") and is always read as a string.
package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// FlatView maps a canonical tag name to a string, number, Rational or a
// slice of those.
type FlatView map[string]any

// NamespacedView maps "<Group> <Tag>" to a value whose string form is used.
type NamespacedView map[string]any

// Namespace groups used by the namespaced decoder.
const (
	GroupImage   = "Image"
	GroupEXIF    = "EXIF"
	GroupGPS     = "GPS"
	GroupInterop = "Interoperability"
	GroupThumb   = "Thumbnail"
)

// Key builds a namespaced key such as "Image Make".
func Key(group, name string) string {
	return group + " " + name
}

// Rational is an unsigned or signed TIFF rational kept as a pair.
type Rational struct {
	Num int64
	Den int64
}

// Float returns the quotient. ok is false when the denominator is zero.
func (r Rational) Float() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Stringify renders any view value the way it is shown to users and matched
// against patterns.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return FormatFloat(t)
	case float32:
		return FormatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Stringify(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// FormatFloat prints a float without a trailing ".0" for integral values.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
