package integrity

import (
	"strconv"
	"strings"

	"github.com/digimosa/exif-inspector/internal/formatters"
	"github.com/digimosa/exif-inspector/internal/metadata"
)

// SuspiciousValueRule flags ISO and focal length values no camera produces.
type SuspiciousValueRule struct{}

func (SuspiciousValueRule) Name() string { return "suspicious value" }

func (SuspiciousValueRule) Check(vs metadata.Views) Outcome {
	var out Outcome
	out.fail(checkISO(vs, &out))
	out.fail(checkFocalLength(vs, &out))
	return out
}

func checkISO(vs metadata.Views, out *Outcome) error {
	var (
		iso float64
		ok  bool
	)
	if v := vs.LookupIn("ISOSpeedRatings", metadata.TierFlat); v.Present() {
		if _, isSlice := v.Raw().([]any); isSlice {
			return shapeError("ISOSpeedRatings", v.Raw())
		}
		iso, ok = formatters.RationalToFloat(v.Raw())
	} else if v := vs.LookupIn("ISOSpeedRatings", metadata.TierEXIF); v.Present() {
		n, err := strconv.Atoi(strings.TrimSpace(v.String()))
		iso, ok = float64(n), err == nil
	}
	if ok && (iso > MaxISO || iso < MinISO) {
		out.indicator("abnormal ISO value: %s", metadata.FormatFloat(iso))
	}
	return nil
}

func checkFocalLength(vs metadata.Views, out *Outcome) error {
	var (
		fl float64
		ok bool
	)
	if v := vs.LookupIn("FocalLength", metadata.TierFlat); v.Present() {
		if items, isSlice := v.Raw().([]any); isSlice && len(items) != 1 {
			return shapeError("FocalLength", v.Raw())
		}
		fl, ok = formatters.RationalToFloat(v.Raw())
	} else if v := vs.LookupIn("FocalLength", metadata.TierEXIF); v.Present() {
		fl, ok = formatters.RationalToFloat(strings.TrimSpace(v.String()))
	}
	if ok && (fl > MaxFocalLength || fl < MinFocalLength) {
		out.indicator("abnormal focal length: %smm", metadata.FormatFloat(fl))
	}
	return nil
}
