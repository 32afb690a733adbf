package integrity

import (
	"math"
	"time"

	"github.com/digimosa/exif-inspector/internal/metadata"
	"github.com/digimosa/exif-inspector/internal/models"
)

// TimestampRule compares the capture, digitize and modify timestamps.
type TimestampRule struct{}

func (TimestampRule) Name() string { return "timestamp consistency" }

type parsedTime struct {
	field string
	at    time.Time
}

func (TimestampRule) Check(vs metadata.Views) Outcome {
	out := Outcome{Details: emptyTimestamps()}

	var parsed []parsedTime
	for _, field := range TimestampFields {
		v := vs.Lookup(field)
		if !v.Present() {
			continue
		}
		out.Details.Timestamps[field] = v.Ptr()

		s, ok := v.Raw().(string)
		if !ok {
			out.warning("cannot parse timestamp %s: %s", field, v.String())
			continue
		}
		at, err := time.Parse(ExifTimeLayout, s)
		if err != nil {
			out.warning("cannot parse timestamp %s: %s", field, s)
			continue
		}
		parsed = append(parsed, parsedTime{field: field, at: at})
	}

	for i := 0; i < len(parsed); i++ {
		for j := i + 1; j < len(parsed); j++ {
			diff := math.Abs(parsed[i].at.Sub(parsed[j].at).Seconds())
			if diff > MaxTimestampDrift {
				out.indicator("timestamps inconsistent: %s and %s differ by %.1f hours",
					parsed[i].field, parsed[j].field, diff/3600)
			}
		}
	}

	return out
}

// emptyTimestamps returns details with every timestamp field recorded as unset.
func emptyTimestamps() (d models.Details) {
	d.Timestamps = make(map[string]*string, len(TimestampFields))
	for _, f := range TimestampFields {
		d.Timestamps[f] = nil
	}
	return d
}
