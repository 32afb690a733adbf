package integrity

import (
	"strings"

	"github.com/digimosa/exif-inspector/internal/metadata"
)

// MissingFieldsRule flags images lacking fields every camera writes.
type MissingFieldsRule struct{}

func (MissingFieldsRule) Name() string { return "missing critical fields" }

func (MissingFieldsRule) Check(vs metadata.Views) Outcome {
	var out Outcome

	var missing []string
	for _, field := range CriticalFields {
		if !vs.Lookup(field).Present() {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		out.indicator("missing critical EXIF fields: %s", strings.Join(missing, ", "))
		out.Details.MissingFields = missing
	}
	return out
}
