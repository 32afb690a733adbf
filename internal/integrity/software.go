package integrity

import (
	"strings"

	"github.com/digimosa/exif-inspector/internal/metadata"
)

// Allowlist reports software strings an operator has marked as trusted.
type Allowlist interface {
	Contains(value string) bool
}

// SoftwareRule looks for editing tools in the software tags.
type SoftwareRule struct {
	Allow Allowlist
}

func (SoftwareRule) Name() string { return "software signature" }

func (r SoftwareRule) Check(vs metadata.Views) Outcome {
	var out Outcome

	for _, field := range SoftwareFields {
		v := vs.Lookup(field)
		if !v.Present() {
			continue
		}
		value := v.String()
		if r.Allow != nil && r.Allow.Contains(value) {
			continue
		}

		lower := strings.ToLower(value)
		for _, sig := range EditingSoftwareSignatures {
			if strings.Contains(lower, strings.ToLower(sig)) {
				out.indicator("editing software detected: %s", sig)
				raw := value
				out.Details.EditingSoftware = &raw
				break
			}
		}

		for _, p := range SuspiciousSoftwarePatterns {
			if p.MatchString(value) {
				out.indicator("suspicious software signature: %s", value)
				break
			}
		}
	}

	return out
}
