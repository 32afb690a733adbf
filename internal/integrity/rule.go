// Package integrity scores how likely it is that an image's EXIF metadata
// was altered after capture.
//
// The result is advisory: it is derived from metadata heuristics only and
// says nothing about pixel data.
package integrity

import (
	"errors"
	"fmt"

	"github.com/digimosa/exif-inspector/internal/metadata"
	"github.com/digimosa/exif-inspector/internal/models"
)

// ErrUnexpectedShape is returned by a rule that met a value it cannot read.
var ErrUnexpectedShape = errors.New("unexpected value shape")

// Rule is one independent integrity check.
type Rule interface {
	Name() string
	Check(vs metadata.Views) Outcome
}

// Outcome is what a rule produced. Findings and Details are kept even when
// Err is set; the checker turns Err into a warning.
type Outcome struct {
	Findings []models.Finding
	Details  models.Details
	Err      error
}

func (o *Outcome) indicator(format string, args ...any) {
	o.Findings = append(o.Findings, models.Indicator(fmt.Sprintf(format, args...)))
}

func (o *Outcome) warning(format string, args ...any) {
	o.Findings = append(o.Findings, models.Warning(fmt.Sprintf(format, args...)))
}

func (o *Outcome) fail(err error) {
	o.Err = errors.Join(o.Err, err)
}

// runRule executes r and converts a panic into a failed outcome.
func runRule(r Rule, vs metadata.Views) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = Outcome{Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	return r.Check(vs)
}

func shapeError(field string, v any) error {
	return fmt.Errorf("%w: %s is %T", ErrUnexpectedShape, field, v)
}

func mergeDetails(dst *models.Details, src models.Details) {
	if src.DeviceInfo != nil {
		dst.DeviceInfo = src.DeviceInfo
	}
	if src.Timestamps != nil {
		dst.Timestamps = src.Timestamps
	}
	if src.EditingSoftware != nil {
		dst.EditingSoftware = src.EditingSoftware
	}
	if src.MissingFields != nil {
		dst.MissingFields = src.MissingFields
	}
}
