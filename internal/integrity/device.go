package integrity

import (
	"strings"

	"github.com/digimosa/exif-inspector/internal/metadata"
	"github.com/digimosa/exif-inspector/internal/models"
)

// DeviceRule checks that the model name belongs to the stated manufacturer.
// Make and Model are image-level tags, so the EXIF group is not consulted.
type DeviceRule struct{}

func (DeviceRule) Name() string { return "device consistency" }

func (DeviceRule) Check(vs metadata.Views) Outcome {
	mk := vs.LookupIn("Make", metadata.TierFlat, metadata.TierImage)
	md := vs.LookupIn("Model", metadata.TierFlat, metadata.TierImage)

	out := Outcome{Details: models.Details{
		DeviceInfo: &models.DeviceDetails{Make: mk.Ptr(), Model: md.Ptr()},
	}}
	if !mk.Present() || !md.Present() {
		return out
	}

	makeStr, ok := mk.Raw().(string)
	if !ok {
		out.fail(shapeError("Make", mk.Raw()))
		return out
	}
	modelStr, ok := md.Raw().(string)
	if !ok {
		out.fail(shapeError("Model", md.Raw()))
		return out
	}

	m, found := matchManufacturer(strings.ToLower(makeStr))
	if !found {
		out.warning("unknown manufacturer: %s", makeStr)
		return out
	}

	modelLower := strings.ToLower(modelStr)
	for _, p := range m.Models {
		if strings.Contains(modelLower, p) {
			return out
		}
	}
	out.indicator("manufacturer and model mismatch: %s - %s", makeStr, modelStr)
	return out
}

func matchManufacturer(makeLower string) (Manufacturer, bool) {
	for _, m := range Manufacturers {
		if strings.Contains(makeLower, m.Key) {
			return m, true
		}
	}
	return Manufacturer{}, false
}
