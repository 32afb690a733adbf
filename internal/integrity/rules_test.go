package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/exif-inspector/internal/metadata"
	"github.com/digimosa/exif-inspector/internal/models"
)

func flat(kv ...any) metadata.Views {
	f := metadata.FlatView{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[kv[i].(string)] = kv[i+1]
	}
	return metadata.Views{Flat: f}
}

func messages(out Outcome, kind models.FindingKind) []string {
	var msgs []string
	for _, f := range out.Findings {
		if f.Kind == kind {
			msgs = append(msgs, f.Message)
		}
	}
	return msgs
}

func TestScorer(t *testing.T) {
	tests := []struct {
		indicators, warnings int
		confidence           float64
		modified             bool
	}{
		{0, 0, 0.0, false},
		{1, 0, 0.3, false},
		{0, 2, 0.2, false},
		{1, 1, 0.4, true},
		{2, 0, 0.6, true},
		{3, 1, 1.0, true},
		{4, 0, 1.0, true},
		{10, 10, 1.0, true},
	}
	for _, tt := range tests {
		c, m := DefaultScorer.Score(tt.indicators, tt.warnings)
		assert.InDelta(t, tt.confidence, c, 1e-9, "i=%d w=%d", tt.indicators, tt.warnings)
		assert.Equal(t, tt.modified, m, "i=%d w=%d", tt.indicators, tt.warnings)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestTimestampRule_Boundary(t *testing.T) {
	out := TimestampRule{}.Check(flat(
		"DateTime", "2024:01:15 14:30:25",
		"DateTimeOriginal", "2024:01:15 13:30:25",
	))
	assert.Empty(t, out.Findings, "exactly one hour apart is tolerated")

	out = TimestampRule{}.Check(flat(
		"DateTime", "2024:01:15 14:30:25",
		"DateTimeOriginal", "2024:01:15 13:30:24",
	))
	assert.Equal(t, []string{
		"timestamps inconsistent: DateTime and DateTimeOriginal differ by 1.0 hours",
	}, messages(out, models.KindIndicator))
}

func TestTimestampRule_EveryPair(t *testing.T) {
	out := TimestampRule{}.Check(flat(
		"DateTime", "2024:01:15 20:00:00",
		"DateTimeOriginal", "2024:01:15 10:00:00",
		"DateTimeDigitized", "2024:01:14 10:00:00",
	))
	assert.Equal(t, []string{
		"timestamps inconsistent: DateTime and DateTimeOriginal differ by 10.0 hours",
		"timestamps inconsistent: DateTime and DateTimeDigitized differ by 34.0 hours",
		"timestamps inconsistent: DateTimeOriginal and DateTimeDigitized differ by 24.0 hours",
	}, messages(out, models.KindIndicator))
}

func TestTimestampRule_UnparseableIsWarning(t *testing.T) {
	out := TimestampRule{}.Check(flat(
		"DateTime", "2024-01-15T14:30:25",
		"DateTimeOriginal", "2024:01:15 14:30:25",
		"DateTimeDigitized", 17,
	))

	assert.Empty(t, messages(out, models.KindIndicator))
	assert.Equal(t, []string{
		"cannot parse timestamp DateTime: 2024-01-15T14:30:25",
		"cannot parse timestamp DateTimeDigitized: 17",
	}, messages(out, models.KindWarning))

	ts := out.Details.Timestamps
	require.Len(t, ts, 3)
	assert.Equal(t, "2024-01-15T14:30:25", *ts["DateTime"])
	assert.Equal(t, "2024:01:15 14:30:25", *ts["DateTimeOriginal"])
	assert.Equal(t, "17", *ts["DateTimeDigitized"])
}

func TestDeviceRule(t *testing.T) {
	tests := []struct {
		make, model string
		mismatch    bool
		unknown     bool
	}{
		{"Canon", "EOS R5", false, false},
		{"Canon", "PowerShot G7X", false, false},
		{"Nikon", "D850", false, false},
		{"Nikon", "Z7 II", false, false},
		{"Sony", "Alpha 7R IV", false, false},
		{"Sony", "RX100 VII", false, false},
		{"Apple", "iPhone 13 Pro", false, false},
		{"Samsung", "Galaxy S21", false, false},
		{"Huawei", "P40 Pro", false, false},
		{"Xiaomi", "Mi 11", false, false},
		{"Canon", "D850", true, false},
		{"Nikon", "EOS R5", true, false},
		{"Sony", "iPhone 13", true, false},
		{"Apple", "Galaxy S21", true, false},
		{"UnknownBrand", "Model123", false, true},
		{"MyCamera", "SuperShot", false, true},
		{"CANON", "eos r5", false, false},
		{"canon", "EOS R5", false, false},
		{"Sony", "ALPHA 7R IV", false, false},
		{"NIKON CORPORATION", "NIKON D750", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.make+"/"+tt.model, func(t *testing.T) {
			out := DeviceRule{}.Check(flat("Make", tt.make, "Model", tt.model))
			require.NoError(t, out.Err)

			indicators := messages(out, models.KindIndicator)
			warnings := messages(out, models.KindWarning)
			if tt.mismatch {
				assert.Equal(t, []string{"manufacturer and model mismatch: " + tt.make + " - " + tt.model}, indicators)
			} else {
				assert.Empty(t, indicators)
			}
			if tt.unknown {
				assert.Equal(t, []string{"unknown manufacturer: " + tt.make}, warnings)
			} else {
				assert.Empty(t, warnings)
			}
		})
	}
}

func TestDeviceRule_IgnoresEXIFGroup(t *testing.T) {
	out := DeviceRule{}.Check(metadata.Views{Namespaced: metadata.NamespacedView{
		"EXIF Make":   "Canon",
		"EXIF Model":  "iPhone 13",
		"Image Model": "iPhone 13",
	}})
	assert.Empty(t, out.Findings, "make only exists in the EXIF group")
	require.NotNil(t, out.Details.DeviceInfo)
	assert.Nil(t, out.Details.DeviceInfo.Make)
	assert.Equal(t, "iPhone 13", *out.Details.DeviceInfo.Model)
}

func TestMissingFieldsRule(t *testing.T) {
	out := MissingFieldsRule{}.Check(metadata.Views{Namespaced: metadata.NamespacedView{
		"Image Make": "Canon",
	}})
	assert.Equal(t, []string{"missing critical EXIF fields: Model, DateTime"}, messages(out, models.KindIndicator))
	assert.Equal(t, []string{"Model", "DateTime"}, out.Details.MissingFields)
}

func TestSuspiciousValueRule(t *testing.T) {
	tests := []struct {
		name string
		vs   metadata.Views
		want []string
	}{
		{"normal iso", flat("ISOSpeedRatings", 400), nil},
		{"iso upper bound", flat("ISOSpeedRatings", 102400), nil},
		{"iso lower bound", flat("ISOSpeedRatings", 25), nil},
		{"iso too high", flat("ISOSpeedRatings", 204800), []string{"abnormal ISO value: 204800"}},
		{"iso zero", flat("ISOSpeedRatings", 0), []string{"abnormal ISO value: 0"}},
		{"iso numeric string", flat("ISOSpeedRatings", "12"), []string{"abnormal ISO value: 12"}},
		{"iso garbage", flat("ISOSpeedRatings", "auto"), nil},
		{"iso from exif group", metadata.Views{Namespaced: metadata.NamespacedView{"EXIF ISOSpeedRatings": 20}},
			[]string{"abnormal ISO value: 20"}},
		{"iso image group ignored", metadata.Views{Namespaced: metadata.NamespacedView{"Image ISOSpeedRatings": 20}}, nil},
		{"normal focal length", flat("FocalLength", metadata.Rational{Num: 50, Den: 1}), nil},
		{"focal length too long", flat("FocalLength", metadata.Rational{Num: 5000, Den: 1}),
			[]string{"abnormal focal length: 5000mm"}},
		{"focal length too short", flat("FocalLength", 0.5), []string{"abnormal focal length: 0.5mm"}},
		{"focal length fraction string", metadata.Views{Namespaced: metadata.NamespacedView{"EXIF FocalLength": "12000/10"}},
			[]string{"abnormal focal length: 1200mm"}},
		{"focal length zero denominator", flat("FocalLength", metadata.Rational{Num: 1, Den: 0}), nil},
		{"both", flat("ISOSpeedRatings", 10, "FocalLength", 2000),
			[]string{"abnormal ISO value: 10", "abnormal focal length: 2000mm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SuspiciousValueRule{}.Check(tt.vs)
			require.NoError(t, out.Err)
			assert.Equal(t, tt.want, messages(out, models.KindIndicator))
		})
	}
}

func TestSuspiciousValueRule_ShapeErrorsDoNotStopOtherCheck(t *testing.T) {
	out := SuspiciousValueRule{}.Check(flat(
		"ISOSpeedRatings", []any{100, 200},
		"FocalLength", 4000,
	))
	require.ErrorIs(t, out.Err, ErrUnexpectedShape)
	assert.Equal(t, []string{"abnormal focal length: 4000mm"}, messages(out, models.KindIndicator))
}

func TestSoftwareRule_BothSignalsFire(t *testing.T) {
	out := SoftwareRule{}.Check(flat("ProcessingSoftware", "Photo Editor Pro"))
	assert.Equal(t, []string{"suspicious software signature: Photo Editor Pro"}, messages(out, models.KindIndicator))
	assert.Nil(t, out.Details.EditingSoftware)

	out = SoftwareRule{}.Check(flat("Software", "Snapseed 2.0", "HostComputer", "VSCO"))
	assert.Equal(t, []string{
		"editing software detected: Snapseed",
		"editing software detected: VSCO",
	}, messages(out, models.KindIndicator))
	require.NotNil(t, out.Details.EditingSoftware)
	assert.Equal(t, "VSCO", *out.Details.EditingSoftware)
}
