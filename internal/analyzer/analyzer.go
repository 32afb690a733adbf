// Package analyzer assembles the report shown for one photo: device
// details, formatted capture settings and the integrity verdict.
package analyzer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/digimosa/exif-inspector/internal/extractor"
	"github.com/digimosa/exif-inspector/internal/formatters"
	"github.com/digimosa/exif-inspector/internal/integrity"
	"github.com/digimosa/exif-inspector/internal/metadata"
	"github.com/digimosa/exif-inspector/internal/models"
)

// DeviceFields are shown in the device section of a report.
var DeviceFields = []string{"Make", "Model", "Software", "LensModel", "LensMake"}

// TechnicalFields are shown in the technical section of a report.
var TechnicalFields = []string{
	"DateTime", "DateTimeOriginal", "ExposureTime", "FNumber",
	"ISOSpeedRatings", "FocalLength", "Flash", "WhiteBalance",
	"ExposureMode", "MeteringMode", "Orientation",
}

// NoDeviceInfo is attached to a successful report that found no device fields.
const NoDeviceInfo = "no device information could be extracted from the photo, possibly because:\n" +
	"1. the photo carries no EXIF data\n" +
	"2. the EXIF data has been stripped\n" +
	"3. the image format does not support EXIF"

// ErrFileNotFound is reported by AnalyzeFile for a missing path.
var ErrFileNotFound = errors.New("file does not exist")

// Analyzer turns image payloads into reports. It holds no per-call state
// and is safe for concurrent use.
type Analyzer struct {
	factory *extractor.Factory
	checker *integrity.Checker
}

// New creates an analyzer. Nil arguments select the defaults.
func New(factory *extractor.Factory, checker *integrity.Checker) *Analyzer {
	if factory == nil {
		factory = extractor.NewFactory(nil)
	}
	if checker == nil {
		checker = integrity.NewChecker()
	}
	return &Analyzer{factory: factory, checker: checker}
}

// AnalyzeViews builds a report from already decoded views. It always
// succeeds.
func (a *Analyzer) AnalyzeViews(flat metadata.FlatView, ns metadata.NamespacedView) models.Report {
	vs := metadata.Views{Flat: flat, Namespaced: ns}
	result := a.checker.Check(vs)

	r := models.Report{
		Success:        true,
		DeviceInfo:     collect(vs, DeviceFields),
		TechnicalInfo:  collect(vs, TechnicalFields),
		IntegrityCheck: &result,
	}
	if len(r.DeviceInfo) == 0 {
		r.SetError(NoDeviceInfo)
	}
	return r
}

// collect resolves each field through the three-tier lookup, formats it and
// files it under its display label.
func collect(vs metadata.Views, fields []string) map[string]string {
	out := make(map[string]string)
	for _, field := range fields {
		v := vs.Lookup(field)
		if !v.Present() {
			continue
		}
		out[formatters.Label(field)] = formatters.Apply(field, v.Raw())
	}
	return out
}

// AnalyzeBytes decodes an in-memory image and analyzes it. Unsupported,
// empty or corrupt payloads produce Success=false with the cause in Error.
func (a *Analyzer) AnalyzeBytes(name string, data []byte) models.Report {
	ex, err := a.factory.Extract(data)
	if err != nil {
		return failed(name, err.Error())
	}

	r := a.AnalyzeViews(ex.Flat, ex.Namespaced)
	r.ID = uuid.NewString()
	r.FileName = name
	r.TechnicalInfo[formatters.LabelImageSize] = ex.Info.Size()
	r.TechnicalInfo[formatters.LabelImageFmt] = ex.Info.Format
	r.TechnicalInfo[formatters.LabelColourMode] = ex.Info.Mode
	return r
}

// AnalyzeReader reads r to the end and analyzes the result.
func (a *Analyzer) AnalyzeReader(name string, r io.Reader) models.Report {
	data, err := io.ReadAll(r)
	if err != nil {
		return failed(name, fmt.Sprintf("cannot read image: %v", err))
	}
	return a.AnalyzeBytes(name, data)
}

// AnalyzeFile reads and analyzes the file at path.
func (a *Analyzer) AnalyzeFile(path string) models.Report {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return ReadFailure(name, err)
	}
	return a.AnalyzeBytes(name, data)
}

// ReadFailure builds the failed report for a file that could not be read.
func ReadFailure(name string, err error) models.Report {
	if errors.Is(err, fs.ErrNotExist) {
		return failed(name, ErrFileNotFound.Error())
	}
	return failed(name, fmt.Sprintf("cannot read image: %v", err))
}

func failed(name, msg string) models.Report {
	r := models.Report{
		FileName:      name,
		DeviceInfo:    map[string]string{},
		TechnicalInfo: map[string]string{},
	}
	r.SetError(msg)
	return r
}

var std = New(nil, nil)

// AnalyzeViews runs the default analyzer over two decoded views.
func AnalyzeViews(flat metadata.FlatView, ns metadata.NamespacedView) models.Report {
	return std.AnalyzeViews(flat, ns)
}

// AnalyzeBytes runs the default analyzer over an in-memory image.
func AnalyzeBytes(name string, data []byte) models.Report {
	return std.AnalyzeBytes(name, data)
}

// AnalyzeFile runs the default analyzer over a file.
func AnalyzeFile(path string) models.Report {
	return std.AnalyzeFile(path)
}
