package reporting

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xuri/excelize/v2"

	"github.com/digimosa/exif-inspector/internal/models"
	"github.com/digimosa/exif-inspector/internal/templates"
)

type Summary struct {
	TotalFilesScanned int64         `json:"total_files_scanned"`
	TotalFilesFlagged int64         `json:"total_files_flagged"`
	TotalIndicators   int64         `json:"total_indicators"`
	TotalErrors       int64         `json:"total_errors"`
	ScanDuration      time.Duration `json:"scan_duration"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	RootPath          string        `json:"root_path"`
}

type Report struct {
	Summary Summary             `json:"summary"`
	Results []models.ScanResult `json:"results"`
	mu      sync.Mutex
}

func NewReport() *Report {
	return &Report{
		Summary: Summary{
			StartTime: time.Now(),
		},
		Results: make([]models.ScanResult, 0),
	}
}

func (r *Report) AddResult(res models.ScanResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Summary.TotalFilesScanned++
	if !res.Report.Success {
		r.Summary.TotalErrors++
	}
	if ic := res.Report.IntegrityCheck; ic != nil {
		r.Summary.TotalIndicators += int64(len(ic.Indicators))
	}
	if res.Flagged() {
		r.Summary.TotalFilesFlagged++
	}
	r.Results = append(r.Results, res)
}

// Finalize stamps the end time and orders results by path so output is
// stable regardless of worker scheduling.
func (r *Report) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Summary.EndTime = time.Now()
	r.Summary.ScanDuration = r.Summary.EndTime.Sub(r.Summary.StartTime)
	sort.Slice(r.Results, func(i, j int) bool {
		return r.Results[i].FilePath < r.Results[j].FilePath
	})
}

// Flagged returns the results judged modified.
func (r *Report) Flagged() []models.ScanResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ScanResult
	for _, res := range r.Results {
		if res.Flagged() {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) SaveJSON(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return r.WriteJSON(file)
}

func (r *Report) WriteJSON(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

func (r *Report) SaveHTML(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return r.RenderHTML(file)
}

// sanitizer strips any markup smuggled into metadata strings.
var sanitizer = bluemonday.StrictPolicy()

// clean returns s as text-only HTML. The policy's output is already
// escaped, so it is not escaped a second time.
func clean(s string) template.HTML {
	return template.HTML(sanitizer.Sanitize(s))
}

func Verdict(res models.ScanResult) string {
	switch {
	case !res.Report.Success:
		return "error"
	case res.Flagged():
		return "modified"
	default:
		return "original"
	}
}

func deviceField(res models.ScanResult, model bool) string {
	ic := res.Report.IntegrityCheck
	if ic == nil || ic.Details.DeviceInfo == nil {
		return ""
	}
	p := ic.Details.DeviceInfo.Make
	if model {
		p = ic.Details.DeviceInfo.Model
	}
	if p == nil {
		return ""
	}
	return *p
}

func findings(res models.ScanResult, warnings bool) []string {
	ic := res.Report.IntegrityCheck
	if ic == nil {
		return nil
	}
	if warnings {
		return ic.Warnings
	}
	return ic.Indicators
}

func (r *Report) RenderHTML(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"clean":       clean,
		"verdict":     Verdict,
		"deviceMake":  func(res models.ScanResult) string { return deviceField(res, false) },
		"deviceModel": func(res models.ScanResult) string { return deviceField(res, true) },
		"indicators":  func(res models.ScanResult) []string { return findings(res, false) },
		"warnings":    func(res models.ScanResult) []string { return findings(res, true) },
		"percent": func(f float64) string {
			return fmt.Sprintf("%.0f%%", f*100)
		},
	}).Parse(templates.ReportHTML)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return tmpl.Execute(w, r)
}

var sheetHeader = []interface{}{
	"File", "Type", "Size", "Verdict", "Confidence", "Make", "Model", "Indicators", "Warnings", "Error",
}

const sheetName = "Analyses"

func (r *Report) SaveXLSX(filename string) error {
	f, err := r.workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(filename)
}

func (r *Report) WriteXLSX(w io.Writer) error {
	f, err := r.workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// workbook lays out one row per scanned file below a header row.
func (r *Report) workbook() (*excelize.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &sheetHeader); err != nil {
		f.Close()
		return nil, err
	}

	for i, res := range r.Results {
		var confidence float64
		if ic := res.Report.IntegrityCheck; ic != nil {
			confidence = ic.Confidence
		}
		errText := res.ErrorMsg
		if !res.Report.Success && errText == "" {
			errText = res.Report.ErrorText()
		}
		row := []interface{}{
			res.FilePath,
			res.FileType,
			res.Size,
			Verdict(res),
			confidence,
			deviceField(res, false),
			deviceField(res, true),
			strings.Join(findings(res, false), "\n"),
			strings.Join(findings(res, true), "\n"),
			errText,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
