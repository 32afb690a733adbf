package models

import "time"

// FindingKind separates strong evidence from weak signals.
type FindingKind string

const (
	KindIndicator FindingKind = "indicator"
	KindWarning   FindingKind = "warning"
)

// Finding is one piece of evidence emitted by an integrity rule.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Message string      `json:"message"`
}

// Indicator builds a strong finding.
func Indicator(msg string) Finding { return Finding{Kind: KindIndicator, Message: msg} }

// Warning builds a weak finding.
func Warning(msg string) Finding { return Finding{Kind: KindWarning, Message: msg} }

// DeviceDetails records the make/model pair the device rule looked at.
type DeviceDetails struct {
	Make  *string `json:"make"`
	Model *string `json:"model"`
}

// Details holds structured sub-results keyed by category.
type Details struct {
	DeviceInfo      *DeviceDetails     `json:"device_info,omitempty"`
	Timestamps      map[string]*string `json:"timestamps,omitempty"`
	EditingSoftware *string            `json:"editing_software,omitempty"`
	MissingFields   []string           `json:"missing_fields,omitempty"`
}

// IntegrityResult is the outcome of one integrity pass.
type IntegrityResult struct {
	IsModified bool     `json:"is_modified"`
	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators"`
	Warnings   []string `json:"warnings"`
	Details    Details  `json:"details"`
}

// Report is what the analyzer hands to callers.
type Report struct {
	ID             string            `json:"id,omitempty"`
	FileName       string            `json:"file_name,omitempty"`
	Success        bool              `json:"success"`
	DeviceInfo     map[string]string `json:"device_info"`
	TechnicalInfo  map[string]string `json:"technical_info"`
	IntegrityCheck *IntegrityResult  `json:"integrity_check,omitempty"`
	Error          *string           `json:"error"`
	Cached         bool              `json:"cached,omitempty"`
}

// SetError records a result-level error message.
func (r *Report) SetError(msg string) {
	r.Error = &msg
}

// ErrorText returns the error message, or "" when none.
func (r *Report) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// ScanResult represents the outcome of analyzing a single file in a batch scan
type ScanResult struct {
	FilePath    string        `json:"file_path"`
	FileType    string        `json:"file_type"`
	Size        int64         `json:"size"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Report      Report        `json:"report"`
	Error       error         `json:"-"`
	ErrorMsg    string        `json:"error,omitempty"`
	ScanTime    time.Duration `json:"scan_time"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Flagged reports whether the file's metadata was judged modified.
func (r ScanResult) Flagged() bool {
	return r.Report.IntegrityCheck != nil && r.Report.IntegrityCheck.IsModified
}

// Job represents a file to be analyzed by a worker
type Job struct {
	FilePath string
}
