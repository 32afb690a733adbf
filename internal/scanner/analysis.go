package scanner

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/digimosa/exif-inspector/internal/analyzer"
	"github.com/digimosa/exif-inspector/internal/models"
)

// scanFile reads one file and runs the full analysis over it.
func (s *Scanner) scanFile(path string) models.ScanResult {
	start := time.Now()
	res := models.ScanResult{
		FilePath:  path,
		FileType:  strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
		Timestamp: start,
	}

	if s.cfg.Verbose {
		log.Printf("[SCAN] analyzing file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err
		res.Report = analyzer.ReadFailure(filepath.Base(path), err)
		res.ErrorMsg = res.Report.ErrorText()
		if s.cfg.Verbose {
			log.Printf("[ERROR] failed to read file %s: %v", path, err)
		}
		res.ScanTime = time.Since(start)
		return res
	}
	res.Size = int64(len(data))
	res.Fingerprint = analyzer.Fingerprint(data)
	res.Report = s.analyzer.AnalyzeBytes(filepath.Base(path), data)
	if !res.Report.Success {
		res.ErrorMsg = res.Report.ErrorText()
	}

	res.ScanTime = time.Since(start)
	return res
}
