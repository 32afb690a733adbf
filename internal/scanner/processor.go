package scanner

import (
	"log"
	"time"
)

// processResults drains the result channel on a single goroutine, so the
// report and the history store see one writer.
func (s *Scanner) processResults() {
	count := 0
	start := time.Now()

	for res := range s.results {
		count++
		s.Report.AddResult(res)

		if s.scan != nil {
			if err := s.store.SaveScanResult(s.ctx, s.scan.ID, res.Fingerprint, res.Report); err != nil {
				log.Printf("[STORAGE] saving result for %s failed: %v", res.FilePath, err)
			}
		}

		if !res.Report.Success {
			if s.cfg.Verbose {
				log.Printf("[SCAN] %s: %s", res.FilePath, res.ErrorMsg)
			}
			continue
		}
		if ic := res.Report.IntegrityCheck; ic != nil && ic.IsModified {
			log.Printf("[FLAGGED] %s: confidence %.2f", res.FilePath, ic.Confidence)
			for _, msg := range ic.Indicators {
				log.Printf("  - %s", msg)
			}
		}

		if count%1000 == 0 {
			log.Printf("[SCAN] processed %d files... (rate: %.2f files/sec)", count, float64(count)/time.Since(start).Seconds())
		}
	}
	s.Report.Finalize()

	if s.scan != nil {
		sum := s.Report.Summary
		if err := s.store.CompleteScan(s.ctx, s.scan, sum.TotalFilesScanned, sum.TotalFilesFlagged, sum.TotalIndicators); err != nil {
			log.Printf("[STORAGE] failed to complete scan record: %v", err)
		}
	}
	close(s.done)
}
