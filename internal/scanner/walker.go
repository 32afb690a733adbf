package scanner

import (
	"log"
	"os"
	"path/filepath"

	"github.com/digimosa/exif-inspector/internal/models"
)

func (s *Scanner) walkFiles() {
	defer close(s.jobs)

	err := filepath.WalkDir(s.cfg.RootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Printf("[SCAN] error accessing path %s: %v", path, err)
			return nil // Continue walking
		}
		if d.IsDir() || !s.factory.IsSupported(path) {
			return nil
		}

		select {
		case <-s.ctx.Done():
			return filepath.SkipAll
		case s.jobs <- models.Job{FilePath: path}:
		}
		return nil
	})

	if err != nil {
		log.Printf("[SCAN] error walking directory: %v", err)
	}
}
