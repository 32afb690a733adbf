package scanner

import (
	"context"
	"log"
	"sync"

	"github.com/digimosa/exif-inspector/internal/analyzer"
	"github.com/digimosa/exif-inspector/internal/config"
	"github.com/digimosa/exif-inspector/internal/extractor"
	"github.com/digimosa/exif-inspector/internal/models"
	"github.com/digimosa/exif-inspector/internal/reporting"
	"github.com/digimosa/exif-inspector/internal/storage"
)

// Scanner handles the orchestration of a batch directory scan
type Scanner struct {
	cfg      *config.Config
	jobs     chan models.Job
	results  chan models.ScanResult
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	analyzer *analyzer.Analyzer
	factory  *extractor.Factory
	store    *storage.Store
	scan     *storage.ScanModel
	Report   *reporting.Report
}

// NewScanner creates a scanner. A nil analyzer selects the default one; a
// nil store disables scan history.
func NewScanner(cfg *config.Config, a *analyzer.Analyzer, store *storage.Store) *Scanner {
	ctx, cancel := context.WithCancel(context.Background())
	if a == nil {
		a = analyzer.New(nil, nil)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	s := &Scanner{
		cfg:      cfg,
		jobs:     make(chan models.Job, workers*4), // Buffer relative to workers
		results:  make(chan models.ScanResult, workers*4),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		analyzer: a,
		factory:  extractor.NewFactory(cfg.AllowedExtensions),
		store:    store,
		Report:   reporting.NewReport(),
	}
	s.Report.Summary.RootPath = cfg.RootPath
	return s
}

// Start initializes the worker pool and starts the scan
func (s *Scanner) Start() {
	if s.store != nil {
		scan, err := s.store.CreateScan(s.ctx, s.cfg.RootPath)
		if err != nil {
			log.Printf("[STORAGE] failed to create scan record: %v", err)
		} else {
			s.scan = scan
		}
	}

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	go s.processResults()
	go s.walkFiles()
}

// Wait blocks until scanning is complete
func (s *Scanner) Wait() {
	s.wg.Wait()
	close(s.results)
	<-s.done
}

// Stop abandons the walk; files already queued are dropped.
func (s *Scanner) Stop() {
	s.cancel()
}

// ScanID is the history id of the running scan, or 0 without a store.
func (s *Scanner) ScanID() uint {
	if s.scan == nil {
		return 0
	}
	return s.scan.ID
}
