package analyzer

import (
	"context"
	"fmt"
	"log"

	"github.com/OneOfOne/xxhash"

	"github.com/digimosa/exif-inspector/internal/models"
)

// ReportCache stores finished reports by a key derived from the payload
// fingerprint.
type ReportCache interface {
	Get(ctx context.Context, key string) (*models.Report, error)
	Set(ctx context.Context, key string, r models.Report) error
}

// ReportStore keeps a history of analyses.
type ReportStore interface {
	SaveReport(ctx context.Context, fingerprint string, r models.Report) error
}

// Versioned is implemented by inputs whose changes alter reports, such as
// the software allowlist.
type Versioned interface {
	Generation() uint64
}

// Service wraps an Analyzer with an optional cache and history store.
// Either may be nil. Their failures are logged and never change the report.
type Service struct {
	analyzer *Analyzer
	cache    ReportCache
	store    ReportStore
	scope    Versioned
	verbose  bool
}

// NewService creates a service around a.
func NewService(a *Analyzer, cache ReportCache, store ReportStore, verbose bool) *Service {
	if a == nil {
		a = New(nil, nil)
	}
	return &Service{analyzer: a, cache: cache, store: store, verbose: verbose}
}

// ScopeCache ties cached reports to the current generation of v, so a
// change to v stops earlier reports from being served.
func (s *Service) ScopeCache(v Versioned) {
	s.scope = v
}

func (s *Service) cacheKey(fp string) string {
	if s.scope == nil {
		return fp
	}
	return fmt.Sprintf("%016x:%s", s.scope.Generation(), fp)
}

// Analyzer returns the wrapped analyzer.
func (s *Service) Analyzer() *Analyzer { return s.analyzer }

// Fingerprint identifies a payload for caching and history lookups.
func Fingerprint(data []byte) string {
	h := xxhash.NewS64(0)
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Inspect analyzes data, consulting the cache first. Successful reports are
// persisted and cached; failed ones are returned as is.
func (s *Service) Inspect(ctx context.Context, name string, data []byte) models.Report {
	fp := Fingerprint(data)
	key := s.cacheKey(fp)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("[CACHE] lookup %s failed: %v", key, err)
		} else if cached != nil {
			if s.verbose {
				log.Printf("[ANALYZE] cache hit for %s (%s)", name, fp)
			}
			cached.Cached = true
			cached.FileName = name
			return *cached
		}
	}

	r := s.analyzer.AnalyzeBytes(name, data)
	if s.verbose {
		log.Printf("[ANALYZE] %s: success=%v", name, r.Success)
	}
	if !r.Success {
		return r
	}

	if s.store != nil {
		if err := s.store.SaveReport(ctx, fp, r); err != nil {
			log.Printf("[STORAGE] saving %s failed: %v", r.ID, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, r); err != nil {
			log.Printf("[CACHE] storing %s failed: %v", key, err)
		}
	}
	return r
}
