package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/digimosa/exif-inspector/internal/models"
)

var (
	ErrNotFound        = errors.New("analysis not found")
	ErrInvalidFeedback = errors.New(`feedback must be "correct" or "incorrect"`)
)

type ScanModel struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	RootPath        string          `json:"root_path"`
	Status          string          `json:"status"` // "Running", "Completed", "Failed"
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	Duration        time.Duration   `json:"duration"`
	TotalFiles      int64           `json:"total_files"`
	FlaggedFiles    int64           `json:"flagged_files"`
	TotalIndicators int64           `json:"total_indicators"`
	Analyses        []AnalysisModel `gorm:"foreignKey:ScanID" json:"analyses,omitempty"`
}

type AnalysisModel struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	ScanID      *uint          `gorm:"index" json:"scan_id,omitempty"`
	FileName    string         `json:"file_name"`
	ContentHash string         `gorm:"index" json:"content_hash"`
	Success     bool           `json:"success"`
	IsModified  bool           `json:"is_modified"`
	Confidence  float64        `json:"confidence"`
	Make        string         `json:"make"`
	Model       string         `json:"model"`
	Error       string         `json:"error,omitempty"`
	Feedback    string         `json:"feedback,omitempty"` // "correct" or "incorrect"
	CreatedAt   time.Time      `json:"created_at"`
	Findings    []FindingModel `gorm:"foreignKey:AnalysisID" json:"findings,omitempty"`
}

type FindingModel struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	AnalysisID string `gorm:"index;size:36" json:"-"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Position   int    `json:"-"`
}

// Store is the analysis history, kept in sqlite.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.AutoMigrate(&ScanModel{}, &AnalysisModel{}, &FindingModel{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newAnalysis(fingerprint string, r models.Report) *AnalysisModel {
	a := &AnalysisModel{
		ID:          r.ID,
		FileName:    r.FileName,
		ContentHash: fingerprint,
		Success:     r.Success,
		Error:       r.ErrorText(),
		CreatedAt:   time.Now(),
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if ic := r.IntegrityCheck; ic != nil {
		a.IsModified = ic.IsModified
		a.Confidence = ic.Confidence
		if d := ic.Details.DeviceInfo; d != nil {
			if d.Make != nil {
				a.Make = *d.Make
			}
			if d.Model != nil {
				a.Model = *d.Model
			}
		}
		pos := 0
		for _, msg := range ic.Indicators {
			a.Findings = append(a.Findings, FindingModel{Kind: string(models.KindIndicator), Message: msg, Position: pos})
			pos++
		}
		for _, msg := range ic.Warnings {
			a.Findings = append(a.Findings, FindingModel{Kind: string(models.KindWarning), Message: msg, Position: pos})
			pos++
		}
	}
	return a
}

// SaveReport records one analysis with its findings.
func (s *Store) SaveReport(ctx context.Context, fingerprint string, r models.Report) error {
	return s.db.WithContext(ctx).Create(newAnalysis(fingerprint, r)).Error
}

// SaveScanResult records an analysis produced by a batch scan.
func (s *Store) SaveScanResult(ctx context.Context, scanID uint, fingerprint string, r models.Report) error {
	a := newAnalysis(fingerprint, r)
	a.ScanID = &scanID
	return s.db.WithContext(ctx).Create(a).Error
}

// ListAnalyses returns the most recent analyses first, without findings.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]AnalysisModel, error) {
	var out []AnalysisModel
	q := s.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetAnalysis returns one analysis with its findings in emission order.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*AnalysisModel, error) {
	var a AnalysisModel
	err := s.db.WithContext(ctx).
		Preload("Findings", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateFeedback stores a reviewer's verdict on an analysis.
func (s *Store) UpdateFeedback(ctx context.Context, id, feedback string) error {
	feedback = strings.ToLower(strings.TrimSpace(feedback))
	if feedback != "correct" && feedback != "incorrect" {
		return ErrInvalidFeedback
	}
	res := s.db.WithContext(ctx).Model(&AnalysisModel{}).Where("id = ?", id).Update("feedback", feedback)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateScan(ctx context.Context, rootPath string) (*ScanModel, error) {
	scan := &ScanModel{
		RootPath:  rootPath,
		Status:    "Running",
		StartTime: time.Now(),
	}
	res := s.db.WithContext(ctx).Create(scan)
	return scan, res.Error
}

func (s *Store) CompleteScan(ctx context.Context, scan *ScanModel, totalFiles, flaggedFiles, totalIndicators int64) error {
	scan.EndTime = time.Now()
	scan.Duration = scan.EndTime.Sub(scan.StartTime)
	scan.Status = "Completed"
	scan.TotalFiles = totalFiles
	scan.FlaggedFiles = flaggedFiles
	scan.TotalIndicators = totalIndicators
	return s.db.WithContext(ctx).Model(scan).
		Select("EndTime", "Duration", "Status", "TotalFiles", "FlaggedFiles", "TotalIndicators").
		Updates(scan).Error
}

func (s *Store) GetAllScans(ctx context.Context) ([]ScanModel, error) {
	var scans []ScanModel
	err := s.db.WithContext(ctx).Order("start_time desc").Find(&scans).Error
	return scans, err
}

func (s *Store) GetScanByID(ctx context.Context, id uint) (*ScanModel, error) {
	var scan ScanModel
	err := s.db.WithContext(ctx).Preload("Analyses").First(&scan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &scan, nil
}
