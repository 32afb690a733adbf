package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/exif-inspector/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func str(s string) *string { return &s }

func sampleReport(id string) models.Report {
	return models.Report{
		ID:       id,
		FileName: "edited.jpg",
		Success:  true,
		IntegrityCheck: &models.IntegrityResult{
			IsModified: true,
			Confidence: 0.7,
			Indicators: []string{"editing software detected: GIMP", "suspicious software signature: GIMP 2.10"},
			Warnings:   []string{"unknown manufacturer: Acme"},
			Details: models.Details{
				DeviceInfo: &models.DeviceDetails{Make: str("Acme"), Model: str("Shooter 1")},
			},
		},
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReport(ctx, "00ff00ff00ff00ff", sampleReport("a1")))

	a, err := s.GetAnalysis(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "edited.jpg", a.FileName)
	assert.Equal(t, "00ff00ff00ff00ff", a.ContentHash)
	assert.True(t, a.IsModified)
	assert.InDelta(t, 0.7, a.Confidence, 1e-9)
	assert.Equal(t, "Acme", a.Make)
	assert.Equal(t, "Shooter 1", a.Model)
	assert.Nil(t, a.ScanID)

	require.Len(t, a.Findings, 3)
	assert.Equal(t, "indicator", a.Findings[0].Kind)
	assert.Equal(t, "editing software detected: GIMP", a.Findings[0].Message)
	assert.Equal(t, "suspicious software signature: GIMP 2.10", a.Findings[1].Message)
	assert.Equal(t, "warning", a.Findings[2].Kind)
}

func TestSaveReport_AssignsID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveReport(ctx, "fp", models.Report{FileName: "x.png", Success: true}))

	list, err := s.ListAnalyses(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].ID, 36)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetAnalysis(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAnalyses_Limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveReport(ctx, "fp-"+id, sampleReport(id)))
	}

	list, err := s.ListAnalyses(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Empty(t, list[0].Findings)
}

func TestUpdateFeedback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveReport(ctx, "fp", sampleReport("a1")))

	require.NoError(t, s.UpdateFeedback(ctx, "a1", " Incorrect "))
	a, err := s.GetAnalysis(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "incorrect", a.Feedback)

	assert.ErrorIs(t, s.UpdateFeedback(ctx, "a1", "maybe"), ErrInvalidFeedback)
	assert.ErrorIs(t, s.UpdateFeedback(ctx, "missing", "correct"), ErrNotFound)
}

func TestScanLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	scan, err := s.CreateScan(ctx, "/photos")
	require.NoError(t, err)
	assert.Equal(t, "Running", scan.Status)

	require.NoError(t, s.SaveScanResult(ctx, scan.ID, "fp1", sampleReport("s1")))
	require.NoError(t, s.SaveScanResult(ctx, scan.ID, "fp2", sampleReport("s2")))
	require.NoError(t, s.CompleteScan(ctx, scan, 2, 2, 4))

	got, err := s.GetScanByID(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Completed", got.Status)
	assert.Equal(t, int64(2), got.FlaggedFiles)
	assert.Equal(t, int64(4), got.TotalIndicators)
	assert.Len(t, got.Analyses, 2)

	scans, err := s.GetAllScans(ctx)
	require.NoError(t, err)
	assert.Len(t, scans, 1)

	_, err = s.GetScanByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
