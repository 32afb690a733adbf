package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/exif-inspector/internal/config"
	"github.com/digimosa/exif-inspector/internal/models"
)

func flaggedReport() models.Report {
	return models.Report{
		FileName: "edited.jpg",
		Success:  true,
		IntegrityCheck: &models.IntegrityResult{
			IsModified: true,
			Confidence: 0.6,
			Indicators: []string{"editing software detected: Adobe Photoshop CC 2023", "missing critical EXIF fields: Make"},
			Warnings:   []string{},
		},
	}
}

func clientFor(t *testing.T, h http.HandlerFunc) *OllamaClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.OllamaURL = srv.URL + "/api/generate"
	return NewClient(cfg)
}

func TestExplain(t *testing.T) {
	var got GenerateRequest
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Response: "```text\nThe photo was saved by an editor.\n```",
			Done:     true,
		})
	})

	text, err := c.Explain(context.Background(), flaggedReport())
	require.NoError(t, err)
	assert.Equal(t, "The photo was saved by an editor.", text)

	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Prompt, "File: edited.jpg")
	assert.Contains(t, got.Prompt, "Verdict: likely modified (confidence 60%)")
	assert.Contains(t, got.Prompt, "- missing critical EXIF fields: Make")
	assert.Contains(t, got.Prompt, "Warnings:\n- none")
}

func TestExplain_Disabled(t *testing.T) {
	c := NewClient(config.DefaultConfig())
	assert.False(t, c.Enabled())

	_, err := c.Explain(context.Background(), flaggedReport())
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrDisabled)
}

func TestExplain_FailedReport(t *testing.T) {
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	r := models.Report{FileName: "x.bmp"}
	r.SetError("unsupported image format")
	_, err := c.Explain(context.Background(), r)
	assert.Error(t, err)
}

func TestExplain_ServerError(t *testing.T) {
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Explain(context.Background(), flaggedReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestPing(t *testing.T) {
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(GenerateResponse{Response: "pong", Done: true})
	})
	assert.NoError(t, c.Ping(context.Background()))
}
