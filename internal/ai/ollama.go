package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/digimosa/exif-inspector/internal/config"
	"github.com/digimosa/exif-inspector/internal/models"
)

// ErrDisabled is returned when no Ollama endpoint is configured.
var ErrDisabled = errors.New("explanations are disabled: no ollama url configured")

type OllamaClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
	Verbose bool
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type GenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewClient(cfg *config.Config) *OllamaClient {
	return &OllamaClient{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		Verbose: cfg.Verbose,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *OllamaClient) Enabled() bool {
	return c != nil && c.BaseURL != ""
}

// Ping checks if the Ollama instance is reachable and the model answers.
func (c *OllamaClient) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.generate(ctx, "ping"); err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", c.BaseURL, err)
	}
	return nil
}

// Explain asks the model for a short plain-language reading of an
// integrity verdict. The verdict itself is never changed.
func (c *OllamaClient) Explain(ctx context.Context, r models.Report) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if !r.Success || r.IntegrityCheck == nil {
		return "", fmt.Errorf("no integrity result to explain for %q", r.FileName)
	}

	prompt := buildPrompt(r)
	if c.Verbose {
		logDebug("PROMPT", prompt)
	}
	answer, err := c.generate(ctx, prompt)
	if err != nil {
		log.Printf("[AI] explaining %s failed: %v", r.FileName, err)
		return "", err
	}
	if c.Verbose {
		logDebug("RESPONSE", answer)
	}
	return cleanMarkdown(answer), nil
}

func (c *OllamaClient) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := GenerateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", err
	}
	return strings.TrimSpace(genResp.Response), nil
}

func logDebug(kind, message string) {
	if len(message) > 500 {
		log.Printf("[AI-%s] %s... (truncated)", kind, message[:500])
	} else {
		log.Printf("[AI-%s] %s", kind, message)
	}
}

func cleanMarkdown(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		}
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
