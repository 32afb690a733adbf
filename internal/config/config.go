package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/digimosa/exif-inspector/internal/integrity"
)

type Scoring struct {
	IndicatorWeight float64 `yaml:"indicator_weight"`
	WarningWeight   float64 `yaml:"warning_weight"`
	Threshold       float64 `yaml:"threshold"`
}

type Config struct {
	// Batch scan
	RootPath  string `yaml:"root_path"`
	Workers   int    `yaml:"workers"`
	ReportDir string `yaml:"report_dir"`
	Verbose   bool   `yaml:"verbose"`

	// HTTP upload server
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	CORSOrigins       []string `yaml:"cors_origins"`

	// Backends. An empty DBPath or RedisURL disables that backend.
	DBPath   string        `yaml:"db_path"`
	RedisURL string        `yaml:"redis_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// Optional explanation model. Empty OllamaURL disables it.
	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`

	// AllowlistPath is the file of trusted software strings.
	AllowlistPath string `yaml:"allowlist_path"`

	Scoring Scoring `yaml:"scoring"`
}

func DefaultConfig() *Config {
	return &Config{
		Workers:           runtime.NumCPU(),
		ReportDir:         ".",
		Host:              "0.0.0.0",
		Port:              5000,
		MaxUploadBytes:    16 << 20,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "tiff", "tif", "bmp"},
		CORSOrigins:       []string{"*"},
		DBPath:            "inspector.db",
		CacheTTL:          24 * time.Hour,
		OllamaModel:       "llama3.2",
		AllowlistPath:     "allowlist.txt",
		Scoring: Scoring{
			IndicatorWeight: integrity.DefaultScorer.IndicatorWeight,
			WarningWeight:   integrity.DefaultScorer.WarningWeight,
			Threshold:       integrity.DefaultScorer.Threshold,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from EXIF_* environment variables.
func (c *Config) ApplyEnv() {
	c.Host = getEnv("EXIF_HOST", c.Host)
	c.Port = getEnvAsInt("EXIF_PORT", c.Port)
	c.Workers = getEnvAsInt("EXIF_WORKERS", c.Workers)
	c.DBPath = getEnv("EXIF_DB_PATH", c.DBPath)
	c.RedisURL = getEnv("EXIF_REDIS_URL", c.RedisURL)
	c.OllamaURL = getEnv("EXIF_OLLAMA_URL", c.OllamaURL)
	c.OllamaModel = getEnv("EXIF_OLLAMA_MODEL", c.OllamaModel)
	c.AllowlistPath = getEnv("EXIF_ALLOWLIST", c.AllowlistPath)
	c.ReportDir = getEnv("EXIF_REPORT_DIR", c.ReportDir)
	c.Verbose = getEnvAsBool("EXIF_VERBOSE", c.Verbose)
	if v := os.Getenv("EXIF_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("EXIF_ALLOWED_EXTENSIONS"); v != "" {
		c.AllowedExtensions = strings.Split(v, ",")
	}
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	if len(c.AllowedExtensions) == 0 {
		errs = append(errs, errors.New("allowed_extensions must not be empty"))
	}
	if c.Scoring.IndicatorWeight <= 0 || c.Scoring.WarningWeight <= 0 {
		errs = append(errs, errors.New("scoring weights must be positive"))
	}
	if c.Scoring.Threshold < 0 || c.Scoring.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("scoring threshold %v must be in [0, 1)", c.Scoring.Threshold))
	}
	return errors.Join(errs...)
}

// Scorer returns the integrity scorer described by the scoring section.
func (c *Config) Scorer() integrity.Scorer {
	return integrity.Scorer{
		IndicatorWeight: c.Scoring.IndicatorWeight,
		WarningWeight:   c.Scoring.WarningWeight,
		Threshold:       c.Scoring.Threshold,
	}
}

// Addr is the listen address of the upload server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
