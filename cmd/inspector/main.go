package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/digimosa/exif-inspector/internal/ai"
	"github.com/digimosa/exif-inspector/internal/allowlist"
	"github.com/digimosa/exif-inspector/internal/analyzer"
	"github.com/digimosa/exif-inspector/internal/cache"
	"github.com/digimosa/exif-inspector/internal/config"
	"github.com/digimosa/exif-inspector/internal/extractor"
	"github.com/digimosa/exif-inspector/internal/integrity"
	"github.com/digimosa/exif-inspector/internal/scanner"
	"github.com/digimosa/exif-inspector/internal/server"
	"github.com/digimosa/exif-inspector/internal/storage"
)

func main() {
	// Parse CLI flags
	configPath := flag.String("config", "", "Path to a YAML config file")
	rootPath := flag.String("path", "", "Root directory to scan")
	scan := flag.Bool("scan", false, "Scan every image under -path and write reports")
	file := flag.String("file", "", "Analyze a single image and print the report as JSON")
	explain := flag.Bool("explain", false, "With -file, ask the local Ollama model to explain the verdict")
	serve := flag.Bool("serve", false, "Start the upload web server")
	port := flag.Int("port", 0, "Port for the web server (default from config)")
	workers := flag.Int("workers", 0, "Number of concurrent workers (default: auto)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	// Setup configuration
	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("[ERROR] loading config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if *rootPath != "" {
		cfg.RootPath = *rootPath
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[ERROR] invalid config: %v", err)
	}

	ctx := context.Background()

	al, err := allowlist.New(cfg.AllowlistPath)
	if err != nil {
		log.Printf("[WARN] could not load allowlist %s: %v", cfg.AllowlistPath, err)
		al, _ = allowlist.New("")
	}

	checker := integrity.NewChecker(
		integrity.WithScorer(cfg.Scorer()),
		integrity.WithAllowlist(al),
	)
	a := analyzer.New(extractor.NewFactory(cfg.AllowedExtensions), checker)

	if *file != "" {
		os.Exit(runFile(ctx, cfg, a, *file, *explain))
	}

	// History is optional; every mode keeps working without it.
	var store *storage.Store
	if cfg.DBPath != "" {
		fmt.Printf("Initializing database at: %s\n", cfg.DBPath)
		store, err = storage.Open(cfg.DBPath)
		if err != nil {
			log.Printf("[ERROR] failed to initialize database: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	if *scan {
		runScan(cfg, a, store)
	}

	if *serve {
		var rc analyzer.ReportCache
		if cfg.RedisURL != "" {
			c, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
			if err != nil {
				log.Printf("[CACHE] disabled: %v", err)
			} else {
				defer c.Close()
				rc = c
			}
		}

		var rs analyzer.ReportStore
		if store != nil {
			rs = store
		}
		svc := analyzer.NewService(a, rc, rs, cfg.Verbose)
		svc.ScopeCache(al)
		srv := server.NewServer(cfg, svc, store, al)

		fmt.Printf("\n[SERVER] Starting upload server at http://localhost:%d\n", cfg.Port)
		fmt.Println("Press Ctrl+C to stop")
		if err := srv.Start(cfg.Addr()); err != nil {
			log.Fatalf("[SERVER] %v", err)
		}
	} else if !*scan {
		fmt.Println("No action specified.")
		fmt.Println("Use -file to analyze one image.")
		fmt.Println("Use -scan -path DIR to analyze a directory.")
		fmt.Println("Use -serve to start the upload server.")
		flag.PrintDefaults()
	}
}

func runFile(ctx context.Context, cfg *config.Config, a *analyzer.Analyzer, path string, explain bool) int {
	report := a.AnalyzeFile(path)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		log.Printf("[ERROR] encoding report: %v", err)
		return 1
	}

	if explain {
		client := ai.NewClient(cfg)
		text, err := client.Explain(ctx, report)
		if err != nil {
			log.Printf("[AI] no explanation: %v", err)
		} else {
			fmt.Printf("\n%s\n", text)
		}
	}

	if !report.Success {
		return 1
	}
	return 0
}

func runScan(cfg *config.Config, a *analyzer.Analyzer, store *storage.Store) {
	if cfg.RootPath == "" {
		cfg.RootPath = "."
	}
	fmt.Printf("Starting EXIF scan on: %s\n", cfg.RootPath)
	fmt.Printf("Workers: %d\n", cfg.Workers)

	start := time.Now()
	s := scanner.NewScanner(cfg, a, store)
	s.Start()
	s.Wait()

	sum := s.Report.Summary
	fmt.Printf("\nScan complete in %s: %d files, %d flagged, %d indicators\n",
		time.Since(start), sum.TotalFilesScanned, sum.TotalFilesFlagged, sum.TotalIndicators)

	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		log.Printf("[ERROR] creating report dir: %v", err)
		return
	}

	saves := []struct {
		name string
		save func(string) error
	}{
		{"exif_report.json", s.Report.SaveJSON},
		{"exif_report.html", s.Report.SaveHTML},
		{"exif_report.xlsx", s.Report.SaveXLSX},
	}
	for _, out := range saves {
		path := filepath.Join(cfg.ReportDir, out.name)
		if err := out.save(path); err != nil {
			fmt.Printf("Error saving %s: %v\n", path, err)
		} else {
			fmt.Printf("Report saved to: %s\n", path)
		}
	}
}
