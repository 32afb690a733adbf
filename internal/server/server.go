package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/digimosa/exif-inspector/internal/allowlist"
	"github.com/digimosa/exif-inspector/internal/analyzer"
	"github.com/digimosa/exif-inspector/internal/config"
	"github.com/digimosa/exif-inspector/internal/extractor"
	"github.com/digimosa/exif-inspector/internal/storage"
	"github.com/digimosa/exif-inspector/internal/templates"
)

const defaultHistoryLimit = 50

type Server struct {
	cfg       *config.Config
	service   *analyzer.Service
	factory   *extractor.Factory
	store     *storage.Store
	allowlist *allowlist.Allowlist
	sanitizer *bluemonday.Policy
	engine    *gin.Engine
}

// NewServer wires the upload API. A nil store disables the history routes
// and a nil allowlist disables the allowlist routes.
func NewServer(cfg *config.Config, svc *analyzer.Service, store *storage.Store, al *allowlist.Allowlist) *Server {
	if svc == nil {
		svc = analyzer.NewService(nil, nil, nil, cfg.Verbose)
	}
	s := &Server{
		cfg:       cfg,
		service:   svc,
		factory:   extractor.NewFactory(cfg.AllowedExtensions),
		store:     store,
		allowlist: al,
		sanitizer: bluemonday.StrictPolicy(),
	}

	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	g.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	s.attachRoutes(g)
	s.engine = g
	return s
}

// corsConfig allows every origin when the list is empty or contains "*".
func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	return cc
}

func (s *Server) attachRoutes(g *gin.Engine) {
	g.GET("/", s.handleIndex)
	g.POST("/upload", s.handleUpload)
	g.POST("/analyze", s.handleUpload)

	api := g.Group("/api")
	{
		api.GET("/history", s.requireHistory, s.handleHistory)
		api.GET("/history/:id", s.requireHistory, s.handleAnalysis)
		api.POST("/history/:id/feedback", s.requireHistory, s.handleFeedback)
		api.GET("/scans", s.requireHistory, s.handleScans)
		api.GET("/scans/:id", s.requireHistory, s.handleScan)

		api.GET("/allowlist", s.requireAllowlist, s.handleAllowlist)
		api.POST("/allowlist", s.requireAllowlist, s.handleAllowlistAdd)
	}
}

// Handler exposes the engine, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(addr string) error {
	log.Printf("[SERVER] listening on http://%s", addr)
	return s.engine.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(templates.IndexHTML))
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) tooLarge(c *gin.Context, err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return c.Request.ContentLength > s.cfg.MaxUploadBytes
}

// handleUpload analyzes a multipart "file" field in memory.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		if s.tooLarge(c, err) {
			abort(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		abort(c, http.StatusBadRequest, "no file selected")
		return
	}
	if fh.Filename == "" {
		abort(c, http.StatusBadRequest, "no file selected")
		return
	}
	if !s.factory.IsSupported(fh.Filename) {
		abort(c, http.StatusBadRequest, "unsupported file format")
		return
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		abort(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, "cannot read upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abort(c, http.StatusBadRequest, "cannot read upload")
		return
	}

	name := filepath.Base(fh.Filename)
	report := s.service.Inspect(c.Request.Context(), name, data)
	c.JSON(http.StatusOK, report)
}

func (s *Server) requireHistory(c *gin.Context) {
	if s.store == nil {
		abort(c, http.StatusServiceUnavailable, "history is disabled")
	}
}

func (s *Server) requireAllowlist(c *gin.Context) {
	if s.allowlist == nil {
		abort(c, http.StatusServiceUnavailable, "allowlist is disabled")
	}
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	list, err := s.store.ListAnalyses(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[STORAGE] listing analyses failed: %v", err)
		abort(c, http.StatusInternalServerError, "cannot read history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": list})
}

func (s *Server) handleAnalysis(c *gin.Context) {
	a, err := s.store.GetAnalysis(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("[STORAGE] reading analysis failed: %v", err)
		abort(c, http.StatusInternalServerError, "cannot read history")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req struct {
		Feedback string `json:"feedback" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request")
		return
	}

	err := s.store.UpdateFeedback(c.Request.Context(), c.Param("id"), req.Feedback)
	switch {
	case errors.Is(err, storage.ErrInvalidFeedback):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		abort(c, http.StatusNotFound, err.Error())
	case err != nil:
		log.Printf("[STORAGE] saving feedback failed: %v", err)
		abort(c, http.StatusInternalServerError, "cannot save feedback")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (s *Server) handleScans(c *gin.Context) {
	scans, err := s.store.GetAllScans(c.Request.Context())
	if err != nil {
		log.Printf("[STORAGE] listing scans failed: %v", err)
		abort(c, http.StatusInternalServerError, "cannot read history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

func (s *Server) handleScan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid scan id")
		return
	}
	scan, err := s.store.GetScanByID(c.Request.Context(), uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		log.Printf("[STORAGE] reading scan failed: %v", err)
		abort(c, http.StatusInternalServerError, "cannot read history")
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (s *Server) handleAllowlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": s.allowlist.Entries()})
}

func (s *Server) handleAllowlistAdd(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request")
		return
	}
	value := strings.TrimSpace(s.sanitizer.Sanitize(req.Value))
	if value == "" {
		abort(c, http.StatusBadRequest, "value cannot be empty")
		return
	}

	if err := s.allowlist.Add(value); err != nil {
		log.Printf("[ERROR] failed to add to allowlist: %v", err)
		abort(c, http.StatusInternalServerError, "failed to save allowlist")
		return
	}

	log.Printf("[ALLOWLIST] added via web UI: %s", value)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
