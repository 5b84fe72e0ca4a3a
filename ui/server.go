// Package ui serves the HTML form and result pages on gin.
package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"aquacheck/app"
	"aquacheck/internal"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static themes.yaml guide.md
var embeddedFiles embed.FS

// Config holds web server configuration
type Config struct {
	Port    string
	GinMode string
	Theme   string
}

// Server is the web front end. The JSON API is mounted under /api.
type Server struct {
	router    *gin.Engine
	http      *http.Server
	analysis  *app.AnalysisService
	templates *template.Template
	themes    *ThemeCatalog
	guide     template.HTML
	logger    *internal.Logger
}

// NewServer builds the web server around the analysis service. api may be
// nil to serve the HTML pages only.
func NewServer(cfg Config, analysis *app.AnalysisService, api http.Handler, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	themeData, err := embeddedFiles.ReadFile("themes.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read themes: %w", err)
	}
	themes, err := LoadThemes(themeData, cfg.Theme)
	if err != nil {
		return nil, err
	}

	guideSource, err := embeddedFiles.ReadFile("guide.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read guide: %w", err)
	}

	templates, err := template.New("").Funcs(templateFuncs()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		analysis:  analysis,
		templates: templates,
		themes:    themes,
		guide:     renderGuide(guideSource),
		logger:    logger.With("UI"),
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes(api)

	s.http = &http.Server{
		Addr:              ":" + strings.TrimPrefix(cfg.Port, ":"),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// setupMiddleware configures gin middleware and static assets
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes(api http.Handler) {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/analyze", s.handleAnalyze)
	s.router.GET("/guide", s.handleGuide)

	if api != nil {
		s.router.Any("/api/*path", gin.WrapH(http.StripPrefix("/api", api)))
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the server is shut down
func (s *Server) Start() error {
	s.logger.Info("listening on %s (theme %s)", s.http.Addr, s.themes.Default())
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
