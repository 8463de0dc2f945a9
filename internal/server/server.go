// Package server provides the HTTP surface for report uploads and session
// conversations.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/interview-insights/internal/extract"
	"github.com/spigell/interview-insights/internal/metrics"
	"github.com/spigell/interview-insights/internal/report"
	"github.com/spigell/interview-insights/internal/session"
)

const (
	DefaultMaxUploadBytes = 50 * 1024 * 1024
	defaultRateBurst      = 10
)

// Config holds server settings and what /api/system-check reports.
type Config struct {
	MaxUploadBytes int64
	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit float64
	RateBurst int

	Provider         string
	Model            string
	APIKeyConfigured bool
}

// Deps are the collaborators the handlers drive.
type Deps struct {
	Reports   *report.Builder
	Sessions  *session.Service
	Extractor *extract.Extractor
	Metrics   *metrics.Metrics
}

type Server struct {
	cfg       Config
	echo      *echo.Echo
	reports   *report.Builder
	sessions  *session.Service
	extractor *extract.Extractor
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(cfg Config, deps Deps, logger *zap.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:       cfg,
		echo:      echo.New(),
		reports:   deps.Reports,
		sessions:  deps.Sessions,
		extractor: deps.Extractor,
		metrics:   deps.Metrics,
		logger:    logger,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger())
	if cfg.RateLimit > 0 {
		s.echo.Use(s.rateLimiter())
	}

	s.RegisterRoutes(s.echo)

	return s
}

// RegisterRoutes attaches all endpoints to e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/upload", s.handleUpload)
	e.POST("/message", s.handleMessage)
	e.POST("/analyze", s.handleAnalyze)
	e.POST("/clear", s.handleClear)

	e.GET("/api/system-check", s.handleSystemCheck)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting the web server",
		zap.String("listen", addr),
		zap.String("max_upload", humanize.Bytes(uint64(s.cfg.MaxUploadBytes))),
		zap.Float64("rate_limit", s.cfg.RateLimit),
	)

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			s.logger.Info("http request", fields...)
			return nil
		},
	})
}

func (s *Server) rateLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.cfg.RateLimit),
		Burst:     s.cfg.RateBurst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusForbidden, errorResponse{Error: "unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			s.logger.Warn("rate limit exceeded", zap.String("client", identifier))
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please slow down."})
		},
	})
}
