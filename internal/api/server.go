// Package api serves estimate sessions over HTTP. Each estimate is edited
// through one cached session, so concurrent requests see a single tree.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/estimator/internal/service"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Estimates service.EstimateService
	Jobs      service.JobService
	Imports   service.ImportService
	Sessions  *session.Registry
	Metrics   *Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger

	Currency    string
	MetricsPath string
}

type Server struct {
	deps   Deps
	engine *gin.Engine
}

func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Currency == "" {
		deps.Currency = "$"
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = "/metrics"
	}
	s := &Server{deps: deps}
	s.engine = s.routes()
	return s
}

// SessionOpener opens estimates through svc and counts every snapshot the
// resulting session publishes.
func SessionOpener(svc service.EstimateService, m *Metrics) session.Opener {
	return func(ctx context.Context, estimateID string) (*session.Session, error) {
		sess, err := svc.Open(ctx, estimateID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			sess.Subscribe(m.SessionObserver())
		}
		return sess, nil
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.deps.Logger))

	r.GET("/health", healthCheck)
	if s.deps.Gatherer != nil {
		r.GET(s.deps.MetricsPath, gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1/estimates")
	v1.GET("", s.listEstimates)
	v1.POST("", s.createEstimate)
	v1.GET("/:id", s.getEstimate)
	v1.POST("/:id/status", s.setStatus)
	v1.POST("/:id/convert", s.convert)
	if s.deps.Imports != nil {
		v1.GET("/:id/export", s.exportEstimate)
		r.POST("/v1/imports", s.importEstimate)
	}

	edit := v1.Group("/:id", s.requireEditable)
	edit.POST("/groups", s.addGroup)
	edit.POST("/items", s.addItem)
	edit.PATCH("/groups/:nodeId", s.patchGroup)
	edit.PATCH("/items/:nodeId", s.patchItem)
	edit.POST("/move", s.move)
	edit.POST("/shift", s.shift)
	edit.DELETE("/:kind/:nodeId", s.deleteNode)
	edit.POST("/undo", s.undo)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http_request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
