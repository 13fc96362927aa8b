// Package ui serves the dashboard engine over HTTP: a JSON API for every
// interaction, narrative pages rendered from markdown, and Prometheus metrics.
package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moodlens/app"
	"moodlens/internal"
	"moodlens/internal/metrics"
)

// Server represents the web server
type Server struct {
	router  *gin.Engine
	svc     *app.Service
	pages   *Pages
	metrics *metrics.Collector
	log     *internal.Logger
}

// NewServer wires middleware and routes. metrics may be nil, which disables
// the /metrics route.
func NewServer(svc *app.Service, pages *Pages, m *metrics.Collector, log *internal.Logger) *Server {
	if log == nil {
		log = internal.NewNopLogger()
	}
	s := &Server{
		router:  gin.New(),
		svc:     svc,
		pages:   pages,
		metrics: m,
		log:     log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/pages/introduction")
	})

	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/schema", s.handleSchema)
		api.POST("/records/query", s.handleQuery)
		api.POST("/stats", s.handleStats)
		api.POST("/trends", s.handleTrends)
		api.GET("/personas", s.handlePersonas)
		api.GET("/personas/:cluster", s.handlePersona)
		api.GET("/models", s.handleModels)
		api.POST("/predict", s.handlePredict)
		api.POST("/export", s.handleExport)
	}

	s.router.GET("/pages", s.handlePageList)
	s.router.GET("/pages/:slug", s.handlePage)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("[Server] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
