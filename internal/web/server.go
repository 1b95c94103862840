// Package web serves the query façade over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rgehrsitz/ratesim/internal/compare"
	"github.com/rgehrsitz/ratesim/internal/logging"
	"github.com/rgehrsitz/ratesim/internal/query"
)

// RequestIDHeader carries the request ID assigned by the server
const RequestIDHeader = "X-Request-ID"

// Server is the ratesim HTTP API
type Server struct {
	svc     *query.Service
	compare *compare.CompareEngine
	router  *gin.Engine
	logger  logging.Logger
}

// NewServer creates a new web server over svc
func NewServer(svc *query.Service, logger logging.Logger) *Server {
	router := gin.New()

	s := &Server{
		svc:     svc,
		compare: compare.NewCompareEngine(svc),
		router:  router,
		logger:  logging.OrNop(logger),
	}

	router.Use(gin.Recovery(), requestID(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/options", s.handleOptions)
		api.GET("/rates", s.handleRates)
		api.GET("/rate-changes", s.handleGetRateChanges)
		api.PUT("/rate-changes", s.handlePutRateChanges)
		api.GET("/impact", s.handleImpact)
		api.POST("/impact/preview", s.handlePreview)
	}

	return s
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Infof("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
