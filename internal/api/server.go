// Package api exposes profiles and analyses over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/service"
)

// ResultCache holds recent analyses stamped with the time they were produced.
type ResultCache interface {
	Latest(symbol string) (*model.AnalysisResult, time.Time, bool)
}

// SymbolLister lists the symbols with cached bars.
type SymbolLister interface {
	Symbols(ctx context.Context) ([]string, error)
}

// Server serves the HTTP API.
type Server struct {
	analyzer *service.Analyzer
	engine   *gin.Engine
	cache    ResultCache
	maxAge   time.Duration // oldest cached result still served
	symbols  SymbolLister
}

// NewServer builds the router. A non-nil metricsHandler is mounted at
// /metrics.
func NewServer(an *service.Analyzer, metricsHandler http.Handler) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{analyzer: an, engine: engine}
	engine.GET("/healthz", s.handleHealth)
	if metricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := engine.Group("/v1")
	v1.GET("/profiles", s.handleListProfiles)
	v1.GET("/profiles/:id", s.handleGetProfile)
	v1.GET("/symbols", s.handleListSymbols)
	v1.GET("/analysis/:symbol", s.handleAnalyze)
	v1.POST("/analysis", s.handleAnalyzeBars)
	return s
}

// UseCache serves GET /v1/analysis/:symbol from c while its result is
// younger than maxAge, unless the request asks for a refresh.
func (s *Server) UseCache(c ResultCache, maxAge time.Duration) {
	s.cache, s.maxAge = c, maxAge
}

// UseStore lists the symbols of l under GET /v1/symbols.
func (s *Server) UseStore(l SymbolLister) { s.symbols = l }

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[INFO] http api listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http api: %w", err)
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("[INFO] http api shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[INFO] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
