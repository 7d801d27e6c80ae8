// Package server exposes the analyzer and the snapshot store over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helmcode/devcompanion/pkg/analyzer"
	"github.com/helmcode/devcompanion/pkg/snapshot"
)

// maxBodyBytes caps request bodies for both analyze and snapshot posts.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Env            string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Server wires the API routes onto a gin engine.
type Server struct {
	analyzer *analyzer.Analyzer
	store    snapshot.Store
	logger   *zap.Logger
	env      string
	router   *gin.Engine
}

// New builds the router. store may be nil, in which case snapshot routes are
// not mounted.
func New(a *analyzer.Analyzer, store snapshot.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Env == "" {
		opts.Env = "development"
	}

	s := &Server{
		analyzer: a,
		store:    store,
		logger:   opts.Logger,
		env:      opts.Env,
	}

	router := gin.New()
	router.Use(
		recovery(s.logger),
		requestLogger(s.logger),
		cors(),
		limitBody(maxBodyBytes),
	)
	if opts.RequestTimeout > 0 {
		router.Use(requestTimeout(opts.RequestTimeout))
	}

	api := router.Group("/api")
	api.GET("/health", s.health)
	api.POST("/analyze", s.analyze)

	if store != nil {
		snapshots := api.Group("/snapshots")
		snapshots.POST("", s.saveSnapshot)
		snapshots.GET("", s.listSnapshots)
		snapshots.GET("/:id", s.getSnapshot)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}
