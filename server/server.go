// Package server exposes a coinwatch App as a JSON API, for presentation
// layers.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/coinwatch"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Options configures the API views.
type Options struct {
	Currency    string // quote currency used to label prices
	PageSize    int    // default watchlist page size
	SearchLimit int    // maximum number of catalog search results
}

// Config holds the router dependencies.
type Config struct {
	App      *coinwatch.App
	Options  Options
	Gatherer prometheus.Gatherer // nil disables /metrics
	Log      logrus.FieldLogger
}

// NewRouter returns the API routes.
func NewRouter(cfg *Config) *gin.Engine {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Log))

	h := &Handler{app: cfg.App, opts: cfg.Options, log: cfg.Log}
	api := router.Group("/api")
	registerPortfolioRoutes(api, h)
	registerCatalogRoutes(api, h)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

func registerPortfolioRoutes(router *gin.RouterGroup, h *Handler) {
	router.GET("/portfolio", h.GetPortfolio)
	router.GET("/dashboard", h.GetDashboard)
	router.POST("/refresh", h.Refresh)

	watchlist := router.Group("/watchlist")
	{
		watchlist.GET("", h.GetWatchlist)
		watchlist.POST("", h.AddSelection)
		watchlist.DELETE("/:id", h.RemoveCoin)
		watchlist.PUT("/:id/holdings", h.UpdateHoldings)
	}
}

func registerCatalogRoutes(router *gin.RouterGroup, h *Handler) {
	catalog := router.Group("/catalog")
	{
		catalog.GET("", h.GetCatalog)
		catalog.POST("/fetch", h.FetchCatalog)
		catalog.POST("/selection/:id", h.ToggleSelection)
		catalog.DELETE("/selection", h.ClearSelection)
	}
}

// requestLogger logs every request at debug level.
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	}
}

// Serve serves h on addr until ctx is done, then shuts the server down.
func Serve(ctx context.Context, addr string, h http.Handler, log logrus.FieldLogger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.WithField("addr", addr).Info("serving the API")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
