package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapsrun/api/handler"
	"github.com/use-agent/mapsrun/api/middleware"
	"github.com/use-agent/mapsrun/cache"
	"github.com/use-agent/mapsrun/config"
	"github.com/use-agent/mapsrun/runner"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The form page and health endpoint stay outside auth; the page's scripts
// send the key itself.
func NewRouter(rn *runner.Runner, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.SetHTMLTemplate(handler.FormTemplate())

	// Parameter form.
	r.GET("/", handler.Form(rn.Invoker().Config().BinaryName))

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(rn.Invoker(), startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape
	jobs := handler.NewJobStore()
	protected.POST("/scrape", handler.Scrape(rn, cc))
	protected.POST("/scrape/async", handler.PostScrapeAsync(rn, jobs))
	protected.GET("/scrape/:id", handler.GetScrapeJob(jobs))

	// Binary preparation
	protected.POST("/build", handler.Build(rn))
	protected.POST("/make-executable", handler.MakeExecutable(rn))

	return r
}
