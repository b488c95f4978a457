package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/cache"
	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/pkg/config"
	"github.com/inkwell/inkwell/pkg/logging"
)

// Router sets up API routes
type Router struct {
	service    *blog.Service
	sessions   *auth.SessionManager
	db         *db.DB
	cache      *cache.Cache
	limiter    *IPRateLimiter
	listingTTL time.Duration
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new API router. redisCache may be nil.
func NewRouter(cfg *config.Config, database *db.DB, redisCache *cache.Cache, service *blog.Service, sessions *auth.SessionManager) *Router {
	router := &Router{
		service:    service,
		sessions:   sessions,
		db:         database,
		cache:      redisCache,
		listingTTL: cfg.Redis.ListingTTL,
		cfg:        cfg,
		logger:     logging.WithComponent("api-router"),
	}
	if cfg.Server.RateLimitPerMinute > 0 {
		router.limiter = NewIPRateLimiter(cfg.Server.RateLimitPerMinute)
	}
	return router
}

// SetupRoutes installs middleware and all routes on engine
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(requestIDMiddleware(), recoveryMiddleware(), tracingMiddleware(), loggingMiddleware())
	if len(r.cfg.Server.AllowedOrigins) > 0 {
		engine.Use(corsMiddleware(r.cfg.Server.AllowedOrigins))
	}
	engine.Use(r.sessionMiddleware())

	engine.NoRoute(func(c *gin.Context) {
		abortWithError(c, NewError(http.StatusNotFound, CodeNotFound, "no such route"))
	})

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	if r.cfg.Telemetry.PrometheusEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Listings and reads
	engine.GET("/", r.index)
	engine.GET("/main", r.index)
	engine.GET("/category/:tag", r.category)
	engine.GET("/load_posts", r.loadPosts)
	engine.GET("/load_category_posts/:tag", r.loadCategoryPosts)
	engine.GET("/post/:id", r.showPost)
	engine.GET("/profile/:username", r.showProfile)

	// Accounts
	accounts := engine.Group("")
	if r.limiter != nil {
		accounts.Use(r.limiter.Middleware())
	}
	accounts.GET("/register", r.registerForm)
	accounts.POST("/register", r.register)
	accounts.GET("/login", r.loginForm)
	accounts.POST("/login", r.login)
	engine.GET("/logout", r.logout)

	// Signed-in users
	member := engine.Group("", requireAuth())
	member.GET("/like/:id", r.like)
	member.POST("/unlike/:id", r.unlike)
	member.POST("/comment/:id", r.addComment)
	member.POST("/comment/edit/:id", r.editComment)
	member.POST("/comment/delete/:id", r.deleteComment)
	member.GET("/write/:category", r.writeForm)
	member.POST("/write/:category", r.write)
	member.POST("/edit/:id", r.editPost)
	member.POST("/delete/:id", r.deletePost)
	member.GET("/profile", r.ownProfile)
	member.GET("/profile/edit", r.profileForm)
	member.POST("/profile/edit", r.editProfile)

	// Administration
	admin := engine.Group("/admin", requireAdmin())
	admin.GET("", r.dashboard)
	admin.POST("/delete_post/:id", r.deletePost)
	admin.POST("/promote/:id", r.promote)
}

// Handler builds a gin engine with every route installed
func (r *Router) Handler() *gin.Engine {
	engine := gin.New()
	r.SetupRoutes(engine)
	return engine
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok", "cache": "ok"}
	if err := r.db.Health(ctx); err != nil {
		r.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := r.cache.Health(ctx); err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			checks["cache"] = "disabled"
		} else {
			r.logger.Warn("Cache health check failed", zap.Error(err))
			checks["cache"] = "unavailable"
		}
	}

	label := "OK"
	if status != http.StatusOK {
		label = "DEGRADED"
	}
	c.JSON(status, gin.H{
		"status":  label,
		"service": "inkwell",
		"checks":  checks,
	})
}
