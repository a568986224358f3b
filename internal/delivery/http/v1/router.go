package v1

import (
	"context"
	"net/http"
	"time"

	"jazzcoasters-backend/config"
	"jazzcoasters-backend/internal/delivery/http/middleware"
	"jazzcoasters-backend/internal/delivery/http/response"
	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/internal/usecase"
	"jazzcoasters-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC   domain.ContactUsecase
	ShowUC      domain.ShowUsecase
	InstagramUC domain.InstagramUsecase
	HealthUC    usecase.HealthUsecase
	Config      *config.Config
	Audit       *security.SecurityLogger
	Redis       func() *goredis.Client
	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
}

// NewRouter builds the engine. ctx bounds background work such as the rate
// limiter's janitor.
func NewRouter(ctx context.Context, deps RouterDeps) *gin.Engine {
	r := gin.New()

	cfg := deps.Config
	production := cfg.IsProduction()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(middleware.AllowedOrigins(cfg.SiteURL, !production))) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(production))
	r.Use(middleware.ErrorHandler())

	rateLimit := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitGlobalThreshold > 0 {
		rateLimit.Limit = cfg.RateLimitGlobalThreshold
	}
	if cfg.RateLimitWindowSeconds > 0 {
		rateLimit.Window = time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	}
	rateLimit.Redis = deps.Redis
	rateLimit.Audit = deps.Audit

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	public := v1.Group("")
	public.Use(middleware.RateLimitMiddleware(ctx, rateLimit))
	{
		NewContactHandler(public, deps.ContactUC)
		NewShowHandler(public, deps.ShowUC)
		NewInstagramHandler(public, deps.InstagramUC)
	}

	return r
}
