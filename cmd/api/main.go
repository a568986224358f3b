package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // SITE_TIMEZONE must resolve in minimal containers

	"jazzcoasters-backend/config"
	_ "jazzcoasters-backend/docs" // Important for Swagger
	v1 "jazzcoasters-backend/internal/delivery/http/v1"
	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/internal/repository"
	"jazzcoasters-backend/internal/repository/memory"
	"jazzcoasters-backend/internal/repository/redisstore"
	"jazzcoasters-backend/internal/usecase"
	"jazzcoasters-backend/pkg/calendar"
	"jazzcoasters-backend/pkg/email"
	"jazzcoasters-backend/pkg/instagram"
	"jazzcoasters-backend/pkg/logger"
	"jazzcoasters-backend/pkg/redis"
	"jazzcoasters-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// @title           Jazz Coasters Backend API
// @version         1.0
// @description     Booking inquiry intake, show listings and Instagram proxy for the band website.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting jazzcoasters backend", "port", cfg.Port, "env", cfg.Environment)
	audit := security.InitSecurityLogger("jazzcoasters-backend", cfg.Environment)
	defer func() { _ = audit.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory stores", "error", err)
		}
	}
	defer func() { _ = redis.Close() }()
	redisClient := redis.Client()

	// 4. Setup Repositories
	memStore := memory.NewAbuseStore()
	memStore.StartJanitor(ctx, time.Minute)

	var abuseStore domain.AbuseStore = memStore
	var cache domain.Cache = memory.NewCache()
	probes := map[string]usecase.Probe{}
	if redisClient != nil {
		abuseStore = repository.NewFallbackAbuseStore(redisstore.NewAbuseStore(redisClient), memStore)
		cache = redisstore.NewCache(redisClient, "jazzcoasters:cache:")
		probes["redis"] = redis.HealthCheck
	}

	// 5. Setup Email Delivery
	dispatcher := newDispatcher(ctx, cfg)

	// 6. Setup UseCases
	loc := cfg.Location()

	contactSettings := usecase.DefaultContactSettings()
	contactSettings.Location = loc
	contactSettings.Origin = security.OriginPolicy{
		SiteHost: cfg.SiteHost(),
		AllowDev: !cfg.IsProduction(),
		DevHosts: security.DevHosts,
	}
	contactSettings.Site = email.SiteConfig{
		SiteName:        email.DefaultSenderName,
		SiteURL:         cfg.SiteURL,
		LogoURL:         cfg.SiteLogoURL,
		SupportEmail:    cfg.SupportEmail,
		FromAddress:     cfg.ContactEmailFrom,
		OperatorAddress: cfg.ContactEmailTo,
	}
	contactSettings.DeliveryConfigured = dispatcher != nil

	var contactDispatcher usecase.Dispatcher
	if dispatcher != nil {
		contactDispatcher = dispatcher
	}
	contactUC := usecase.NewContactUsecase(abuseStore, contactDispatcher, audit, prometheus.DefaultRegisterer, contactSettings)

	var showFeed usecase.ShowFeed
	if cfg.ShowsICSURL != "" {
		showFeed = calendar.NewClient(cfg.ShowsICSURL, &http.Client{Timeout: 10 * time.Second})
	} else {
		logger.Log.Warn("SHOWS_ICS_URL not configured - /v1/shows will answer 501")
	}
	showUC := usecase.NewShowUsecase(showFeed, cache, usecase.ShowSettings{
		MaxEvents: cfg.ShowsMaxEvents,
		CacheTTL:  10 * time.Minute,
		Location:  loc,
	})

	instagramClient := instagram.NewClient(instagram.Config{
		AccessToken: cfg.InstagramAccessToken,
		UserID:      cfg.InstagramUserID,
		Limit:       cfg.InstagramLimit,
	}, &http.Client{Timeout: 10 * time.Second})
	instagramUC := usecase.NewInstagramUsecase(instagramClient, cache, 15*time.Minute)

	healthUC := usecase.NewHealthUsecase(probes)

	// 7. Setup Router
	router := v1.NewRouter(ctx, v1.RouterDeps{
		ContactUC:   contactUC,
		ShowUC:      showUC,
		InstagramUC: instagramUC,
		HealthUC:    healthUC,
		Config:      cfg,
		Audit:       audit,
		Redis:       redis.Client,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// newDispatcher builds the configured provider, or returns nil when email
// delivery is not fully configured.
func newDispatcher(ctx context.Context, cfg *config.Config) *email.Dispatcher {
	if !cfg.EmailConfigured() {
		logger.Log.Warn("Email delivery not fully configured - contact form will be unavailable", "provider", cfg.EmailProvider)
		return nil
	}

	var sender email.Sender
	switch cfg.EmailProvider {
	case config.EmailProviderSES:
		ses, err := email.NewSESSender(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
		if err != nil {
			logger.Log.Error("Failed to initialize SES sender", "error", err)
			return nil
		}
		sender = ses
	default:
		sender = email.NewResendSender(cfg.ResendAPIKey)
	}

	logger.Log.Info("Email delivery configured", "provider", sender.Name())
	return email.NewDispatcher(sender, cfg.EmailSendTimeout(), prometheus.DefaultRegisterer)
}
