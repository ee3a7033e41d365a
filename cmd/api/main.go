package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/internal/handler"
	"github.com/bruinwatch/bruinwatch-api/internal/middleware"
	"github.com/bruinwatch/bruinwatch-api/internal/notify"
	"github.com/bruinwatch/bruinwatch-api/internal/repository"
	"github.com/bruinwatch/bruinwatch-api/internal/resolver"
	"github.com/bruinwatch/bruinwatch-api/internal/service"
	"github.com/bruinwatch/bruinwatch-api/pkg/cache"
	"github.com/bruinwatch/bruinwatch-api/pkg/config"
	"github.com/bruinwatch/bruinwatch-api/pkg/database"
	"github.com/bruinwatch/bruinwatch-api/pkg/logger"
	"github.com/bruinwatch/bruinwatch-api/pkg/middleware/cors"
	"github.com/bruinwatch/bruinwatch-api/pkg/middleware/requestid"
	"github.com/bruinwatch/bruinwatch-api/pkg/middleware/secheaders"
	"github.com/bruinwatch/bruinwatch-api/pkg/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, check caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	notifierRepo := repository.NewNotifierRepository(db)
	runRepo := repository.NewRunRepository(db)

	resolverOpts := []resolver.Option{}
	if cfg.Notifier.RegistrarBaseURL != "" {
		resolverOpts = append(resolverOpts, resolver.WithBaseURL(cfg.Notifier.RegistrarBaseURL))
	}
	registrar := resolver.NewRegistrar(cfg.Notifier.ResolverTimeout, log, resolverOpts...)

	sms := notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber,
		cfg.Notifier.TransportTimeout, log)
	email := notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Sender, cfg.SMTP.Password,
		cfg.Notifier.TransportTimeout, log)
	dispatcher := notify.NewDispatcher(sms, email)

	metricsSvc := service.NewMetricsService()
	notifierSvc := service.NewNotifierService(notifierRepo, runRepo, log,
		cfg.Notifier.DefaultTerm, cfg.Notifier.MinIntervalSeconds,
		cfg.Notifier.FallbackEmail, cfg.Notifier.FallbackNumber)
	checkSvc := service.NewCheckService(registrar, redisClient, metricsSvc, log,
		cfg.Notifier.DefaultTerm, cfg.Notifier.CheckCacheTTL)
	tickSvc := service.NewTickService(notifierRepo, runRepo, registrar, dispatcher, metricsSvc, log,
		cfg.Notifier.FallbackEmail, cfg.Notifier.FallbackNumber)

	router := buildRouter(cfg, log, db, metricsSvc, notifierSvc, checkSvc, tickSvc)

	var loop *scheduler.Loop
	if cfg.UseLocalScheduler() {
		loop = scheduler.NewLoop("notifier-tick", cfg.SchedulerInterval(), func(ctx context.Context) (interface{}, error) {
			return tickSvc.Run(ctx)
		}, log)
		loop.Start(context.Background())
		log.Info("local scheduler started", zap.Duration("interval", cfg.SchedulerInterval()))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if loop != nil {
		loop.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

func buildRouter(
	cfg *config.Config,
	log *zap.Logger,
	db *sqlx.DB,
	metricsSvc *service.MetricsService,
	notifierSvc *service.NotifierService,
	checkSvc *service.CheckService,
	tickSvc *service.TickService,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(secheaders.Middleware())
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(metricsSvc))

	healthHandler := handler.NewHealthHandler(cfg, db)

	router.GET("/healthz", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	notifierHandler := handler.NewNotifierHandler(notifierSvc)
	checkHandler := handler.NewCheckHandler(checkSvc)
	tickHandler := handler.NewTickHandler(tickSvc)

	api := router.Group(cfg.APIPrefix)
	api.Use(middleware.RequireAPIKey(cfg.Security.BackendAPIKey))
	{
		api.POST("/check", checkHandler.Check)
		api.GET("/notifiers", notifierHandler.List)
		api.POST("/notifiers", notifierHandler.Create)
		api.GET("/notifiers/:id", notifierHandler.Get)
		api.PATCH("/notifiers/:id", notifierHandler.Update)
		api.GET("/notifiers/:id/runs", notifierHandler.Runs)
		api.DELETE("/notifiers/:id", notifierHandler.Delete)
	}

	internal := router.Group("/internal")
	internal.Use(middleware.RequireSchedulerToken(cfg.Security.SchedulerToken))
	{
		internal.POST("/scheduler-tick", tickHandler.Tick)
	}

	return router
}
