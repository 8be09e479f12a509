package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-catalog-api/api/swagger"
	"github.com/noah-isme/academic-catalog-api/internal/handler"
	"github.com/noah-isme/academic-catalog-api/internal/middleware"
	"github.com/noah-isme/academic-catalog-api/internal/models"
	"github.com/noah-isme/academic-catalog-api/internal/repository"
	"github.com/noah-isme/academic-catalog-api/internal/service"
	"github.com/noah-isme/academic-catalog-api/pkg/cache"
	"github.com/noah-isme/academic-catalog-api/pkg/config"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
	"github.com/noah-isme/academic-catalog-api/pkg/logger"
	"github.com/noah-isme/academic-catalog-api/pkg/middleware/bodylimit"
	corsmiddleware "github.com/noah-isme/academic-catalog-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-catalog-api/pkg/middleware/requestid"
	"github.com/noah-isme/academic-catalog-api/pkg/middleware/secure"
	"github.com/noah-isme/academic-catalog-api/pkg/response"
)

// app holds the long-lived dependencies shared by every request.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	metrics *service.MetricsService
	limiter *repository.CacheRepository
	users   *repository.UserRepository
	catalog *service.CatalogService
	decoder *service.CatalogDecoder
	auth    *service.AuthService
	export  *service.ExportService
}

func newApp(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *app {
	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cacheRepo.Enabled())

	users := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db, metrics)
	catalog := service.NewCatalogService(catalogRepo, cacheSvc, metrics, validate, logr, cfg.Catalog.CacheTTL)

	return &app{
		cfg:     cfg,
		logger:  logr,
		db:      db,
		metrics: metrics,
		limiter: cacheRepo,
		users:   users,
		catalog: catalog,
		decoder: service.NewCatalogDecoder(validate),
		auth: service.NewAuthService(users, validate, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		export: service.NewExportService(catalog, logr, nil, nil),
	}
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(secure.Headers())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(bodylimit.New(a.cfg.BodyLimitBytes))
	r.Use(middleware.Metrics(a.metrics))

	metricsHandler := handler.NewMetricsHandler(a.metrics, nil)
	if a.db != nil {
		metricsHandler = handler.NewMetricsHandler(a.metrics, a.db)
	}
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if !a.cfg.IsProduction() {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	jwt := middleware.JWT(a.auth)
	audit := func(action, resource string, idParams ...string) gin.HandlerFunc {
		return middleware.Audit(a.users, a.logger, action, resource, idParams...)
	}

	api := r.Group(a.cfg.APIPrefix)

	authHandler := handler.NewAuthHandler(a.auth)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", middleware.LoginRateLimit(a.limiter, a.cfg.RateLimit.LoginLimit, a.cfg.RateLimit.LoginWindow, a.metrics, a.logger), authHandler.Login)
	authGroup.GET("/profile", jwt, authHandler.Profile)

	api.GET("/system/metrics", jwt, metricsHandler.Snapshot)

	catalogHandler := handler.NewCatalogHandler(a.catalog, a.decoder, a.export)
	for _, base := range []string{"/academic", "/years"} {
		group := api.Group(base)
		group.GET("", catalogHandler.GetTree)
		group.GET("/export", catalogHandler.Export)
		group.POST("/sync", jwt, audit(models.AuditActionCatalogSync, "catalog"), catalogHandler.Sync)
		group.POST("/modules", jwt, audit(models.AuditActionModuleCreate, "module"), catalogHandler.CreateModule)
		group.PUT("/modules/:id", jwt, audit(models.AuditActionModuleUpdate, "module", "id"), catalogHandler.UpdateModule)
		group.DELETE("/modules/:id", jwt, audit(models.AuditActionModuleDelete, "module", "id"), catalogHandler.DeleteModule)
		group.POST("/semesters/:semesterId/modules", jwt, audit(models.AuditActionModuleCreate, "module", "semesterId"), catalogHandler.AddModuleToSemester)
		group.POST("/modules/:moduleId/lessons", jwt, audit(models.AuditActionLessonCreate, "lesson", "moduleId"), catalogHandler.AddLesson)
		group.POST("/modules/:moduleId/exams", jwt, audit(models.AuditActionExamCreate, "exam", "moduleId"), catalogHandler.AddExam)
		group.DELETE("/lessons/:id", jwt, audit(models.AuditActionLessonDelete, "lesson", "id"), catalogHandler.DeleteLesson)
		group.DELETE("/exams/:id", jwt, audit(models.AuditActionExamDelete, "exam", "id"), catalogHandler.DeleteExam)
	}

	modules := api.Group("/modules")
	modules.POST("", jwt, audit(models.AuditActionModuleCreate, "module"), catalogHandler.CreateModule)
	modules.PUT("/:id", jwt, audit(models.AuditActionModuleUpdate, "module", "id"), catalogHandler.UpdateModule)
	api.POST("/semesters/:semesterId/modules", jwt, audit(models.AuditActionModuleCreate, "module", "semesterId"), catalogHandler.AddModuleToSemester)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Not Found - "+c.Request.URL.Path))
	})

	return r
}

func runServe(ctx context.Context) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}

	a := newApp(cfg, logr, db, redisClient)
	defer a.limiter.Close() //nolint:errcheck
	warnUnthrottledLogin(a)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// warnUnthrottledLogin logs when login attempts are not rate limited and
// reports whether it did.
func warnUnthrottledLogin(a *app) bool {
	rl := a.cfg.RateLimit
	if a.limiter.Enabled() && rl.LoginLimit > 0 && rl.LoginWindow > 0 {
		return false
	}
	a.logger.Warn("login rate limiting disabled, set REDIS_ENABLED to throttle login attempts",
		zap.Bool("redis_enabled", a.limiter.Enabled()),
		zap.Int("login_limit", rl.LoginLimit),
		zap.Duration("login_window", rl.LoginWindow),
	)
	return true
}
