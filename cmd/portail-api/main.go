package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ecoleconnect/portail-api/api/swagger"
	"github.com/ecoleconnect/portail-api/internal/handler"
	"github.com/ecoleconnect/portail-api/internal/middleware"
	"github.com/ecoleconnect/portail-api/internal/models"
	"github.com/ecoleconnect/portail-api/internal/repository"
	"github.com/ecoleconnect/portail-api/internal/service"
	"github.com/ecoleconnect/portail-api/pkg/cache"
	"github.com/ecoleconnect/portail-api/pkg/config"
	"github.com/ecoleconnect/portail-api/pkg/database"
	"github.com/ecoleconnect/portail-api/pkg/export"
	"github.com/ecoleconnect/portail-api/pkg/jobs"
	"github.com/ecoleconnect/portail-api/pkg/logger"
	corsmiddleware "github.com/ecoleconnect/portail-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ecoleconnect/portail-api/pkg/middleware/requestid"
)

// @title EcoleConnect Portail API
// @version 1.0.0
// @description Backend for the EcoleConnect family portal
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	profileRepo := repository.NewProfileRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	authSvc := service.NewAuthService(profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	roleSvc := service.NewRoleService(profileRepo, logr)
	profileSvc := service.NewProfileService(profileRepo, validate, logr)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Roles:         roleSvc,
		Students:      studentRepo,
		Fees:          feeRepo,
		Notifications: notificationRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		ListLimit:     cfg.Notifications.ListLimit,
		CacheTTL:      cfg.Dashboard.CacheTTL,
	})

	studentSvc := service.NewStudentService(studentRepo, dashboardSvc, validate, logr)
	adminSvc := service.NewAdminService(profileRepo, studentRepo, paymentRepo, logr)

	// The queue handler is bound through a closure because the notification
	// service and its queue reference each other.
	var notificationSvc *service.NotificationService
	queue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		return notificationSvc.DispatchJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.QueueBuffer,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	notificationSvc = service.NewNotificationService(notificationRepo, queue, cfg.Notifications.ListLimit, logr)

	queue.Start(context.Background())
	defer queue.Stop()

	feeSvc := service.NewFeeService(service.FeeServiceParams{
		Fees:        feeRepo,
		Payments:    paymentRepo,
		Students:    studentRepo,
		Profiles:    profileRepo,
		Notifier:    notificationSvc,
		Invalidator: dashboardSvc,
		Receipts:    export.NewReceiptRenderer("EcoleConnect"),
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	sessionHandler := handler.NewSessionHandler(roleSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	feeHandler := handler.NewFeeHandler(feeSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	// Session resolution works for anonymous callers too: without valid
	// claims the resolver answers with the /login redirect.
	api.GET("/session", middleware.OptionalJWT(authSvc), sessionHandler.Session)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/profiles/me", profileHandler.Me)
		protected.PUT("/profiles/me", profileHandler.UpdateMe)
		protected.PUT("/profiles/:id/role",
			middleware.RequirePermission(func(p models.Permissions) bool { return p.CanManageUsers }),
			profileHandler.AssignRole)

		protected.GET("/students", studentHandler.List)
		protected.GET("/students/:id", studentHandler.Get)

		studentWrites := protected.Group("/students")
		studentWrites.Use(middleware.RequireRoles(models.RoleParent, models.RoleAdmin))
		{
			studentWrites.POST("", studentHandler.Create)
			studentWrites.PUT("/:id", studentHandler.Update)
			studentWrites.DELETE("/:id", studentHandler.Deactivate)
		}

		protected.GET("/fees", feeHandler.List)
		protected.GET("/fees/summary", feeHandler.Summary)

		payments := protected.Group("/payments")
		payments.Use(middleware.RequirePermission(func(p models.Permissions) bool { return p.CanManagePayments }))
		{
			payments.GET("", feeHandler.ListPayments)
			payments.POST("", feeHandler.RecordPayment)
			payments.GET("/:id/receipt", feeHandler.Receipt)
		}

		admin := protected.Group("/admin")
		{
			admin.GET("/stats",
				middleware.RequirePermission(func(p models.Permissions) bool { return p.CanViewReports }),
				adminHandler.Stats)
			admin.GET("/users",
				middleware.RequirePermission(func(p models.Permissions) bool { return p.CanManageUsers }),
				adminHandler.Users)
		}

		protected.GET("/notifications", notificationHandler.List)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)

		protected.GET("/dashboard",
			middleware.RequireRoles(models.RoleParent, models.RoleAdmin),
			dashboardHandler.Parent)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
