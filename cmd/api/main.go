package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "rbac/api/swagger" // swagger docs
	"rbac/internal/app"
	"rbac/internal/config"
	"rbac/internal/database"
	"rbac/internal/handler"
	"rbac/internal/logger"
	"rbac/internal/middleware"
	"rbac/internal/observability/tracing"
	"rbac/internal/service"
	"rbac/internal/websocket"
	"rbac/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// @title           RBAC API
// @version         1.0
// @description     Users, roles and module-based access control with JWT authentication.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "rbac", cfg.Environment)
	if err != nil {
		log.Error("tracing init failed", slog.Any("error", err))
		os.Exit(1)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()
	log.Info("connected to PostgreSQL")

	if cfg.SeedSystemRoles {
		if _, err := a.SeedService.SeedSystemRoles(ctx, service.DefaultModules); err != nil {
			log.Error("seeding system roles failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	go a.Hub.Run(ctx)

	rdb := database.NewRedisClient(cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	gate := handler.Gate{
		Logger:       log,
		Authenticate: middleware.Authenticate(a.Users, a.Tokens),
		Roles:        a.Roles,
		RateLimit:    middleware.RateLimit(cfg.RateLimit, rdb, log),
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Retry-After"}
	router.Use(cors.New(corsConfig))

	handler.RegisterValidators()

	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(pingCtx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Error("Database unreachable.", nil))
			return
		}
		c.JSON(http.StatusOK, response.Success("OK", gin.H{"websocketClients": a.Hub.Clients()}))
	})
	router.GET("/ws", websocket.Handler(a.Hub, gate.Authenticate, log))

	api := router.Group("/api")
	handler.NewAuthHandler(a.AuthService, gate).RegisterRoutes(api)
	handler.NewRoleHandler(a.RoleService, gate).RegisterRoutes(api)
	handler.NewUserHandler(a.UserService, gate).RegisterRoutes(api)
	handler.NewAuditHandler(a.AuditService, gate).RegisterRoutes(api)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Error("Route not found.", nil))
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, "rbac"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening", slog.String("port", cfg.Port), slog.String("mode", cfg.GinMode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("error", err))
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
	}
	cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown error", slog.Any("error", err))
	}
	log.Info("server stopped")
}
