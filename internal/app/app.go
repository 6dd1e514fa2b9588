// Package app wires repositories, services and event sinks from configuration.
package app

import (
	"fmt"
	"log/slog"

	"rbac/internal/config"
	"rbac/internal/database"
	"rbac/internal/queue"
	"rbac/internal/repository"
	"rbac/internal/security/password"
	"rbac/internal/security/token"
	"rbac/internal/service"
	"rbac/internal/websocket"

	"gorm.io/gorm"
)

// App is the dependency graph shared by the API server and the admin CLI.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB

	Users  repository.UserRepository
	Roles  repository.RoleRepository
	Tokens *token.Manager
	Hub    *websocket.Hub

	UserService  service.UserService
	RoleService  service.RoleService
	AuthService  service.AuthService
	AuditService service.AuditService
	SeedService  service.SeedService

	publisher *queue.Publisher
}

// New connects to the database and builds every service. Events fan out to the audit log, the
// websocket hub, and RabbitMQ when RABBITMQ_URL is set.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.NewConnection(cfg.DB.DSN(), logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, DB: db}
	a.Users = repository.NewUserRepository(db)
	a.Roles = repository.NewRoleRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	a.Tokens = token.NewManager(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	hasher := password.NewBcrypt(cfg.BcryptCost)

	a.AuditService = service.NewAuditService(auditRepo)
	a.Hub = websocket.NewHub(logger)
	sinks := []service.NamedPublisher{
		{Name: "audit", EventPublisher: a.AuditService},
		{Name: "websocket", EventPublisher: a.Hub},
	}
	if cfg.RabbitMQURL != "" {
		a.publisher = queue.NewPublisher(cfg.RabbitMQURL, logger)
		sinks = append(sinks, service.NamedPublisher{Name: "rabbitmq", EventPublisher: a.publisher})
	}
	events := service.NewFanOut(logger, sinks...)

	a.UserService = service.NewUserService(a.Users, a.Roles, hasher, events)
	a.RoleService = service.NewRoleService(a.Roles, a.Users, txManager, events)
	a.AuthService = service.NewAuthService(a.UserService, a.Users, tokenRepo, hasher, a.Tokens, events)
	a.SeedService = service.NewSeedService(a.Roles, a.UserService, logger)
	return a, nil
}

// Close releases the broker connection and the database pool.
func (a *App) Close() error {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
