package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gift-store-api/internal/config"
	"gift-store-api/internal/database"
	"gift-store-api/internal/handler"
	"gift-store-api/internal/middleware"
	"gift-store-api/internal/repository"
	"gift-store-api/internal/router"
	"gift-store-api/internal/service"
	"gift-store-api/internal/token"
)

type App struct {
	server *http.Server
	db     *database.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	certificateRepo := repository.NewCertificateRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	provider, err := token.NewProvider(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token provider: %w", err)
	}

	authService := service.NewAuthService(
		provider,
		userRepo,
		tokenRepo,
		service.NewBcryptVerifier(userRepo),
		service.NewBcryptHasher(cfg.BcryptCost),
	)
	auditService := service.NewAuditService(auditRepo)
	catalogService := service.NewCatalogService(certificateRepo, tagRepo)

	authMiddleware := middleware.NewAuthMiddleware(provider, userRepo, tokenRepo)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:        handler.NewAuthHandler(authService, auditService),
		User:        handler.NewUserHandler(authService, userRepo),
		Certificate: handler.NewCertificateHandler(catalogService),
		Tag:         handler.NewTagHandler(catalogService),
		Audit:       handler.NewAuditHandler(auditService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.db.Close()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
