package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-console/internal/api/http"
	"github.com/spec-kit/ticket-console/internal/api/http/handlers"
	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/backend"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/persistence"
	"github.com/spec-kit/ticket-console/internal/repository"
)

var devAgent = domain.Agent{ID: "agent-ann", Name: "Ann", Role: domain.AgentRoleAdmin}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticketRepo := repository.NewTicketRepository()
	templateRepo := repository.NewTemplateRepository()
	sessionRepo := repository.NewSessionRepository()
	if cfg.App.SeedDemoData {
		if err := backend.Seed(ctx, time.Now(), devAgent, ticketRepo, templateRepo, sessionRepo); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	token, expiresAt, err := tokenManager.GenerateToken(devAgent)
	if err != nil {
		logger.Fatal("failed to issue dev token", zap.Error(err))
	}
	fmt.Fprintf(os.Stdout, "AUTH_ACCESS_TOKEN=%s\n", token)
	logger.Info("issued dev token", zap.String("agent_id", devAgent.ID), zap.Time("expires_at", expiresAt))

	dependencies := map[string]handlers.Pinger{}
	if cfg.Auth.TokenSource == config.TokenSourceRedis {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		if err := redis.StoreToken(ctx, cfg.Auth.RedisTokenKey, token, time.Until(expiresAt)); err != nil {
			logger.Warn("failed to publish dev token", zap.String("key", cfg.Auth.RedisTokenKey), zap.Error(err))
		}
		dependencies["redis"] = redis
	}

	desk := backend.NewTicketDesk(backend.DeskDependencies{
		TicketRepo: ticketRepo,
		Roster:     backend.DefaultRoster,
		Logger:     logger,
	})
	metrics := observability.NewMetrics("backend")

	app := httptransport.NewApp(cfg.App.Name, logger, cfg.API.RequestTimeout(), httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Tickets:        handlers.NewTicketsHandler(desk),
		Templates:      handlers.NewTemplatesHandler(backend.NewTemplateLibrary(templateRepo, ticketRepo, logger, nil)),
		Sessions:       handlers.NewSessionsHandler(backend.NewSessionDesk(sessionRepo, logger, nil)),
		AuthMiddleware: auth.NewAuthMiddleware(tokenManager),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
