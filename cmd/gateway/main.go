package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/pkg/authclient"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, "gateway")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	client, err := authclient.New(cfg.AuthServiceURL, authclient.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		logger.Fatal("failed to init auth client", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: "gateway", DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, nil, cfg.RequestTimeout())
	httptransport.RegisterGatewayRoutes(app,
		handlers.NewHealthHandler("gateway", "", nil),
		handlers.NewGatewayHandler(client, logger),
	)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("gateway listening", zap.String("addr", cfg.Addr()), zap.String("auth_service", cfg.AuthServiceURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	_ = app.Shutdown()
}
