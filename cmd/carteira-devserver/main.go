package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/chequelab/carteira/internal/devserver"
	"github.com/chequelab/carteira/internal/infrastructure/config"
	"github.com/chequelab/carteira/internal/infrastructure/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	store := devserver.NewMemStore()
	jwtManager := devserver.NewJWTManager(cfg.DevServerJWTSecret, cfg.DevServerJWTExpiration)
	router := devserver.NewRouter(store, jwtManager, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.DevServerPort),
		Handler:      router,
		ReadTimeout:  cfg.DevServerReadTimeout,
		WriteTimeout: cfg.DevServerWriteTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.DevServerPort).Msg("starting dev server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down dev server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DevServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
