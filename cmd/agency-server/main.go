// Command agency-server runs the casting-agency REST API.
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
	"github.com/sirupsen/logrus"

	"github.com/castingworks/casting-agency/internal/api"
	"github.com/castingworks/casting-agency/internal/auth"
	"github.com/castingworks/casting-agency/internal/auth/jwks"
	"github.com/castingworks/casting-agency/internal/auth/validator"
	"github.com/castingworks/casting-agency/internal/config"
	"github.com/castingworks/casting-agency/internal/store"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)
	gin.SetMode(gin.ReleaseMode)

	st, err := store.NewSQLiteStore(cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	keyProvider, err := jwks.NewCachingProvider(cfg.Auth.Domain)
	if err != nil {
		return err
	}

	tokenValidator, err := validator.New(keyProvider.KeyFunc, cfg.Auth.Issuer(), cfg.Auth.Audience)
	if err != nil {
		return err
	}

	server, err := api.New(st, tokenValidator.ValidateToken, logger,
		auth.WithMetrics(auth.NewPrometheusMetrics()),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}
