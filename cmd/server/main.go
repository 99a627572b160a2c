// cmd/server is the application entry point. It wires together config,
// storage, services, and the HTTP router, and runs the server with
// graceful shutdown.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"event-admission/config"
	"event-admission/internal/cache"
	"event-admission/internal/database"
	"event-admission/internal/handler"
	"event-admission/internal/repository"
	"event-admission/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("cannot load config")
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("cannot connect to postgres")
	}
	defer pool.Close()
	logrus.Info("connected to postgres")

	// Redis only backs the stats cache; run uncached if it is down.
	var statsCache service.StatsCache
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, stats caching disabled")
		} else {
			defer redisClient.Close()
			statsCache = cache.NewStatsCache(redisClient, cfg.Redis.StatsTTL)
			logrus.Info("connected to redis")
		}
	}

	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	ledger := repository.NewRegistrationLedger(pool)

	admissionSvc := service.NewAdmissionService(eventRepo, userRepo, ledger, statsCache)
	eventSvc := service.NewEventService(eventRepo, ledger)
	userSvc := service.NewUserService(userRepo)

	h := handler.New(admissionSvc, eventSvc, userSvc)
	router := handler.NewRouter(h)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	// Error, not Fatal: the deferred pool and redis closes must still run.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
		return
	}
	logrus.Info("server stopped")
}
