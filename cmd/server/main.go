// Command server runs the gift exchange API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	exchangeHandler "giftex/internal/exchange/handler"
	exchangeService "giftex/internal/exchange/service"
	exchangeStore "giftex/internal/exchange/store"
	"giftex/internal/jwttoken"
	"giftex/internal/platform/config"
	"giftex/internal/platform/httpserver"
	"giftex/internal/platform/lock"
	"giftex/internal/platform/logger"
	"giftex/internal/platform/metrics"
	"giftex/internal/platform/postgres"
	"giftex/internal/platform/redis"
	httptransport "giftex/internal/transport/http"
	userHandler "giftex/internal/user/handler"
	userService "giftex/internal/user/service"
	userStore "giftex/internal/user/store"
)

const (
	shutdownTimeout = 10 * time.Second
	lockTTL         = 30 * time.Second
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	// Redis is optional: without it the assignment lock is process-local,
	// which is fine for a single instance.
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	var locker lock.Locker = lock.NewMemory()
	health := httptransport.CombineHealth(db.PingContext)
	if redisClient != nil {
		locker = lock.NewRedis(redisClient.Client, lockTTL)
		health = httptransport.CombineHealth(db.PingContext, redisClient.Health)
		defer redisClient.Close()
		log.Info("redis connected, using distributed assignment lock")
	}

	m := metrics.New()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	users := userService.New(userStore.NewPostgres(db),
		userService.WithLogger(log),
		userService.WithMetrics(m),
		userService.WithBcryptCost(cfg.BcryptCost))

	if err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("failed to seed bootstrap admin", "error", err)
		os.Exit(1)
	}

	exchanges := exchangeService.New(exchangeStore.NewPostgres(db), users, locker,
		exchangeService.WithLogger(log),
		exchangeService.WithMetrics(m))

	router := httptransport.NewRouter(log, m, health,
		userHandler.New(users, jwtService, validator, log, cfg.TokenTTL),
		exchangeHandler.New(exchanges, validator, log))

	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
