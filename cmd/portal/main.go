package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/talantix/portal/internal/api"
	"github.com/talantix/portal/internal/clients/mailbridge"
	"github.com/talantix/portal/internal/limiter"
	"github.com/talantix/portal/internal/repository"
	"github.com/talantix/portal/internal/service"
	"github.com/talantix/portal/pkg/broker"
	"github.com/talantix/portal/pkg/config"
	"github.com/talantix/portal/pkg/i18n"
	"github.com/talantix/portal/pkg/logger"
	"github.com/talantix/portal/pkg/postgres"
	"github.com/talantix/portal/pkg/redisstore"
)

const (
	ReadTimeout       = 3 * time.Second
	WriteTimeout      = 2 * time.Second
	IdleTimeout       = 60 * time.Second
	ReadHeaderTimeout = 1 * time.Second
)

//nolint:funlen
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("load config", err)

	l := logger.New(logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(l)

	pool, err := postgres.ConnectToPostgres(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	panicOnErr("connect to postgres", err)

	defer pool.Close()

	err = postgres.UpMigrations(cfg.PostgresDSN)
	panicOnErr("up migrations", err)

	counters, err := redisstore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	panicOnErr("connect to redis", err)

	defer counters.Close()

	translator, err := i18n.New(cfg.DefaultLocale)
	panicOnErr("load translations", err)

	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	achievementRepo := repository.NewAchievementRepository(pool)

	lim := limiter.New(counters)

	notifier, closeNotifier := newNotifier(l, cfg)
	defer closeNotifier()

	authService := service.NewAuthService(cfg, userRepo, lim)
	otpService := service.NewOTPService(cfg, tokenRepo, userRepo, lim, notifier)
	achievementService := service.NewAchievementService(achievementRepo)

	h := api.NewHandler(authService, otpService, achievementService, translator)
	mw := api.NewMiddleware(authService, cfg.DefaultLocale)
	router := api.NewRouter(h, mw)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		l.Info("http server started", "port", cfg.HTTPPort)

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("listen and serve: %s", err)
		}

		l.Debug("http server stopped")
	}()

	wg.Add(1)

	go func() {
		defer wg.Done()

		ticker := time.NewTicker(cfg.OTP.CleanupInterval)
		defer ticker.Stop()

		l := l.With("job", "delete_expired_codes")
		for {
			l.Debug("job started")

			err := otpService.DeleteExpiredCodes(ctx)
			if err != nil {
				l.Error(fmt.Sprintf("job failed: %s", err))
			} else {
				l.Debug("job finished")
			}

			select {
			case <-ctx.Done():
				l.Debug("job stopped by ctx")
				return
			case <-ticker.C:
			}
		}
	}()

	waitSignal(l, cancel, server)
	wg.Wait()
}

// newNotifier prefers the Kafka notification topic; without brokers the
// smtp-bridge HTTP client delivers mail directly.
func newNotifier(l *slog.Logger, cfg config.Config) (service.Notifier, func()) {
	if len(cfg.KafkaBrokers) > 0 {
		producer := broker.NewProducer(l, cfg.KafkaBrokers, cfg.KafkaTopic)
		return producer, producer.Close
	}

	l.Info("no kafka brokers configured, sending mail via smtp bridge", "bridge_url", cfg.Mail.BridgeURL)

	return mailbridge.NewClient(cfg.Mail), func() {}
}

func waitSignal(l *slog.Logger, cancel context.CancelFunc, server *http.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	sig := <-ch

	l.Info("got OS signal", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		l.Error("server shutdown", "error", err)
	}
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}
