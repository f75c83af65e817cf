package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nbatyrov/contactbook/config"
	"github.com/nbatyrov/contactbook/internal/avatar"
	"github.com/nbatyrov/contactbook/internal/email"
	"github.com/nbatyrov/contactbook/internal/health"
	"github.com/nbatyrov/contactbook/internal/infrastructure/postgres"
	ctxlog "github.com/nbatyrov/contactbook/internal/log"
	"github.com/nbatyrov/contactbook/internal/metrics"
	"github.com/nbatyrov/contactbook/internal/password"
	"github.com/nbatyrov/contactbook/internal/session"
	"github.com/nbatyrov/contactbook/internal/token"
	httptransport "github.com/nbatyrov/contactbook/internal/transport/http"
	"github.com/nbatyrov/contactbook/internal/transport/http/handler"
	"github.com/nbatyrov/contactbook/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)

	issuer := token.NewIssuer([]byte(cfg.JWTSecret), token.DefaultTTL)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	avatarStore, avatarDir, err := newAvatarStore(ctx, cfg)
	if err != nil {
		log.Fatalf("avatar store: %v", err)
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, sender, password.NewBcrypt(), issuer, avatarStore, cfg.AppBaseURL)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	contactUsecase := usecase.NewContactUsecase(contactRepo)
	contactHandler := handler.NewContactHandler(contactUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterConfig{
			Logger:         logger,
			AuthHandler:    authHandler,
			ContactHandler: contactHandler,
			TokenIssuer:    issuer,
			UserRepo:       userRepo,
			AvatarDir:      avatarDir,
		}),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	sweeper, err := session.NewSweeper(userRepo, issuer, cfg.SessionSweepSpec, logger)
	if err != nil {
		log.Fatalf("session sweeper: %v", err)
	}
	go sweeper.Start(ctx)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// newAvatarStore also returns the directory the router should expose
// under /avatars; empty for S3, whose objects are served by URL.
func newAvatarStore(ctx context.Context, cfg *config.Config) (avatar.Store, string, error) {
	if cfg.AvatarStorage == "s3" {
		store, err := avatar.NewS3Store(ctx, cfg.S3Bucket, cfg.S3PublicBaseURL)
		return store, "", err
	}
	store, err := avatar.NewDiskStore(cfg.AvatarDir, "/avatars")
	return store, cfg.AvatarDir, err
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
