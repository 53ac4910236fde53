package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/kyrios-fx/backend/internal/api/http"
	"github.com/kyrios-fx/backend/internal/cache"
	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/db"
	"github.com/kyrios-fx/backend/internal/queue/asynqserver"
	queueClient "github.com/kyrios-fx/backend/internal/queue/client"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/internal/server"
	"github.com/kyrios-fx/backend/internal/service"
	"github.com/kyrios-fx/backend/internal/worker"
	"github.com/kyrios-fx/backend/pkg/auth"
	"github.com/kyrios-fx/backend/pkg/email/smtp"
	"github.com/kyrios-fx/backend/pkg/hash"
	"github.com/kyrios-fx/backend/pkg/logger"
	"github.com/kyrios-fx/backend/pkg/otp"
	"github.com/kyrios-fx/backend/pkg/pdf"

	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	logger.SetupLogger(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting backend api")
	logger.Debug("debug messages are enabled")

	if cfg.Registration.PendingTTL <= 0 {
		logger.Error("pending registration ttl must be positive", zap.Duration("ttl", cfg.Registration.PendingTTL))
		os.Exit(1)
	}

	// Init database
	dbMySQL, err := db.New(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			logger.Error("error when closing mysql", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	// Init redis
	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("error when closing redis", zap.Error(err))
		}
	}()
	logger.Info("redis connection done")

	clock := clockwork.NewRealClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pending registrations & OTP codes
	var (
		pending  cache.PendingRegistrations
		otpCodes cache.OTPCodes
	)
	switch cfg.Registration.PendingStore {
	case cache.StoreMemory:
		memoryStore := cache.NewMemoryPendingStore(cfg.Registration.PendingTTL, clock)
		go runSweeper(ctx, memoryStore, clock, cfg.Registration.SweepPeriod)
		pending = memoryStore
		otpCodes = cache.NewMemoryOTPCodes(clock)
	case cache.StoreRedis:
		pending = cache.NewRedisPendingStore(redisClient, cfg.Registration.PendingTTL, clock)
		otpCodes = cache.NewRedisOTPCodes(redisClient)
	default:
		logger.Error("unknown pending store", zap.String("store", cfg.Registration.PendingStore))
		os.Exit(1)
	}
	logger.Info("pending registration store ready", zap.String("store", cfg.Registration.PendingStore))

	// Queue: client for producers, server for email workers
	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	restoreClient := queueClient.SetClient(asynqClient)
	defer func() {
		restoreClient()
		if err := asynqClient.Close(); err != nil {
			logger.Error("error when closing asynq client", zap.Error(err))
		}
	}()

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		logger.Error("smtp sender creation failed", zap.Error(err))
		os.Exit(1)
	}

	workers := worker.NewWorkers(worker.Deps{
		EmailProvider: emailSender,
		PDF:           pdf.NewGenerator(cfg.Email.FontPath),
		Config:        cfg,
	})
	queueServer, mux := asynqserver.New(cfg.Cache, cfg.Queue, workers)
	if err := queueServer.Start(mux); err != nil {
		logger.Error("asynq server start failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("queue workers started")

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		logger.Error("auth manager creation err", zap.Error(err))
		os.Exit(1)
	}

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:       cfg,
		Clock:        clock,
		Hasher:       hash.NewBcryptHasher(cfg.Auth.BcryptCost),
		TokenManager: tokenManager,
		OtpGenerator: otp.NewGOTPGenerator(),
		Mailer:       queueClient.NewMailer(cfg.Queue.MaxRetry),
		Pending:      pending,
		OTPCodes:     otpCodes,
		Repos:        repos,
	})
	handlers := apiHttp.NewHandlers(services, tokenManager, cfg)

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	shutdownCtx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}
	queueServer.Shutdown()
	cancel()

	logger.Info("app stopped")
}

// runSweeper backs up the per-entry timers of the in-memory store.
func runSweeper(ctx context.Context, store cache.PendingRegistrations, clock clockwork.Clock, period time.Duration) {
	if period <= 0 {
		return
	}
	ticker := clock.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			removed, err := store.Sweep(ctx)
			if err != nil {
				logger.Error("sweep pending registrations failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Debug("pending registrations swept", zap.Int("removed", removed))
			}
		}
	}
}
