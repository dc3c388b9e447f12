package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkmind/linkmind/internal/config"
	"github.com/linkmind/linkmind/internal/httpserver"
	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/metadata"
	"github.com/linkmind/linkmind/internal/notify"
	"github.com/linkmind/linkmind/internal/redis"
	"github.com/linkmind/linkmind/internal/reminder"
	"github.com/linkmind/linkmind/internal/scheduler"
	"github.com/linkmind/linkmind/internal/sources/imports"
	redisstore "github.com/linkmind/linkmind/internal/store/redis"
	"github.com/linkmind/linkmind/internal/tasks"
	"github.com/linkmind/linkmind/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sweepRunner *scheduler.SweepRunner
	importer    *imports.Importer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	// Named-task scheduler gateway. Disabled when unconfigured; reminders
	// then rely entirely on the sweep.
	if cfg.SchedulerEnabled() {
		loggerClient.Info("task scheduler configured",
			logger.String("queue", cfg.SchedulerQueue),
			logger.String("callback", cfg.CallbackBaseURL))
	} else {
		loggerClient.Info("task scheduler not configured, running in sweep-only mode")
	}
	gateway := tasks.New(tasks.Options{
		BaseURL:         cfg.SchedulerURL,
		Queue:           cfg.SchedulerQueue,
		CallbackBaseURL: cfg.CallbackBaseURL,
		Secret:          []byte(cfg.SchedulerSecret),
		Timeout:         cfg.SchedulerHTTPTO,
	}, loggerClient)

	sender := notify.NewPushClient(notify.Options{
		BaseURL: cfg.PushURL,
		Token:   cfg.PushToken,
		Timeout: cfg.PushHTTPTO,
	}, loggerClient)

	controller := reminder.NewController(store, gateway, sender, loggerClient, nil)
	sweeper := reminder.NewSweeper(store, sender, store, loggerClient, cfg.DigestHour, cfg.SweepLockTTL, nil)
	sweepRunner := scheduler.NewSweepRunner(sweeper, loggerClient, cfg.SweepSchedule)

	fetcher := metadata.NewFetcher(cfg.MetadataTimeout, loggerClient)

	// Optional one-shot bookmark import at startup.
	var importer *imports.Importer
	if cfg.ImportFile != "" {
		loggerClient.Info("import file configured",
			logger.String("file", cfg.ImportFile))
		importer = imports.NewImporter(cfg.ImportFile, store, controller, loggerClient, nil)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		Store:           store,
		RedisClient:     redisClient,
		Controller:      controller,
		Sweeper:         sweeper,
		Notifier:        sender,
		Metadata:        fetcher,
		AuthSecret:      []byte(cfg.AuthSecret),
		SchedulerSecret: []byte(cfg.SchedulerSecret),
		CallbackBaseURL: cfg.CallbackBaseURL,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sweepRunner: sweepRunner,
		importer:    importer,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting LinkMind v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("LinkMind %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run the startup import before accepting traffic so seeded reminders
	// exist by the time the first sweep can run.
	if a.importer != nil {
		if err := a.importer.Run(ctx); err != nil {
			a.logger.Error("bookmark import failed", logger.Error(err))
			// Import is best effort; a broken file must not keep the
			// service down.
		}
	}

	if err := a.sweepRunner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sweep runner: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.sweepRunner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ LinkMind stopped cleanly")
	return nil
}
