package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Dosada05/scoreboard/analytics"
	"github.com/Dosada05/scoreboard/config"
	"github.com/Dosada05/scoreboard/db"
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/live"
	"github.com/Dosada05/scoreboard/repositories"
	api "github.com/Dosada05/scoreboard/routes"
	"github.com/Dosada05/scoreboard/scheduler"
	"github.com/Dosada05/scoreboard/services"
	"github.com/Dosada05/scoreboard/storage"
	"github.com/go-chi/chi/v5"
)

// @title Scoreboard API
// @version 1.0
// @description Табло для бадминтона, пинг-понга, волейбола и пользовательских игр.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("db_driver", cfg.DBDriver),
		slog.Bool("auth_enabled", cfg.ScorekeeperPINHash != ""),
		slog.Bool("backups_enabled", cfg.BackupsConfigured()),
	)

	// Подключение к базе данных
	dbConn, driver, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.Migrate(migrateCtx, dbConn, driver)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established", slog.String("driver", string(driver)))

	// Инициализация репозиториев
	var (
		matchRepo    repositories.MatchStateRepository
		historyRepo  repositories.HistoryRepository
		settingsRepo repositories.SettingsRepository
	)
	if driver == db.DriverPostgres {
		matchRepo = repositories.NewPostgresMatchStateRepository(dbConn)
		historyRepo = repositories.NewPostgresHistoryRepository(dbConn, cfg.HistoryLimit)
		settingsRepo = repositories.NewPostgresSettingsRepository(dbConn)
	} else {
		matchRepo = repositories.NewSQLiteMatchStateRepository(dbConn)
		historyRepo = repositories.NewSQLiteHistoryRepository(dbConn, cfg.HistoryLimit)
		settingsRepo = repositories.NewSQLiteSettingsRepository(dbConn)
	}
	logger.Info("Repositories initialized")

	// Объектное хранилище для резервных копий (Cloudflare R2), необязательно
	var objectStore storage.ObjectStore
	if cfg.BackupsConfigured() {
		objectStore, err = storage.NewR2Store(context.Background(), storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 store initialized", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация сервисов
	storageService := services.NewStorageService(matchRepo, historyRepo, settingsRepo, logger)
	gameTypeService := services.NewGameTypeService(storageService, logger)
	rosterService := services.NewRosterService()
	matchService := services.NewMatchService(storageService, logger)
	statsService := services.NewStatsService(storageService)
	backupService := services.NewBackupService(objectStore, storageService, logger)
	authService := services.NewAuthService(cfg.ScorekeeperPINHash, cfg.JWTSecretKey, logger)
	session := services.NewSession(rosterService, matchService, gameTypeService, storageService, logger)

	tracker := analytics.NewTracker(context.Background(), storageService, analytics.NewSimulatedVisitors(uint64(time.Now().UnixNano())), logger)
	logger.Info("Services initialized")

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	session.Subscribe(wsHub.Listen)
	session.Subscribe(tracker.HandleEvent)
	storageService.OnReplace(tracker.Reload)
	logger.Info("WebSocket Hub started")

	if session.Restore(context.Background()) {
		logger.Info("previous match restored")
	}

	// Периодические задачи
	sched, err := scheduler.New(logger,
		scheduler.Job{
			Name:     "autosave",
			Interval: cfg.AutosaveInterval,
			Run: func(ctx context.Context) {
				session.Autosave(ctx)
				tracker.Flush(ctx)
			},
		},
		scheduler.Job{
			Name:     "analytics-refresh",
			Interval: cfg.AnalyticsInterval,
			Run: func(context.Context) {
				// Только демонстрационные значения.
				tracker.Refresh()
			},
		},
	)
	if err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	sched.Start()

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Roster:    handlers.NewRosterHandler(session),
		Match:     handlers.NewMatchHandler(session),
		History:   handlers.NewHistoryHandler(storageService, statsService),
		GameTypes: handlers.NewGameTypeHandler(gameTypeService),
		Storage:   handlers.NewStorageHandler(storageService, backupService, session),
		Analytics: handlers.NewAnalyticsHandler(tracker),
		Auth:      handlers.NewAuthHandler(authService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, session, cfg.CORSAllowedOrigins, logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, authService, cfg.CORSAllowedOrigins, logger)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	if err := sched.Shutdown(); err != nil {
		logger.Error("scheduler shutdown failed", slog.Any("error", err))
	}
	wsHub.Stop()

	// Последнее сохранение перед выходом
	finalCtx, cancelFinal := context.WithTimeout(context.Background(), 5*time.Second)
	session.Autosave(finalCtx)
	tracker.Flush(finalCtx)
	cancelFinal()

	logger.Info("application exited")
	if exitCode != 0 {
		_ = dbConn.Close()
		os.Exit(exitCode)
	}
}

func openDatabase(cfg *config.Config) (*sql.DB, db.Driver, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		conn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		return conn, db.DriverPostgres, err
	default:
		conn, err := db.OpenSQLite(cfg.SQLitePath, 5*time.Second)
		return conn, db.DriverSQLite, err
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
