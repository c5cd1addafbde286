package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fantacard/market-api/internal/config"
	"github.com/fantacard/market-api/internal/platform/footballdata"
	"github.com/fantacard/market-api/internal/platform/logger"
	"github.com/fantacard/market-api/internal/platform/postgres"
	"github.com/fantacard/market-api/internal/service/auth"
	"github.com/fantacard/market-api/internal/service/trade"
	"github.com/fantacard/market-api/internal/service/user"
	"github.com/fantacard/market-api/internal/service/valuation"
	"github.com/fantacard/market-api/internal/store"
	"github.com/fantacard/market-api/internal/task"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	cardStore store.CardStore

	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier

	tradeEngine *trade.Engine
	userService *user.Service

	taskRunner *task.TaskRunner
	scheduler  *task.Scheduler
}

// newApplication loads configuration and wires every component together.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := openDatabase(cfg.Database.URL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, log)
	cardStore := postgres.NewPostgresCardStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	valuationEngine, err := valuation.NewEngine(cardStore, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create valuation engine: %w", err)
	}

	taskRunner := task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Valuation.WorkerCount,
		QueueSize:   cfg.Valuation.QueueSize,
	}, log)

	trigger, err := task.NewTrigger(taskRunner, valuationEngine, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create revaluation trigger: %w", err)
	}

	scheduler, err := task.NewScheduler(cfg.Valuation.SweepSchedule, trigger, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create revaluation scheduler: %w", err)
	}

	tradeEngine, err := trade.NewEngine(db, userStore, cardStore, trigger, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade engine: %w", err)
	}

	hasher := auth.NewBcryptHasher()
	verifier := auth.NewBcryptVerifier()

	feedClient := footballdata.NewClient(cfg.Cards, log)

	userService, err := user.NewService(
		db,
		userStore,
		cardStore,
		feedClient,
		hasher,
		tradeEngine,
		trigger,
		cfg.Cards.StarterCount,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	return &application{
		config:           cfg,
		logger:           log,
		db:               db,
		userStore:        userStore,
		cardStore:        cardStore,
		jwtService:       jwtService,
		passwordHasher:   hasher,
		passwordVerifier: verifier,
		tradeEngine:      tradeEngine,
		userService:      userService,
		taskRunner:       taskRunner,
		scheduler:        scheduler,
	}, nil
}

// run starts background processing and the HTTP server, then shuts
// everything down in reverse order when ctx is cancelled.
func (app *application) run(ctx context.Context) error {
	app.taskRunner.Start()
	app.scheduler.Start()

	err := app.serveHTTP(ctx)

	app.scheduler.Stop()
	app.taskRunner.Stop()

	if closeErr := app.db.Close(); closeErr != nil {
		app.logger.Error("failed to close database", "error", closeErr)
	}

	return err
}
