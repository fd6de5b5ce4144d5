// Package scheduler собирает приложение планировщика: по расписанию
// деактивирует учётные записи без недавнего входа.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kopstant/lms-backend/internal/config"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	schedulerservice "github.com/kopstant/lms-backend/internal/services/scheduler"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	cronSpec         string
	db               *repository.Storage
	logger           *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		if err := repository.CheckDatabaseReady(db); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(db); err != nil {
		return nil, err
	}

	schedulerService := schedulerservice.NewSchedulerService(db, cfg.DormantDays, logger)

	return &App{
		schedulerService: schedulerService,
		cronSpec:         cfg.DeactivateCronSpec,
		db:               db,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(a.cronSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, err := a.schedulerService.DeactivateDormantUsers(runCtx); err != nil {
			a.logger.Error("dormant users deactivation failed", sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule deactivation job: %w", err)
	}

	c.Start()
	a.logger.Info("scheduler started", slog.String("cron_spec", a.cronSpec))

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	stopCtx := c.Stop()
	<-stopCtx.Done()

	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("err", err))
	}
	return nil
}
