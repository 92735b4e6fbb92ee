package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/config"
	"github.com/bukudev/catalog-api/internal/domain/catalog"
	"github.com/bukudev/catalog-api/internal/tasks"
)

// RunWorkers runs the asynq server and scheduler until ctx is canceled.
// The scheduler enqueues the periodic cover sweep; the server executes it.
func RunWorkers(ctx context.Context, cfg *config.Config, books catalog.BookRepository, covers tasks.CoverLister, logger *zap.Logger) error {
	redisConnOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(
		redisConnOpts,
		asynq.Config{
			Concurrency: 5,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Named("AsynqServerErrorHandler").Error("Task processing failed",
					zap.String("task_type", task.Type()),
					zap.Error(err),
				)
			}),
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqServer")),
		},
	)

	mux := asynq.NewServeMux()
	sweepHandler := tasks.NewSweepCoversHandler(books, covers, cfg.Uploads.SweepGrace, logger)
	mux.HandleFunc(tasks.TypeSweepCovers, sweepHandler.ProcessTask)

	scheduler := asynq.NewScheduler(
		redisConnOpts,
		&asynq.SchedulerOpts{
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqScheduler")),
		},
	)

	sweepTask, err := tasks.NewSweepCoversTask()
	if err != nil {
		return fmt.Errorf("sweep task creation error: %w", err)
	}

	schedule := fmt.Sprintf("@every %s", cfg.Uploads.SweepEvery)
	entryID, err := scheduler.Register(schedule, sweepTask)
	if err != nil {
		return fmt.Errorf("scheduler registration error: %w", err)
	}
	logger.Info("Registered periodic cover sweep", zap.String("entry_id", entryID), zap.String("schedule", schedule))

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting Asynq server...")
		if err := srv.Run(mux); err != nil {
			errChan <- fmt.Errorf("asynq server error: %w", err)
			return
		}
		errChan <- nil
	}()

	go func() {
		logger.Info("Starting Asynq scheduler...")
		if err := scheduler.Run(); err != nil {
			errChan <- fmt.Errorf("asynq scheduler error: %w", err)
			return
		}
		errChan <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down Asynq scheduler and server...")
		scheduler.Shutdown()
		srv.Shutdown()
		return nil
	case err := <-errChan:
		scheduler.Shutdown()
		srv.Shutdown()
		return err
	}
}

type asynqLoggerAdapter struct {
	logger *zap.Logger
}

func NewAsynqLoggerAdapter(logger *zap.Logger) *asynqLoggerAdapter {
	return &asynqLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *asynqLoggerAdapter) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
