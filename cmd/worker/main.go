package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/raminkz/gotodo/internal/database"
	"github.com/raminkz/gotodo/internal/tasks"
	"github.com/raminkz/gotodo/internal/todo"
	"github.com/raminkz/gotodo/pkg/config"
	"github.com/raminkz/gotodo/pkg/queue"
	"github.com/raminkz/gotodo/pkg/util"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting gotodo worker")

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	srv := queue.NewServer(&cfg.Redis, 10)

	store := todo.NewStore(db)
	mailer := tasks.NewMailer(cfg.Mail, baseURL(cfg))
	handler := tasks.NewHandler(store, mailer, logger)

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// The purge job is triggered on a schedule the core does not control;
	// the cron loop here just enqueues the task.
	client := queue.NewClient(&cfg.Redis)
	defer client.Close()

	c := cron.New()
	_, err = c.AddFunc(cfg.Cleanup.Cron, func() {
		if _, err := client.Enqueue(tasks.NewPurgeCompletedTask()); err != nil {
			logger.Error("failed to enqueue purge task", "error", err)
		}
	})
	if err != nil {
		logger.Error("invalid cleanup cron expression", "cron", cfg.Cleanup.Cron, "error", err)
		os.Exit(1)
	}
	c.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		c.Stop()
		srv.Shutdown()
	}()

	logger.Info("worker started, waiting for tasks...", "cleanup_cron", cfg.Cleanup.Cron)

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}

func baseURL(cfg *config.Config) string {
	return fmt.Sprintf("http://%s", cfg.Server.Addr())
}
