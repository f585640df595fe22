package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/internal/cache"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	txHandler "github.com/MrJamesThe3rd/tally/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/tally/internal/http/user"
	"github.com/MrJamesThe3rd/tally/internal/notification"
	"github.com/MrJamesThe3rd/tally/internal/processor"
	"github.com/MrJamesThe3rd/tally/internal/queue"
	tallyRedis "github.com/MrJamesThe3rd/tally/internal/redis"
	"github.com/MrJamesThe3rd/tally/internal/settlement"
	settlementStore "github.com/MrJamesThe3rd/tally/internal/settlement/store"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	txStore "github.com/MrJamesThe3rd/tally/internal/transaction/store"
	"github.com/MrJamesThe3rd/tally/internal/user"
	userStore "github.com/MrJamesThe3rd/tally/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(),
		cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := tallyRedis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var (
		publisher    = queue.NewPublisher(rdb)
		consumer     = queue.NewConsumer(rdb)
		worker       = settlement.NewWorker(settlementStore.New(db))
		orchestrator = settlement.NewOrchestrator(worker, publisher)
		cacheManager = cache.NewManager(rdb, cfg.Cache.TTL)

		transactionService = transaction.NewService(txStore.New(db), orchestrator)
		userService        = user.NewService(userStore.New(db))

		mailer = notification.NewMailer(notification.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Enabled:  cfg.SMTP.Enabled,
		})
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runners := []*processor.Runner{
		processor.NewRunner(consumer, processor.NewStats(rdb)),
		processor.NewRunner(consumer, processor.NewCreditScore(rdb)),
		processor.NewRunner(consumer, processor.NewNotification(mailer)),
	}

	var wg sync.WaitGroup
	for _, r := range runners {
		r := r
		wg.Add(1)

		go func() {
			defer wg.Done()
			r.Run(ctx)
		}()
	}

	var (
		transactionH = txHandler.NewHandler(transactionService, cacheManager)
		userH        = userHandler.NewHandler(userService, cacheManager)
	)

	router := tallyHttp.New(transactionH, userH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "port", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	wg.Wait()
	slog.Info("shutdown complete")
}
