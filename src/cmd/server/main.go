package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/controller"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/router"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/repository/implementations"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/account-transfer-service/src/internal/config"
	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/lock"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/api-sage/account-transfer-service/src/internal/usecase/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited with error", err, nil)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

type stores struct {
	accounts  domain.AccountRepository
	transfers domain.TransferRepository
	uow       domain.UnitOfWork
	close     func() error
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Environment, cfg.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	locks, closeLocks, err := openLocks(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLocks() }()

	accountService := services.NewAccountService(st.accounts)
	transferService := services.NewTransferService(st.accounts, st.transfers, locks, st.uow, domain.SystemClock{})

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.New(
			controller.NewAccountController(accountService),
			controller.NewTransferController(transferService),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", logger.Fields{
			"addr":           cfg.HTTPAddr,
			"storageBackend": cfg.StorageBackend,
			"lockBackend":    cfg.LockBackend,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("http server shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StorageBackend == config.StorageBackendMemory {
		logger.Warn("using in-memory storage, balances are lost on restart", nil)
		return stores{
			accounts:  memory.NewAccountRepository(domain.SystemClock{}),
			transfers: memory.NewTransferRepository(domain.SystemClock{}),
			uow:       memory.NewUnitOfWork(),
			close:     func() error { return nil },
		}, nil
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := implementations.Open(openCtx, cfg.DatabaseDSN)
	if err != nil {
		return stores{}, err
	}
	if err := implementations.RunMigrations(openCtx, db, cfg.MigrationsDir); err != nil {
		_ = db.Close()
		return stores{}, fmt.Errorf("run migrations: %w", err)
	}

	return postgresStores(db), nil
}

func postgresStores(db *sql.DB) stores {
	return stores{
		accounts:  implementations.NewAccountRepository(db),
		transfers: implementations.NewTransferRepository(db),
		uow:       implementations.NewUnitOfWork(db),
		close:     db.Close,
	}
}

func openLocks(ctx context.Context, cfg config.Config) (domain.LockCoordinator, func() error, error) {
	if cfg.LockBackend != config.LockBackendRedis {
		return lock.NewKeyedCoordinator(cfg.LockTimeout), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}

	coordinator, err := lock.NewRedisCoordinator(client, lock.RedisOptions{
		Timeout:    cfg.LockTimeout,
		Expiry:     cfg.LockExpiry,
		RetryDelay: cfg.LockRetryDelay,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("build redis lock coordinator: %w", err)
	}

	return coordinator, client.Close, nil
}
