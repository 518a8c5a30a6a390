// Package main initializes and starts the GophVault HTTP server,
// setting up configuration, logging, storage, the credential service,
// handlers and routing.
package main

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atinyakov/GophVault/internal/config"
	"github.com/atinyakov/GophVault/internal/db"
	"github.com/atinyakov/GophVault/internal/logger"
	"github.com/atinyakov/GophVault/internal/repository"
	"github.com/atinyakov/GophVault/internal/server/handler/http"
	"github.com/atinyakov/GophVault/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// Open the configured storage backend.
	repo, conn, closeStore, err := openRepository(options)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.String("driver", options.Driver), zap.Error(err))
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if options.MaintenanceInterval > 0 {
		if err := db.StartMaintenance(ctx, conn, options.Driver, options.MaintenanceInterval, zapLogger); err != nil {
			zapLogger.Fatal("cannot start storage maintenance", zap.Error(err))
		}
	}

	credentialService := service.NewCredentialService(repo)
	credentialHandler := &http.CredentialHandler{CredentialService: credentialService, Logger: zapLogger}
	router := http.NewRouter(credentialHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port), zap.String("driver", options.Driver))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openRepository returns the credential repository for the configured driver,
// the connection used for maintenance writes and a func releasing everything.
func openRepository(options *config.Options) (service.CredentialRepository, *sql.DB, func(), error) {
	switch options.Driver {
	case db.DriverSQLite:
		store, err := db.InitSQLite(options.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewSQLiteCredentialRepository(store), store.Writer, func() { _ = store.Close() }, nil
	default:
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewPostgresCredentialRepository(postgresDB), postgresDB, func() { _ = postgresDB.Close() }, nil
	}
}
