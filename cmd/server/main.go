package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tvshow-api/internal/config"
	"tvshow-api/internal/handler"
	"tvshow-api/internal/logging"
	"tvshow-api/internal/metrics"
	"tvshow-api/internal/repository"
	"tvshow-api/internal/service"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:               "tvshow-api",
	Short:             "HTTP API for storing and searching TV shows",
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
	RunE:              runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Create the schema if needed and serve the HTTP API",
	RunE:  runServe,
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the TvShows table and exit",
	RunE:  runInitDB,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the database file into the backup directory and exit",
	RunE:  runBackup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(backupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up logging for every command
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger = logging.New(cfg.Logging)
	return nil
}

// openDatabase connects and makes sure the table exists
func openDatabase(ctx context.Context) (*repository.SQLiteDB, error) {
	db, err := repository.NewSQLiteDB(cfg.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return db, nil
}

func runInitDB(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info().Str("database", db.Path()).Msg("Schema ready")
	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	db, err := repository.NewSQLiteDB(cfg.Database.ConnectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	backupSvc := service.NewBackupService(db.Path(), cfg.Backup.Dir, cfg.Backup.MaxBackups, logger)
	path, err := backupSvc.Backup()
	if err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("Backup created")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	showRepo := repository.NewTVShowRepository(db)
	m := metrics.New()

	backupSvc := service.NewBackupService(db.Path(), cfg.Backup.Dir, cfg.Backup.MaxBackups, logger)
	if cfg.Backup.ScheduleEnabled {
		scheduler := service.NewScheduler(backupSvc, logger)
		scheduler.Start()
		defer scheduler.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	httpHandler := handler.NewHTTPHandler(showRepo, backupSvc, m, logger)

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      handler.NewRouter(httpHandler, cfg.Server),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("database", db.Path()).
			Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
