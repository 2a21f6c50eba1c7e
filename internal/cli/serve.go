package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/skrbnik/internal/api"
	"github.com/erazemk/skrbnik/internal/config"
	"github.com/erazemk/skrbnik/internal/db"
	"github.com/erazemk/skrbnik/internal/ledger"
	"github.com/erazemk/skrbnik/internal/metrics"
	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// purgeInterval is how often expired token revocations are dropped.
const purgeInterval = time.Hour

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		addr          string
		blockInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and produce ledger blocks",
		Long: `Run the HTTP API and produce ledger blocks.

The database and an admin account are created on first run. The ledger
height advances by one every block interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("block-interval") {
				cfg.BlockInterval = blockInterval
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, closeLog, err := newLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.LogPath)
			if err != nil {
				return err
			}
			defer closeLog()
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	cmd.Flags().DurationVar(&blockInterval, "block-interval", 0, "time between ledger blocks (overrides config)")

	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// Auto-init on first run.
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(ctx, cfg.DBPath, model.Identity(cfg.AdminIdentity))
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(os.Stdout, cfg.DBPath, cfg.AdminIdentity, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	height, err := store.Height(ctx, database)
	if err != nil {
		return err
	}
	logger.Info("database ready", "path", cfg.DBPath, "height", height)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	var (
		observer       ledger.Observer
		metricsHandler http.Handler
	)
	if cfg.Metrics {
		recorder := metrics.NewRecorder()
		recorder.ObserveHeight(height)
		observer, metricsHandler = recorder, recorder.Handler()
	}
	l := ledger.New(database, logger, observer)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(logger)(api.NewRouter(database, l, jwtSecret, metricsHandler)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()
	go produceBlocks(bgCtx, l, cfg.BlockInterval, logger)
	go purgeTokens(bgCtx, database, purgeInterval, logger)

	// Graceful shutdown once ctx is cancelled.
	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("server started", "addr", cfg.Addr, "block_interval", cfg.BlockInterval, "metrics", cfg.Metrics)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped, closing database")
	return nil
}

// produceBlocks advances the ledger height by one every interval until ctx
// is done.
func produceBlocks(ctx context.Context, l *ledger.Ledger, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			height, err := l.Advance(ctx, 1)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("producing block", "error", err)
				}
				continue
			}
			logger.Debug("block produced", "height", height)
		}
	}
}

// purgeTokens periodically drops revocations of tokens that have expired.
func purgeTokens(ctx context.Context, db store.Querier, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeRevokedTokens(ctx, db, now)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("purging revoked tokens", "error", err)
				}
				continue
			}
			if n > 0 {
				logger.Info("purged revoked tokens", "count", n)
			}
		}
	}
}
