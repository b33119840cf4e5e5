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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/api"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/config"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/auth"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/db"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/events"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/middleware"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/store"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/workspace"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "medcontrol",
		Short: "Headless page service for the MedControl clinic records",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the page API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema of the postgres store mode",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					state, appliedAt := "pending", ""
					if s.Applied {
						state = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, state, appliedAt)
				}
				return nil
			})
		},
	})
	return cmd
}

func withPool(ctx context.Context, fn func(context.Context, *db.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrations")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, db.NewMigrator(pool, db.Migrations, "migrations"))
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill empty leveldb or postgres collections with the sample records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var seeded []string
			switch cfg.StoreMode {
			case config.StoreLevelDB:
				ldb, err := store.OpenLevelDB(cfg.LevelDBPath)
				if err != nil {
					return err
				}
				defer ldb.Close()
				seeded, err = workspace.Seed(ctx, workspace.LevelSeeder(ldb))
				if err != nil {
					return err
				}
			case config.StorePostgres:
				pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return err
				}
				defer pool.Close()
				seeded, err = workspace.Seed(ctx, workspace.PostgresSeeder(pool))
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("STORE_MODE %q keeps no local data to seed", cfg.StoreMode)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d collection(s): %v\n", len(seeded), seeded)
			return nil
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// backend is the record store wiring selected by STORE_MODE.
type backend struct {
	stores workspace.StoreFactory
	check  api.StoreCheck
	close  func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	switch cfg.StoreMode {
	case config.StoreMock:
		return &backend{stores: workspace.MemoryStores(), close: func() {}}, nil

	case config.StoreRemote:
		client := &http.Client{Timeout: cfg.APITimeout}
		tokens := auth.Forwarded{Fallback: cfg.APIToken}
		logger.Info().Str("base_url", cfg.APIBaseURL).Msg("using remote record store")
		return &backend{
			stores: workspace.RemoteStores(cfg.APIBaseURL, tokens, client),
			check: func(context.Context) (map[string]any, error) {
				return map[string]any{"base_url": cfg.APIBaseURL}, nil
			},
			close: client.CloseIdleConnections,
		}, nil

	case config.StoreLevelDB:
		ldb, err := store.OpenLevelDB(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.LevelDBPath).Msg("opened leveldb record store")
		if err := seedOnStart(ctx, workspace.LevelSeeder(ldb), logger); err != nil {
			ldb.Close()
			return nil, err
		}
		return &backend{
			stores: workspace.LevelStores(ldb),
			check: func(context.Context) (map[string]any, error) {
				details := map[string]any{"path": cfg.LevelDBPath}
				_, err := ldb.Has([]byte("health"), nil)
				return details, err
			},
			close: func() {
				if err := ldb.Close(); err != nil {
					logger.Error().Err(err).Msg("close leveldb")
				}
			},
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to database")
		if err := seedOnStart(ctx, workspace.PostgresSeeder(pool), logger); err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			stores: workspace.PostgresStores(pool),
			check: func(ctx context.Context) (map[string]any, error) {
				stats, err := db.Check(ctx, pool)
				return map[string]any{"pool": stats}, err
			},
			close: pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_MODE %q", cfg.StoreMode)
}

// seedOnStart fills empty shared collections before any workspace opens
// them, so request handling never writes fixtures.
func seedOnStart(ctx context.Context, factory func(string) workspace.Seeder, logger zerolog.Logger) error {
	seeded, err := workspace.Seed(ctx, factory)
	if err != nil {
		return err
	}
	if len(seeded) > 0 {
		logger.Info().Strs("collections", seeded).Msg("seeded empty collections")
	}
	return nil
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if !cfg.EventsEnabled() {
		return events.Nop{}
	}
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing page events")
	return events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
}

// newServer assembles the middleware chain and the page routes.
func newServer(cfg *config.Config, logger zerolog.Logger, h *api.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader, api.SessionHeader},
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	if cfg.AuthSigningKey != "" {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	} else {
		e.Use(auth.DevAuthMiddleware())
	}

	h.RegisterRoutes(e)
	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	if cfg.AuthSigningKey == "" {
		logger.Warn().Msg("AUTH_SIGNING_KEY is not set; every request runs as dev-user")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("store_mode", cfg.StoreMode).Msg("failed to open record store")
		return err
	}
	defer be.close()

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	workspaces := workspace.NewManager(workspace.Options{
		Stores:           be.stores,
		Events:           publisher,
		ReminderInterval: cfg.ReminderInterval,
		IdleTTL:          cfg.SessionIdleTTL,
		Logger:           logger,
	})
	workspaces.StartCleanup()
	defer workspaces.Close()

	e := newServer(cfg, logger, api.NewHandler(workspaces, cfg.StoreMode, be.check, logger))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store_mode", cfg.StoreMode).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
