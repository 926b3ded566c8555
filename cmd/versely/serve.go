package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	httpserver "github.com/versely/versely/internal/adapters/primary/http"
	"github.com/versely/versely/internal/adapters/secondary/config"
	"github.com/versely/versely/internal/adapters/secondary/storage"
	"github.com/versely/versely/internal/adapters/secondary/textproc"
	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
	"github.com/versely/versely/internal/domain/services"
)

var (
	// Serve command flags
	servePort   int
	serveHost   string
	serveDB     string
	serveRemote string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the presentation server",
	Long: `Start the versely server: the editing API, the live display
WebSocket, and the persistence endpoint.

By default slides and collections are stored in a local sqlite database.
With --remote the server works against another versely instance instead,
keeping a local in-memory copy and mirroring writes to it.

Example:
  versely serve
  versely serve --port 4000 --db /var/lib/versely/library.db
  versely serve --remote http://hub.local:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Path to the sqlite database (overrides config)")
	serveCmd.Flags().StringVar(&serveRemote, "remote", "", "Sync through a remote versely server (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	store, closeStore, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	app := buildServices(store, cfg, logger)
	defer app.regenerator.Close()

	server := httpserver.NewServer(store, app.library, app.flows, app.regenerator, &cfg.Server, logger)

	presenter := services.NewPresenter(store, store, server, cfg.Display.CycleInterval(), logger)
	defer presenter.Close()
	server.SetPresenter(presenter)

	// Orphan pass before serving: an empty library means a clean slate.
	if deleted, err := app.sweeper.SweepStartup(cmd.Context()); err != nil {
		logger.Warn("startup sweep failed", "error", err)
	} else if len(deleted) > 0 {
		logger.Info("startup sweep removed orphaned slides", "count", len(deleted))
	}

	if err := server.Start(cmd.Context()); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	logger.Info("versely running",
		"addr", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port))

	<-cmd.Context().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()
	return server.Stop(shutdownCtx)
}

// appServices bundles the wired domain services.
type appServices struct {
	library     *services.LibraryService
	flows       *services.FlowService
	sweeper     ports.Sweeper
	regenerator ports.Regenerator
}

// buildServices wires the text pipeline and library services over a store.
func buildServices(store ports.Store, cfg *entities.Config, logger *slog.Logger) *appServices {
	clock := ports.SystemClock{}

	reconciler := services.NewReconciler(store, store, clock, logger)
	sweeper := services.NewSweeper(store, store, logger)
	regenerator := services.NewRegenerator(
		textproc.NewNormalizer(),
		textproc.NewSegmenter(),
		textproc.NewSynthesizer(clock),
		reconciler,
		sweeper,
		store,
		store,
		clock,
		cfg.Editor.DebounceDelay(),
		logger,
	)

	flows := services.NewFlows(store, store, clock, logger)
	library := services.NewLibrary(store, store, store, flows, sweeper, regenerator, clock, logger)

	return &appServices{
		library:     library,
		flows:       flows,
		sweeper:     sweeper,
		regenerator: regenerator,
	}
}

// openStore opens the configured store: sqlite locally, or a remote server
// with a local mirror.
func openStore(ctx context.Context, cfg *entities.Config, logger *slog.Logger) (ports.Store, func(), error) {
	if cfg.Storage.RemoteURL != "" {
		remote := storage.NewRemoteStore(cfg.Storage.RemoteURL, logger)
		if err := remote.Load(ctx); err != nil {
			return nil, nil, fmt.Errorf("loading remote library: %w", err)
		}
		return remote, func() {}, nil
	}

	db, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

// loadConfig builds the effective configuration: defaults, then the global
// file, then a local versely.toml, then environment, then flags.
func loadConfig(cmd *cobra.Command) (*entities.Config, error) {
	ctx := cmd.Context()
	loader := config.NewTOMLLoader()
	merger := config.NewConfigMerger()

	global, err := loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	local, err := loader.LoadLocal(ctx, workingDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}

	cfg := merger.Merge(config.GetDefaultConfig(), global, local)
	cfg = merger.ApplyEnvVars(cfg)
	cfg = merger.ApplyFlags(cfg, collectFlags(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// collectFlags gathers flag overrides for the merger.
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	if cmd.Flags().Changed("port") {
		flags["port"] = servePort
	}
	if cmd.Flags().Changed("host") {
		flags["host"] = serveHost
	}
	if cmd.Flags().Changed("db") {
		flags["db"] = serveDB
	}
	if cmd.Flags().Changed("remote") {
		flags["remote"] = serveRemote
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		flags["verbose"] = true
	}

	return flags
}

// newLogger builds the process logger from logging configuration.
func newLogger(cfg entities.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.GetLevel() {
	case entities.LogLevelDebug:
		level = slog.LevelDebug
	case entities.LogLevelWarn:
		level = slog.LevelWarn
	case entities.LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
