package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/discode/internal/bridge"
	"github.com/opencode-ai/discode/internal/config"
	"github.com/opencode-ai/discode/internal/discord"
	"github.com/opencode-ai/discode/internal/event"
	"github.com/opencode-ai/discode/internal/logging"
	"github.com/opencode-ai/discode/internal/opencode"
	"github.com/opencode-ai/discode/internal/server"
	"github.com/opencode-ai/discode/pkg/types"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Discord bridge",
	Long: `Start the bridge: connect to the opencode server and the Discord
gateway, mirror sessions into threads, and expose the webhook API.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Webhook port (overrides config)")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Working directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	workDir, err := GetWorkDir(serveDir)
	if err != nil {
		return err
	}

	if err := config.GetPaths().EnsurePaths(); err != nil {
		return err
	}

	cfg, cfgFiles, err := config.Load(workDir)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.HTTP.Port = servePort
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.LogLevel)
	logCfg.LogToFile = true
	logCfg.LogDir = config.GetPaths().State
	logCfg.Pretty = printLogs
	logging.Init(logCfg)
	defer logging.Close()

	logging.Info().
		Str("version", Version).
		Str("directory", workDir).
		Msg("starting discode")

	if cfg.Discord.Token == "" {
		return errors.New("discord token is not configured (set DISCODE_TOKEN)")
	}

	defaultModel, ok := types.ParseModel(cfg.Model)
	if !ok && cfg.Model != "" {
		logging.Warn().Str("model", cfg.Model).Msg("ignoring malformed default model")
	}

	var catalog []types.ModelRef
	if cfg.Catalog != "" {
		catalog, err = bridge.LoadCatalog(cfg.Catalog)
		if err != nil {
			return err
		}
		logging.Info().Int("models", len(catalog)).Msg("loaded model catalog")
	}

	bus := event.NewBus()
	defer bus.Close()

	models := bridge.NewModels(defaultModel)
	backend := opencode.New(cfg.Opencode.URL)

	chat, err := discord.New(cfg.Discord, models, catalog, bus)
	if err != nil {
		return err
	}

	sessionDir := cfg.Opencode.Directory
	if sessionDir == "" {
		sessionDir = workDir
	}
	manager := bridge.NewManager(bridge.NewRegistry(), bridge.NewLedger(), backend, chat, models, bus, sessionDir)
	chat.Attach(manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := chat.Start(ctx); err != nil {
		return err
	}
	defer chat.Stop()

	watcher, err := config.NewWatcher(workDir, cfgFiles, func(updated *types.Config) {
		if m, ok := types.ParseModel(updated.Model); ok {
			models.SetDefault(m)
		}
	})
	if err != nil {
		logging.Warn().Err(err).Msg("config watcher unavailable")
	} else if watcher != nil {
		watcher.Start()
		defer watcher.Stop()
	}

	consumer := bridge.NewConsumer(backend, manager, bus)
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("event consumer stopped")
		}
	}()

	srvCfg := server.DefaultConfig()
	if cfg.HTTP.Port > 0 {
		srvCfg.Port = cfg.HTTP.Port
	}
	srvCfg.EnableCORS = cfg.HTTP.CORSEnabled()
	srvCfg.AllowedDirs = cfg.AllowedDirs
	srv := server.New(srvCfg, manager)

	go func() {
		logging.Info().Int("port", srvCfg.Port).Msg("webhook server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("webhook server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("webhook server shutdown failed")
	}

	return nil
}
