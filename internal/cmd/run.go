package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"storebot/internal/bot"
	"storebot/internal/catalog"
	"storebot/internal/config"
	"storebot/internal/logger"
	"storebot/internal/notify"
	"storebot/internal/server"
	"storebot/internal/session"
	"storebot/internal/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	Long: `Start the bot, which runs:
- Telegram long polling for customer messages and button presses
- the /health and /healthz HTTP endpoints
- an optional catalog file watcher (WATCH_CATALOG=true)`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	// Step 1: configuration
	config.LoadEnv()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 2: logging
	if err := logger.SetupLogger(cfg.LoggerConfig(verbose)); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.LogInfo("🚀 Starting %s...", server.BotName)
	config.LogCurrentEnvironment(cfg)

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.LogWarn("Unknown time zone %q, using local time: %v", cfg.TimeZone, err)
		loc = time.Local
	}

	// Step 3: catalog and sessions
	store := catalog.NewStore(cfg.CatalogPath)
	store.Load()
	sessions := session.NewStore()

	// Step 4: Telegram
	api, err := telegram.Connect(cfg.BotToken, cfg.TelegramDebug)
	if err != nil {
		return err
	}

	notifier, err := notify.New(notify.Config{
		AdminChatID: cfg.AdminChatID,
		MockMode:    cfg.NotifyMockMode,
		Location:    loc,
	}, telegram.NewSender(api))
	if err != nil {
		return err
	}
	if !notifier.Enabled() {
		logger.LogWarn("ADMIN_CHAT_ID not set, order notifications are disabled")
	}

	machine := bot.NewMachine(store, sessions, notifier,
		bot.WithWebAppURL(cfg.WebAppURL),
		bot.WithLocation(loc),
	)
	tgBot := telegram.New(api, machine, telegram.Options{})
	app := server.New(cfg.Addr(), store, sessions)

	// Step 5: run everything until a signal arrives or a component fails
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runAll(ctx, app.Run, tgBot.Run, watcher(cfg, store))
	machine.Wait()
	return err
}

func watcher(cfg *config.Config, store *catalog.Store) func(context.Context) error {
	if !cfg.WatchCatalog {
		return nil
	}
	return func(ctx context.Context) error {
		return store.Watch(ctx, catalog.DefaultDebounce)
	}
}

// runAll starts each non-nil task and cancels the rest as soon as one fails.
func runAll(ctx context.Context, tasks ...func(context.Context) error) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for _, task := range tasks {
		if task == nil {
			continue
		}
		p.Go(task)
	}

	err := p.Wait()
	if err != nil {
		logger.LogError("Shutting down after failure: %v", err)
		return err
	}
	logger.LogInfo("👋 Bot stopped")
	return nil
}
