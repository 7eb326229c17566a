package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/tagless-channel-bot/internal/di"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/config"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/database"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/scheduler"
	httpServer "github.com/reshetovitsme/tagless-channel-bot/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/tagless-channel-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// logLevel is raised to debug once the config says so.
var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:          "tagless-bot",
	Short:        "Telegram bot that removes forward tags from channel posts",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot and the HTTP server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the relational storage schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command. level is the logger's level, adjusted after
// the configuration has been loaded.
func Execute(level *slog.LevelVar) {
	if level != nil {
		logLevel = level
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	injector, err := di.Setup()
	if err != nil {
		return oops.With("context", "failed to setup dependency injection").Wrap(err)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return err
	}
	logLevel.Set(cfg.LogLevel())

	// Resolving the handler registers its routes on the bot's router.
	if _, err := do.Invoke[*telegramHandler.Handler](injector); err != nil {
		return err
	}
	b := do.MustInvoke[*bot.Bot](injector)
	sched := do.MustInvoke[*scheduler.Scheduler](injector)
	server := do.MustInvoke[*httpServer.Server](injector)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- oops.With("context", "http server").Wrap(err)
		}
	}()

	sched.Start()
	slog.Info("Scheduler started", "jobs", sched.Entries())

	if cfg.UseWebhook() {
		if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
			URL:            cfg.WebhookURL,
			SecretToken:    cfg.WebhookSecret,
			AllowedUpdates: telegramHandler.AllowedUpdates,
		}); err != nil {
			return oops.With("webhook_url", cfg.WebhookURL, "context", "failed to set webhook").Wrap(err)
		}
		go b.StartWebhook(ctx)
	} else {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			slog.Warn("Failed to delete webhook before polling", "error", err)
		}
		go b.Start(ctx)
	}

	slog.Info("Application started",
		"port", cfg.Port,
		"webhook", cfg.UseWebhook(),
		"storage", cfg.StorageDriver,
		"free_channel_limit", cfg.FreeChannelLimit,
	)

	select {
	case <-ctx.Done():
		slog.Info("Shutting down...")
		return nil
	case err := <-errCh:
		return err
	}
}

func migrate() error {
	cfg, err := config.Load()
	if err != nil {
		return oops.With("context", "failed to load config").Wrap(err)
	}
	if cfg.StorageDriver == config.StorageDriverFile {
		fmt.Println("File storage has no schema; nothing to migrate.")
		return nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, di.Records()...); err != nil {
		return err
	}
	slog.Info("Migrations applied", "driver", cfg.StorageDriver)
	return nil
}
