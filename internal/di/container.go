package di

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	broadcastService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/broadcast/service"
	channelRepo "github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/repository"
	channelService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/service"
	entitlementRepo "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/repository"
	entitlementService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/service"
	forwardService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/forward/service"
	membershipService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/membership/service"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	noticeRepo "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/repository"
	noticeService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/service"
	userRepo "github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/repository"
	userService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/service"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/config"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/database"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/scheduler"
	httpServer "github.com/reshetovitsme/tagless-channel-bot/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/tagless-channel-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"gorm.io/gorm"
)

// ChannelStore persists channels and their ownership links.
type ChannelStore interface {
	channelRepo.Repository
	channelRepo.OwnershipRepository
}

// Records lists every gorm model the relational backends migrate.
func Records() []any {
	return lo.Flatten([][]any{
		userRepo.Records(),
		channelRepo.Records(),
		entitlementRepo.Records(),
	})
}

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Only resolved for the sqlite and postgres drivers.
	do.Provide(injector, func(i do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, Records()...); err != nil {
			return nil, err
		}
		slog.Info("Database ready", "driver", cfg.StorageDriver)
		return db, nil
	})

	registerRepositories(injector)
	registerServices(injector)
	registerTransport(injector)

	return injector, nil
}

func registerRepositories(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (userRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.StorageDriver != config.StorageDriverFile {
			return userRepo.NewGormStorage(do.MustInvoke[*gorm.DB](i)), nil
		}
		repo, err := userRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize user repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (ChannelStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.StorageDriver != config.StorageDriverFile {
			return channelRepo.NewGormStorage(do.MustInvoke[*gorm.DB](i)), nil
		}
		repo, err := channelRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize channel repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (entitlementRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.StorageDriver != config.StorageDriverFile {
			return entitlementRepo.NewGormStorage(do.MustInvoke[*gorm.DB](i)), nil
		}
		repo, err := entitlementRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize entitlement repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (noticeRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return noticeRepo.NewMemoryStore(cfg.NoticeBuffer), nil
	})
}

func registerServices(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*noticeService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[noticeRepo.Repository](i)
		b := do.MustInvoke[*bot.Bot](i)
		return noticeService.New(repo, b, cfg.LogChannelID), nil
	})

	do.Provide(injector, func(i do.Injector) (noticeDomain.Notifier, error) {
		return do.MustInvoke[*noticeService.Service](i), nil
	})

	do.Provide(injector, func(i do.Injector) (*userService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[userRepo.Repository](i)
		return userService.New(repo, cfg.AdminID), nil
	})

	do.Provide(injector, func(i do.Injector) (*entitlementService.Service, error) {
		repo := do.MustInvoke[entitlementRepo.Repository](i)
		notifier := do.MustInvoke[noticeDomain.Notifier](i)
		return entitlementService.New(repo, notifier), nil
	})

	do.Provide(injector, func(i do.Injector) (*channelService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[ChannelStore](i)
		b := do.MustInvoke[*bot.Bot](i)
		entitlements := do.MustInvoke[*entitlementService.Service](i)
		notifier := do.MustInvoke[noticeDomain.Notifier](i)
		return channelService.New(store, store, b, entitlements, notifier, cfg.BotID(), cfg.FreeChannelLimit), nil
	})

	do.Provide(injector, func(i do.Injector) (*membershipService.Gate, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b := do.MustInvoke[*bot.Bot](i)
		return membershipService.New(b, cfg.ChannelID, cfg.JoinURL()), nil
	})

	do.Provide(injector, func(i do.Injector) (*forwardService.Replacer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b := do.MustInvoke[*bot.Bot](i)
		channels := do.MustInvoke[*channelService.Service](i)
		entitlements := do.MustInvoke[*entitlementService.Service](i)
		notifier := do.MustInvoke[noticeDomain.Notifier](i)
		return forwardService.New(b, channels, entitlements, notifier, forwardService.Options{
			BotID:         cfg.BotID(),
			PremiumExempt: cfg.PremiumExempt,
			WarnCooldown:  cfg.WarnCooldown,
		}), nil
	})

	do.Provide(injector, func(i do.Injector) (*broadcastService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b := do.MustInvoke[*bot.Bot](i)
		users := do.MustInvoke[*userService.Service](i)
		channels := do.MustInvoke[*channelService.Service](i)
		entitlements := do.MustInvoke[*entitlementService.Service](i)
		notifier := do.MustInvoke[noticeDomain.Notifier](i)
		return broadcastService.New(b, users, channels, entitlements, notifier, cfg.BroadcastRate), nil
	})

	do.Provide(injector, func(i do.Injector) (*entitlementService.Reminder, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b := do.MustInvoke[*bot.Bot](i)
		entitlements := do.MustInvoke[*entitlementService.Service](i)
		notifier := do.MustInvoke[noticeDomain.Notifier](i)
		return entitlementService.NewReminder(entitlements, b, notifier, cfg.ExpiryReminderDays, cfg.AdminUsername), nil
	})

	do.Provide(injector, func(i do.Injector) (*scheduler.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		reminder := do.MustInvoke[*entitlementService.Reminder](i)

		s := scheduler.New(time.UTC, 5*time.Minute)
		if _, err := s.Schedule("expiry_reminder", cfg.ExpiryCheckSpec, reminder.Run); err != nil {
			return nil, err
		}
		return s, nil
	})
}

func registerTransport(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Router, error) {
		return telegramHandler.NewRouter(), nil
	})

	// The bot only needs the router; handlers are registered on it afterwards.
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		router := do.MustInvoke[*telegramHandler.Router](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(router.Dispatch),
			bot.WithWorkers(cfg.Workers),
			bot.WithServerURL(cfg.TelegramAPIURL),
			bot.WithHTTPClient(time.Minute, &http.Client{Timeout: 2 * time.Minute}),
			bot.WithErrorsHandler(func(err error) {
				slog.Error("Telegram bot error", "error", err)
			}),
			bot.WithAllowedUpdates(telegramHandler.AllowedUpdates),
		}
		if cfg.WebhookSecret != "" {
			opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
		}

		b, err := bot.New(cfg.BotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		return b, nil
	})

	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b := do.MustInvoke[*bot.Bot](i)
		router := do.MustInvoke[*telegramHandler.Router](i)

		h := telegramHandler.New(cfg, b, telegramHandler.Services{
			Users:        do.MustInvoke[*userService.Service](i),
			Channels:     do.MustInvoke[*channelService.Service](i),
			Entitlements: do.MustInvoke[*entitlementService.Service](i),
			Gate:         do.MustInvoke[*membershipService.Gate](i),
			Replacer:     do.MustInvoke[*forwardService.Replacer](i),
			Broadcasts:   do.MustInvoke[*broadcastService.Service](i),
			Notices:      do.MustInvoke[noticeDomain.Notifier](i),
		})
		h.Register(router)
		return h, nil
	})

	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		notices := do.MustInvoke[*noticeService.Service](i)

		var webhook http.Handler
		if cfg.UseWebhook() {
			webhook = do.MustInvoke[*bot.Bot](i).WebhookHandler()
		}

		server := httpServer.New(cfg, notices, webhook)
		server.SetLogger(slog.Default())
		return server, nil
	})
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error

	if s, err := do.Invoke[*scheduler.Scheduler](injector); err == nil && s != nil {
		s.Stop()
	}

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, oops.With("context", "http server shutdown").Wrap(err))
		}
	}

	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		if _, err := b.Close(ctx); err != nil {
			slog.Warn("Failed to close bot session", "error", err)
		}
	}

	if cfg, err := do.Invoke[*config.Config](injector); err == nil && cfg.StorageDriver != config.StorageDriverFile {
		if db, err := do.Invoke[*gorm.DB](injector); err == nil && db != nil {
			if err := database.Close(db); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}
