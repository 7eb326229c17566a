package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	BotToken       string `koanf:"bot_token" validate:"required"`
	TelegramAPIURL string `koanf:"telegram_api_url" validate:"required,url"`

	// Mandatory channel users must join before using the bot.
	ChannelID     int64  `koanf:"channel_id" validate:"required"`
	ChannelURL    string `koanf:"channel_url"`
	AdminID       int64  `koanf:"admin_id" validate:"required"`
	AdminUsername string `koanf:"admin_username"`
	LogChannelID  int64  `koanf:"log_channel_id"`

	StorageDriver StorageDriver `koanf:"storage_driver"`
	StoragePath   string        `koanf:"storage_path" validate:"required"`
	DatabaseDSN   string        `koanf:"database_dsn"`

	Port          string `koanf:"port" validate:"required,numeric"`
	WebhookURL    string `koanf:"webhook_url" validate:"omitempty,url"`
	WebhookSecret string `koanf:"webhook_secret"`
	Workers       int    `koanf:"workers" validate:"min=1"`

	FreeChannelLimit int           `koanf:"free_channel_limit" validate:"min=1"`
	PremiumExempt    bool          `koanf:"premium_exempt"`
	BroadcastRate    float64       `koanf:"broadcast_rate" validate:"gt=0"`
	WarnCooldown     time.Duration `koanf:"warn_cooldown"`

	ExpiryCheckSpec    string `koanf:"expiry_check_spec" validate:"required"`
	ExpiryReminderDays int    `koanf:"expiry_reminder_days" validate:"min=0"`

	NoticeBuffer int    `koanf:"notice_buffer" validate:"min=1"`
	OpsFeedToken string `koanf:"ops_feed_token"`
	PaymentInfo  string `koanf:"payment_info"`

	AppEnv AppEnv `koanf:"app_env"`
}

var defaults = map[string]any{
	"telegram_api_url":     "https://api.telegram.org",
	"storage_driver":       "file",
	"storage_path":         "./data",
	"port":                 "8080",
	"workers":              8,
	"free_channel_limit":   2,
	"premium_exempt":       true,
	"broadcast_rate":       25.0,
	"warn_cooldown":        "1h",
	"expiry_check_spec":    "@every 12h",
	"expiry_reminder_days": 3,
	"notice_buffer":        200,
	"app_env":              "production",
}

func Load() (*Config, error) {
	// A missing .env is fine; variables may come from the real environment.
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return nil, oops.With("context", "loading .env").Wrap(err)
	}

	k := koanf.New(".")

	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values: BOT_TOKEN -> bot_token
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) || k.String(key) == "" {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if env, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = env
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	driver, err := ParseStorageDriver(k.String("storage_driver"))
	if err != nil {
		return nil, oops.With("storage_driver", k.String("storage_driver")).Wrap(stderrors.Join(errors.ErrInvalidConfig, err))
	}
	cfg.StorageDriver = driver

	if cfg.BotToken == "" {
		return nil, errors.ErrMissingBotToken
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return oops.With("context", "validating config").Wrap(stderrors.Join(errors.ErrInvalidConfig, err))
	}
	if c.StorageDriver == StorageDriverPostgres && c.DatabaseDSN == "" {
		return oops.With("storage_driver", c.StorageDriver).Wrap(
			stderrors.Join(errors.ErrInvalidConfig, stderrors.New("database_dsn is required for postgres")))
	}
	if c.BotID() == 0 {
		return oops.Wrap(stderrors.Join(errors.ErrInvalidConfig, stderrors.New("bot_token has no numeric bot id prefix")))
	}
	return nil
}

// BotID extracts the bot's own user id from the "<id>:<secret>" token.
func (c *Config) BotID() int64 {
	prefix, _, ok := strings.Cut(c.BotToken, ":")
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// JoinURL is the link shown on the join prompt.
func (c *Config) JoinURL() string {
	if c.ChannelURL != "" {
		return c.ChannelURL
	}
	// Private channels are addressed by their internal id without the -100 prefix.
	return fmt.Sprintf("https://t.me/c/%s", strings.TrimPrefix(strconv.FormatInt(c.ChannelID, 10), "-100"))
}

// LogLevel is debug for local and development environments.
func (c *Config) LogLevel() slog.Level {
	switch c.AppEnv {
	case AppEnvLocal, AppEnvDevelopment:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// UseWebhook reports whether updates arrive through the HTTP webhook instead of long polling.
func (c *Config) UseWebhook() bool {
	return c.WebhookURL != ""
}

// WebhookPath is the path part of webhook_url, where Telegram posts updates.
// A URL without a path is served at the root.
func (c *Config) WebhookPath() string {
	u, err := url.Parse(c.WebhookURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
