package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "123456:ABC-DEF")
	t.Setenv("CHANNEL_ID", "-1001234567890")
	t.Setenv("ADMIN_ID", "42")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(123456), cfg.BotID())
	assert.Equal(t, int64(-1001234567890), cfg.ChannelID)
	assert.Equal(t, int64(42), cfg.AdminID)
	assert.Equal(t, StorageDriverFile, cfg.StorageDriver)
	assert.Equal(t, 2, cfg.FreeChannelLimit)
	assert.True(t, cfg.PremiumExempt)
	assert.Equal(t, time.Hour, cfg.WarnCooldown)
	assert.Equal(t, AppEnvProduction, cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
	assert.False(t, cfg.UseWebhook())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FREE_CHANNEL_LIMIT", "1")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("APP_ENV", "development")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com/webhook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.FreeChannelLimit)
	assert.Equal(t, StorageDriverSqlite, cfg.StorageDriver)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.True(t, cfg.UseWebhook())
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequiredEnv(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	yaml := "free_channel_limit: 5\npayment_info: \"UPI: shop@bank\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.FreeChannelLimit)
	assert.Equal(t, "UPI: shop@bank", cfg.PaymentInfo)
}

func TestLoad_MissingToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	assert.ErrorIs(t, err, errors.ErrMissingBotToken)
}

func TestLoad_InvalidStorageDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongodb")

	_, err := Load()
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.True(t, stderrors.Is(err, ErrInvalidStorageDriver))
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestBotID(t *testing.T) {
	tests := []struct {
		token string
		want  int64
	}{
		{"123456:ABC", 123456},
		{"nonsense", 0},
		{"abc:def", 0},
	}
	for _, tt := range tests {
		cfg := &Config{BotToken: tt.token}
		assert.Equal(t, tt.want, cfg.BotID(), tt.token)
	}
}

func TestJoinURL(t *testing.T) {
	cfg := &Config{ChannelID: -1001234567890}
	assert.Equal(t, "https://t.me/c/1234567890", cfg.JoinURL())

	cfg.ChannelURL = "https://t.me/mychannel"
	assert.Equal(t, "https://t.me/mychannel", cfg.JoinURL())
}

func TestWebhookPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://bot.example.com", "/"},
		{"https://bot.example.com/", "/"},
		{"https://bot.example.com/telegram/hook", "/telegram/hook"},
	}
	for _, tt := range tests {
		cfg := &Config{WebhookURL: tt.url}
		assert.Equal(t, tt.want, cfg.WebhookPath(), tt.url)
	}
}
