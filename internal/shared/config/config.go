package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// EnvPrefix is stripped from environment variables before they are matched against config keys
const EnvPrefix = "RELAY_"

type Config struct {
	TelegramBotToken string `koanf:"telegram_bot_token"`
	TelegramAppID    int    `koanf:"telegram_app_id"`
	TelegramAppHash  string `koanf:"telegram_app_hash"`
	TelegramPhone    string `koanf:"telegram_phone"`

	SessionPath  string `koanf:"session_path"`
	DatabasePath string `koanf:"database_path"`
	HTTPPort     string `koanf:"http_port"`

	CheckInterval   time.Duration `koanf:"check_interval"`
	ErrorCooldown   time.Duration `koanf:"error_cooldown"`
	ReconnectEvery  int           `koanf:"reconnect_every"`
	SubscribeDelay  time.Duration `koanf:"subscribe_delay"`
	PostDelay       time.Duration `koanf:"post_delay"`
	PageSize        int           `koanf:"page_size"`
	PreviewLimit    int           `koanf:"preview_limit"`
	FloodMaxRetries int           `koanf:"flood_max_retries"`

	AllowedUsers []int64       `koanf:"-"`
	AppEnv       domain.AppEnv `koanf:"-"`
	LogLevel     string        `koanf:"log_level"`
}

// MinSubscribeDelay is the floor for pacing join attempts
const MinSubscribeDelay = 3 * time.Second

var defaults = map[string]any{
	"session_path":      "./data/session.json",
	"database_path":     "./data/relay.db",
	"http_port":         "8080",
	"check_interval":    "60s",
	"error_cooldown":    "60s",
	"reconnect_every":   10,
	"subscribe_delay":   "3s",
	"post_delay":        "1s",
	"page_size":         5,
	"preview_limit":     1000,
	"flood_max_retries": 1,
	"app_env":           "production",
	"log_level":         "info",
}

// Load reads the first config file found in the working directory, then RELAY_* environment variables
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory to look for config files in
func LoadFrom(dir string) (*Config, error) {
	k := koanf.New(".")

	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
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

		if err := k.Load(file.Provider(filepath.Join(dir, configFile)), parser); err != nil {
			return nil, oops.In("config").With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, oops.In("config").With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, oops.In("config").With("key", key).Wrap(err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.In("config").With("context", "unmarshaling config").Wrap(err)
	}

	// allowed_users is a comma-separated string in env and an array in config files
	if allowedUsers := k.Get("allowed_users"); allowedUsers != nil {
		switch v := allowedUsers.(type) {
		case string:
			cfg.AllowedUsers = ParseAllowedUsers(v)
		case []interface{}:
			cfg.AllowedUsers = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				case string:
					ids := ParseAllowedUsers(val)
					return lo.FirstOr(ids, 0), len(ids) == 1
				default:
					return 0, false
				}
			})
		}
	}

	if appEnv, err := domain.ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = domain.AppEnvProduction
	}

	if cfg.SubscribeDelay < MinSubscribeDelay {
		cfg.SubscribeDelay = MinSubscribeDelay
	}
	if cfg.ReconnectEvery < 1 {
		cfg.ReconnectEvery = 1
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 1
	}

	if cfg.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}

	return &cfg, nil
}

// ValidateMonitor checks the user-session credentials the channel monitor needs
func (c *Config) ValidateMonitor() error {
	if c.TelegramAppID == 0 || c.TelegramAppHash == "" || c.TelegramPhone == "" {
		return errors.ErrMissingAppCredentials
	}
	return nil
}

// ParseAllowedUsers parses comma-separated user IDs string into []int64
func ParseAllowedUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}
