// Package config resolves runtime settings from flags, environment and an
// optional surveylogic.yaml, in that order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SURVEYLOGIC_STORE.
const EnvPrefix = "SURVEYLOGIC"

// Store backends accepted by the "store" key.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	Addr       string `mapstructure:"addr"`
	SurveysDir string `mapstructure:"surveys-dir"`
	Store      string `mapstructure:"store"`
	DataDir    string `mapstructure:"data-dir"`

	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPassword string `mapstructure:"redis-password"`
	RedisDB       int    `mapstructure:"redis-db"`

	ProgressTTL   time.Duration `mapstructure:"progress-ttl"`
	AutosaveDelay time.Duration `mapstructure:"autosave-delay"`

	// EncryptionKey is a base64 AES-256 key; when set, stored progress is encrypted.
	EncryptionKey string `mapstructure:"encryption-key"`
	// RedactAnswers lists question id patterns whose answers are masked in stored
	// progress and sealed with EncryptionKey. Requires EncryptionKey.
	RedactAnswers []string `mapstructure:"redact-answers"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

// New returns a viper instance with defaults, env binding and config file lookup set up.
// Callers bind their cobra flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("surveys-dir", "surveys")
	v.SetDefault("store", StoreMemory)
	v.SetDefault("data-dir", ".surveylogic")
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("redis-password", "")
	v.SetDefault("redis-db", 0)
	v.SetDefault("progress-ttl", 7*24*time.Hour)
	v.SetDefault("autosave-delay", time.Second)
	v.SetDefault("encryption-key", "")
	v.SetDefault("redact-answers", []string{})
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("surveylogic")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return v
}

// Load reads the optional config file and decodes the settings.
// A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", c.Store)
	}
	if c.ProgressTTL < 0 {
		return fmt.Errorf("progress-ttl must not be negative")
	}
	if c.AutosaveDelay < 0 {
		return fmt.Errorf("autosave-delay must not be negative")
	}
	key, err := c.EncryptionKeyBytes()
	if err != nil {
		return err
	}
	if len(c.RedactAnswers) > 0 && key == nil {
		return fmt.Errorf("redact-answers requires encryption-key")
	}
	return nil
}

// EncryptionKeyBytes decodes EncryptionKey. It returns nil when no key is configured.
func (c Config) EncryptionKeyBytes() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption-key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption-key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
