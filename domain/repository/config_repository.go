package repository

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const DefaultBaseURL = "http://localhost:3001"

func NewConfigRepository(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 設定ファイルは任意
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config error: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config error: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	valid := validator.New()
	if err := valid.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.retry_count", 1)
	v.SetDefault("api.retry_interval", time.Second)
	v.SetDefault("session.login_path", "/auth/login")
	v.SetDefault("session.logout_path", "/auth/logout")
	v.SetDefault("session.cookie_name", "connect.sid")
	v.SetDefault("session.cookie", "")
	v.SetDefault("session.ttl", time.Duration(0))
	v.SetDefault("ui.dark_mode", false)
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	UI      UIConfig      `mapstructure:"ui"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	// List取得のみに適用する試行回数。1なら再試行しない
	RetryCount    uint          `mapstructure:"retry_count" validate:"gte=1"`
	RetryInterval time.Duration `mapstructure:"retry_interval" validate:"gte=0"`
}

type SessionConfig struct {
	LoginPath  string        `mapstructure:"login_path" validate:"required,startswith=/"`
	LogoutPath string        `mapstructure:"logout_path" validate:"required,startswith=/"`
	CookieName string        `mapstructure:"cookie_name" validate:"required"`
	Cookie     string        `mapstructure:"cookie"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type UIConfig struct {
	DarkMode bool `mapstructure:"dark_mode"`
}
