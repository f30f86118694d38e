// Package config loads server configuration from a YAML file with
// environment overrides and sane defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cardbattle/war-server-go/internal/battle"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
	// GracePeriod bounds how long a room may hold fewer than two
	// participants before it is reaped.
	GracePeriod time.Duration `mapstructure:"grace_period"`
	// ReadLimit caps the size of inbound client messages in bytes.
	ReadLimit int64 `mapstructure:"read_limit"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GameConfig holds the ruleset knobs.
type GameConfig struct {
	WarStake     int    `mapstructure:"war_stake"`
	WinThreshold int    `mapstructure:"win_threshold"`
	HandSize     int    `mapstructure:"hand_size"`
	TurnFormat   string `mapstructure:"turn_format"`
}

// Rules converts the configured knobs into the engine ruleset.
func (g GameConfig) Rules() battle.Rules {
	return battle.Rules{
		WarStake:     g.WarStake,
		WinThreshold: g.WinThreshold,
		HandSize:     g.HandSize,
		Format:       battle.TurnFormat(g.TurnFormat),
	}
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given path, falling back to defaults
// when the file is absent. Environment variables prefixed with WAR_ (e.g.
// WAR_SERVER_ADDRESS) override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.grace_period", 5*time.Minute)
	v.SetDefault("server.read_limit", 4096)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	defaults := battle.DefaultRules()
	v.SetDefault("game.war_stake", defaults.WarStake)
	v.SetDefault("game.win_threshold", defaults.WinThreshold)
	v.SetDefault("game.hand_size", defaults.HandSize)
	v.SetDefault("game.turn_format", string(defaults.Format))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix("WAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := c.Game.Rules().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if c.Server.GracePeriod <= 0 {
		return fmt.Errorf("server.grace_period must be positive, got %s", c.Server.GracePeriod)
	}
	return nil
}
