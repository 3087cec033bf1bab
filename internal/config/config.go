package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode      string `mapstructure:"mode"`
	Port      int    `mapstructure:"port"`
	Secret    string `mapstructure:"secret"`
	ReadLimit int64  `mapstructure:"read_limit"`

	// SendBuffer is per-connection; a full buffer drops the frame.
	SendBuffer int `mapstructure:"send_buffer"`

	// HeartbeatInterval bounds how long a dead connection stays
	// counted as present: at most two intervals.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	RoomIDLength   int `mapstructure:"room_id_length"`
	RoomIDAttempts int `mapstructure:"room_id_attempts"`

	CreateLimit  int           `mapstructure:"create_limit"`
	CreateWindow time.Duration `mapstructure:"create_window"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("heartbeat_interval", "30s")
	v.SetDefault("room_id_length", 6)
	v.SetDefault("room_id_attempts", 5)
	v.SetDefault("create_limit", 5)
	v.SetDefault("create_window", "1m")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
