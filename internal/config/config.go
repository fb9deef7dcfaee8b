package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	Secret         string        `mapstructure:"secret"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AllowGuests    bool          `mapstructure:"allow_guests"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	CursorInterval time.Duration `mapstructure:"cursor_interval"`
	GraceWindow    time.Duration `mapstructure:"grace_window"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	TypingTTL      time.Duration `mapstructure:"typing_ttl"`
	ChatBurst      int           `mapstructure:"chat_burst"`
	ChatWindow     time.Duration `mapstructure:"chat_window"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	StunServers    []string      `mapstructure:"stun_servers"`
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
	v.SetDefault("allow_guests", true)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("cursor_interval", "16ms")
	v.SetDefault("grace_window", "45s")
	v.SetDefault("idle_timeout", "30m")
	v.SetDefault("typing_ttl", "4s")
	v.SetDefault("chat_burst", 10)
	v.SetDefault("chat_window", "10s")
	v.SetDefault("sweep_interval", "1m")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Guests: %t\n", cfg.Mode, cfg.Port, cfg.AllowGuests)
	return &cfg, nil
}
