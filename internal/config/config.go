// Package config loads agitatord's configuration from built-in defaults, a
// config file, and the environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for agitatord.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Motor     MotorConfig     `mapstructure:"motor"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	RunLog    RunLogConfig    `mapstructure:"runlog"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig contains HTTP/WebSocket API settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AuthConfig contains the JWT signing secret and token lifetime for the
// control API.
type AuthConfig struct {
	Secret     string `mapstructure:"secret"`
	TokenTTLMin int   `mapstructure:"token_ttl_min"`
}

// MotorConfig selects and configures the motor driver.
type MotorConfig struct {
	// Backend is "gpio" or "mock".
	Backend             string `mapstructure:"backend"`
	ClockwisePin        string `mapstructure:"clockwise_pin"`
	CounterClockwisePin string `mapstructure:"counter_clockwise_pin"`
	DeadTimeMillis      int    `mapstructure:"dead_time_millis"`
}

// SchedulerConfig controls the tick rate driving the interpreter.
type SchedulerConfig struct {
	TickIntervalSeconds int `mapstructure:"tick_interval_seconds"`
}

// RunLogConfig configures the SQLite audit trail.
type RunLogConfig struct {
	Path string `mapstructure:"path"`
}

// MQTTConfig configures telemetry publishing. Broker left empty disables
// telemetry entirely.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	DeviceID string `mapstructure:"device_id"`
}

// LoggerConfig contains logging settings.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	LogDir     string `mapstructure:"log_dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads configuration from configPath (if non-empty), falling back to
// ./configs, the working directory, and $HOME/.agitator, then layers
// AGITATOR_-prefixed environment variables on top.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("AGITATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8787)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl_min", 60)

	v.SetDefault("motor.backend", "mock")
	v.SetDefault("motor.clockwise_pin", "GPIO6")
	v.SetDefault("motor.counter_clockwise_pin", "GPIO13")
	v.SetDefault("motor.dead_time_millis", 1)

	v.SetDefault("scheduler.tick_interval_seconds", 1)

	v.SetDefault("runlog.path", "./data/agitator.db")

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "agitatord")
	v.SetDefault("mqtt.device_id", "agitator-01")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.log_dir", "./logs")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)
	v.SetDefault("logger.compress", true)
}

func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".agitator")
}
