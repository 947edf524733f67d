package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
	"time"
)

// Config holds all fwctl configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Netsh    NetshConfig    `mapstructure:"netsh"`
	Firewall FirewallConfig `mapstructure:"firewall"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
	Path   string `mapstructure:"path"`   // directory for rotated log files
}

// NetshConfig controls how the management utility is invoked.
type NetshConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 waits forever
}

// FirewallConfig selects the firewall backend.
type FirewallConfig struct {
	Backend string `mapstructure:"backend"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fwctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fwctl")
	}

	v.SetEnvPrefix("FWCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.path", "")

	v.SetDefault("netsh.path", "netsh")
	v.SetDefault("netsh.timeout", time.Duration(0))

	v.SetDefault("firewall.backend", "netsh")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5000)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
