package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type StorageConfig struct {
	// Driver selects the store backend: "json" or "sqlite".
	Driver   string `mapstructure:"driver"`
	FilePath string `mapstructure:"file_path"`
}

// LoadConfig reads the YAML config at path, overlaid with TABWAKE_*
// environment variables. A missing file falls back to defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.port", ":8099")
	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.file_path", "data/tabwake.json")

	v.SetEnvPrefix("TABWAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
