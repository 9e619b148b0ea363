package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/bikeshare-cli/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// DataDirs are searched after the built-in candidate locations.
	DataDirs []string `mapstructure:"data_dirs" yaml:"data_dirs"`
	// PageSize is the number of raw rows shown per page.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
	// FullYear lets month filters accept July through December.
	FullYear bool   `mapstructure:"full_year" yaml:"full_year"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// MetricsFile receives run metrics in Prometheus text format on exit.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// Default returns the configuration used when nothing is set.
func Default() *Global {
	return &Global{
		DataDirs: []string{},
		PageSize: 5,
		LogLevel: "warn",
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bikeshare"), nil
}

// Save writes the given configuration to cfgFile. If cfgFile is empty,
// it writes to ~/.bikeshare/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func Marshal(c *Global) ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BIKESHARE")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("data_dirs", d.DataDirs)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("full_year", d.FullYear)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics_file", d.MetricsFile)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// A named file that does not exist yet is created by Save.
		if _, err := os.Stat(cfgFile); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if !utils.IsNotExist(err) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	return &c, nil
}
