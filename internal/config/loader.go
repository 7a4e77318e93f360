package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load, for
// example SQLREPO_TARGET or SQLREPO_CACHE_SIZE.
const EnvPrefix = "SQLREPO"

// Load reads the configuration with the following priority (highest
// to lowest):
//  1. Flags bound to v
//  2. Environment variables (SQLREPO_*)
//  3. The config file set on v, or .sqlrepo.yaml in dir
//  4. Default values
func Load(v *viper.Viper, dir string) (*Config, error) {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file leaves defaults, environment and flags.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv sees it.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("schema", d.Schema)
	v.SetDefault("package", d.Package)
	v.SetDefault("target", d.Target)
	v.SetDefault("database", d.Database)
	v.SetDefault("header", d.Header)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("include", d.Include)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("verbose", d.Verbose)
}
