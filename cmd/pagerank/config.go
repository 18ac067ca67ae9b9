package main

import (
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

const envPrefix = "PAGERANK"

// Config holds the runtime settings of the pagerank command. Values are
// populated from PAGERANK_* environment variables (optionally loaded from a
// .env file).
type Config struct {
	DataDir    string `mapstructure:"data_dir"`
	Workers    int    `mapstructure:"workers"`
	Partitions int    `mapstructure:"partitions"`
	LogLevel   string `mapstructure:"log_level"`
	Cumulative bool   `mapstructure:"cumulative"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("data_dir", "../dataset/batch")
	v.SetDefault("workers", 0)
	v.SetDefault("partitions", 0)
	v.SetDefault("log_level", "error")
	v.SetDefault("cumulative", false)
	return v
}

func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, xerrors.Errorf("load config: %w", err)
	}
	return cfg, nil
}
