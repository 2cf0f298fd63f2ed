package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "BIOGAMES"

// DefaultTrainingLimit is the number of training games a user must start
// before the posttest opens.
const DefaultTrainingLimit = 400

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return load(viper.New(), true)
}

func load(v *viper.Viper, readFile bool) (*Config, error) {
	setDefaults(v)

	if readFile {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout", "30s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.leaderboard_ttl", "30s")

	v.SetDefault("game.training_limit", DefaultTrainingLimit)
	v.SetDefault("game.training_challenges", 20)
	v.SetDefault("game.test_challenges", 50)
	v.SetDefault("game.min_dwell", "5s")
	v.SetDefault("game.evaluation_core_ids", DefaultEvaluationCoreIDs)
	v.SetDefault("game.eligibility_policy", PolicySequential)
	v.SetDefault("game.user_resolution", ResolutionStrict)

	v.SetDefault("images.base_path", "./images")
	v.SetDefault("images.cache_max_age", "24h")
}
