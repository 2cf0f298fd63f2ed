package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Game     GameConfig     `mapstructure:"game" validate:"required"`
	Images   ImagesConfig   `mapstructure:"images" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel       string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// RedisConfig configures the optional leaderboard cache. An empty URL
// disables caching.
type RedisConfig struct {
	URL            string        `mapstructure:"url" validate:"omitempty,url"`
	LeaderboardTTL time.Duration `mapstructure:"leaderboard_ttl" validate:"gte=0"`
}

// Eligibility policies.
const (
	PolicySequential = "sequential"
	PolicyOpen       = "open"
)

// User resolution strategies.
const (
	ResolutionStrict    = "strict"
	ResolutionProvision = "provision"
)

// GameConfig holds the rules of the game engine.
type GameConfig struct {
	TrainingLimit      int           `mapstructure:"training_limit" validate:"gt=0"`
	TrainingChallenges int           `mapstructure:"training_challenges" validate:"gt=0"`
	TestChallenges     int           `mapstructure:"test_challenges" validate:"gt=0"`
	MinDwell           time.Duration `mapstructure:"min_dwell" validate:"gte=0"`
	EvaluationCoreIDs  []int64       `mapstructure:"evaluation_core_ids" validate:"required,min=1,dive,gt=0"`
	EligibilityPolicy  string        `mapstructure:"eligibility_policy" validate:"required,oneof=sequential open"`
	UserResolution     string        `mapstructure:"user_resolution" validate:"required,oneof=strict provision"`
}

// ImagesConfig locates core images on disk.
type ImagesConfig struct {
	BasePath    string        `mapstructure:"base_path" validate:"required"`
	CacheMaxAge time.Duration `mapstructure:"cache_max_age" validate:"gte=0"`
}

// DefaultEvaluationCoreIDs is the held-out set of cores reserved for the
// pretest and posttest.
var DefaultEvaluationCoreIDs = []int64{
	345, 20125, 23246, 6134, 9192, 4376, 1162, 22787, 9809, 19324,
	2907, 14342, 14795, 438, 12330, 10186, 8781, 12076, 19052, 6547,
	5077, 8050, 9934, 23774, 10636, 13660, 20394, 18529, 19444, 4625,
	19430, 23853, 210, 16056, 5231, 940, 8939, 22438, 12988, 15627,
	3138, 18219, 18021, 19185, 22208, 22696, 15629, 9052, 23770, 18238,
}
