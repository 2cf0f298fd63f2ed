// Package config loads and validates the service configuration.
//
// Values come from built-in defaults, an optional config.yaml in the working
// directory, and environment variables prefixed with BIOGAMES_ (for example
// BIOGAMES_DATABASE_URL or BIOGAMES_GAME_TRAINING_LIMIT), in increasing order
// of precedence. The loaded Config is validated with struct tags and then
// injected into the components that need it; nothing reads it globally.
package config
