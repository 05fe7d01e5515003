// Package config loads command configuration from a config.yml file, a .env
// file and prefixed environment variables.
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("streamlist", &cfg, config.WithViper(v))
//
// Environment variables override file values using the service prefix and
// underscore-separated paths (e.g., STREAMLIST_LOGGING_LEVEL sets
// logging.level). Flags bound on the viper passed with WithViper override both.
package config
