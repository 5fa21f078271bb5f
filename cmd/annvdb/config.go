package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the CLI's ambient knobs: log format/level. Parsed with
// envconfig under the ANNVDB prefix.
type Config struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads a .env file if present (godotenv.Load reports a missing
// file as a not-exist error, which is ignored here), then overlays process
// environment variables prefixed ANNVDB_ onto the defaults above.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	var cfg Config
	if err := envconfig.Process("ANNVDB", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
