// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string
	// DatabaseURL is a Postgres DSN. Empty disables match history.
	DatabaseURL string
	// Debug switches the logger to development output.
	Debug bool
}

// Load reads BATTLEBOATS_* variables. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        ":8080",
		DatabaseURL: os.Getenv("BATTLEBOATS_DATABASE_URL"),
		Debug:       os.Getenv("BATTLEBOATS_DEBUG") == "true",
	}
	if addr := os.Getenv("BATTLEBOATS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	return cfg
}
