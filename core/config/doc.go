// Package config provides type-safe environment variable loading with caching.
// Each configuration type is loaded once and cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
//	type ClientConfig struct {
//		BaseURL string `env:"PORTAL_BASE_URL,required"`
//		Timeout int    `env:"PORTAL_TIMEOUT_SECONDS" envDefault:"45"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package config
