package apiclient

import "time"

// Config provides environment-based configuration for the portal API client.
type Config struct {
	BaseURL     string        `env:"PORTAL_BASE_URL" envDefault:"http://localhost:8080/api"`
	CallTimeout time.Duration `env:"PORTAL_CALL_TIMEOUT" envDefault:"45s"`
	UserAgent   string        `env:"PORTAL_USER_AGENT" envDefault:"ziondocs-client/1.0"`
}
