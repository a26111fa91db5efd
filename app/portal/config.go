package portal

import (
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/auth"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/retrieval"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/session"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/integration/database/redis"
)

// Config aggregates every component's configuration, all loadable from the
// environment in one call.
type Config struct {
	API       apiclient.Config
	Session   session.Config
	Auth      auth.Config
	Retrieval retrieval.Config
	Redis     redis.Config

	AppName  string `env:"APP_NAME" envDefault:"ziondocs-portal"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// UseRedis switches the session flag store and auth-changed signal from
	// the in-memory implementations to Redis-backed ones.
	UseRedis bool `env:"USE_REDIS" envDefault:"false"`
}
