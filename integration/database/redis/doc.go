// Package redis provides Redis client initialization plus the Redis-backed
// implementations of the session flag store and the cross-process
// auth-changed signal.
//
// Connect validates the connection URL, retries transient connection
// failures with exponential backoff, and verifies connectivity with a ping
// before returning the client. Healthcheck returns a probe function suitable
// for readiness endpoints.
//
// Flags mirrors the tab-scoped session flags into Redis so they survive a
// process restart, and Signal fans the "auth changed" announcement out to
// every connected process via Pub/Sub — the distributed counterpart of the
// in-memory implementations in core/session.
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  uint64        `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//		FlagTTL        time.Duration `env:"REDIS_FLAG_TTL" envDefault:"12h"`
//	}
//
// Both redis:// and rediss:// (TLS) URL schemes are supported.
package redis
