package session

import "time"

// Config holds session store configuration. Each background behavior is
// independently togglable, mirroring the deployment knobs of the portal.
type Config struct {
	// RevalidateOnFocus enables throttled revalidation on focus/visibility
	// notifications from the host.
	RevalidateOnFocus bool          `env:"AUTH_REVALIDATE_ON_FOCUS" envDefault:"true"`
	FocusThrottle     time.Duration `env:"AUTH_FOCUS_THROTTLE" envDefault:"5m"`

	// BackgroundRefresh enables the periodic refresh-then-revalidate loop
	// while authenticated and visible.
	BackgroundRefresh         bool          `env:"AUTH_BACKGROUND_REFRESH" envDefault:"true"`
	BackgroundRefreshInterval time.Duration `env:"AUTH_BACKGROUND_REFRESH_INTERVAL" envDefault:"10m"`

	// SessionAgeCheckInterval drives the logged-since watchdog; sessions older
	// than MaxSessionAge trigger a refresh attempt, and a failed refresh
	// forces logout.
	SessionAgeCheckInterval time.Duration `env:"AUTH_SESSION_AGE_CHECK_INTERVAL" envDefault:"1m"`
	MaxSessionAge           time.Duration `env:"AUTH_MAX_SESSION_AGE" envDefault:"720h"`

	// SpecialClientID is the sentinel company id whose presence as the first
	// association flips the special-client flag used by the catalog.
	SpecialClientID string `env:"AUTH_SPECIAL_CLIENT_ID" envDefault:"5849"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		RevalidateOnFocus:         true,
		FocusThrottle:             5 * time.Minute,
		BackgroundRefresh:         true,
		BackgroundRefreshInterval: 10 * time.Minute,
		SessionAgeCheckInterval:   time.Minute,
		MaxSessionAge:             30 * 24 * time.Hour,
		SpecialClientID:           "5849",
	}
}
