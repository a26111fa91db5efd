// Package portal assembles the client components into one application: the
// HTTP client, the session store with its background behaviors, the auth
// flows, the catalog, and the discovery/retrieval pipeline.
package portal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/auth"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/catalog"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/config"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/discovery"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/notice"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/retrieval"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/session"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/integration/database/redis"
)

// App is the assembled portal client.
type App struct {
	config    Config
	logger    *slog.Logger
	client    *apiclient.Client
	flags     session.FlagStore
	signal    session.Signal
	notifier  notice.Notifier
	sessions  *session.Store
	auth      *auth.Service
	catalog   *catalog.Service
	retrieval *retrieval.Orchestrator
}

// AppOption overrides one assembled component.
type AppOption func(*App) error

// NewApp loads configuration from the environment and wires every component.
// Options replace individual pieces before the remaining defaults are built.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	app := &App{
		config:   cfg,
		notifier: notice.Discard,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: "json"})
	}

	if app.client == nil {
		c, err := apiclient.New(cfg.API, apiclient.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.client = c
	}

	if app.flags == nil || app.signal == nil {
		if cfg.UseRedis {
			rdb, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return nil, err
			}
			if app.flags == nil {
				app.flags = redis.NewFlags(rdb, cfg.Redis.FlagTTL,
					redis.WithFlagsLogger(app.logger),
					redis.WithKeyPrefix(cfg.AppName+":"),
				)
			}
			if app.signal == nil {
				app.signal = redis.NewSignal(rdb, cfg.AppName+":auth:changed",
					redis.WithSignalLogger(app.logger),
				)
			}
		} else {
			if app.flags == nil {
				app.flags = session.NewMemoryFlags()
			}
			if app.signal == nil {
				app.signal = session.NewMemorySignal()
			}
		}
	}

	if app.sessions == nil {
		s, err := session.New(cfg.Session, app.client,
			session.WithLogger(app.logger),
			session.WithFlagStore(app.flags),
			session.WithSignal(app.signal),
		)
		if err != nil {
			return nil, err
		}
		app.sessions = s
	}

	if app.auth == nil {
		a, err := auth.New(cfg.Auth, app.client, app.sessions,
			auth.WithLogger(app.logger),
		)
		if err != nil {
			return nil, err
		}
		app.auth = a
	}

	if app.catalog == nil {
		c, err := catalog.New(app.client, catalog.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.catalog = c
	}

	if app.retrieval == nil {
		o, err := retrieval.New(cfg.Retrieval, app.client,
			retrieval.WithLogger(app.logger),
			retrieval.WithNotifier(app.notifier),
		)
		if err != nil {
			return nil, err
		}
		app.retrieval = o
	}

	return app, nil
}

// Run drives the session store's background behaviors until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "portal client running",
		slog.String("app", a.config.AppName),
		slog.String("env", a.config.Env),
	)
	return a.sessions.Run(ctx)
}

// Sessions returns the session store.
func (a *App) Sessions() *session.Store { return a.sessions }

// Auth returns the credential flows.
func (a *App) Auth() *auth.Service { return a.auth }

// Catalog returns the catalog service.
func (a *App) Catalog() *catalog.Service { return a.catalog }

// Retrieval returns the retrieval orchestrator.
func (a *App) Retrieval() *retrieval.Orchestrator { return a.retrieval }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Discover creates a discovery flow for the category, seeded with the
// current session profile. The template id is the GED template the type
// name lives under; the payroll categories ignore it.
func (a *App) Discover(cat document.Category, typeName, templateID string) (*discovery.Flow, error) {
	snap := a.sessions.Snapshot()
	if snap.User == nil {
		return nil, errors.New("no authenticated user")
	}
	sub := discovery.Subject{
		CPF:        snap.User.CPF,
		Manager:    snap.User.Manager,
		Client:     snap.User.Client,
		Companies:  snap.User.Companies,
		TypeName:   typeName,
		TemplateID: templateID,
	}
	return discovery.New(cat, sub, a.client,
		discovery.WithLogger(a.logger),
		discovery.WithNotifier(a.notifier),
	)
}

// WithLogger replaces the application logger.
func WithLogger(log *slog.Logger) AppOption {
	return func(app *App) error {
		if log == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = log
		return nil
	}
}

// WithClient replaces the portal HTTP client.
func WithClient(client *apiclient.Client) AppOption {
	return func(app *App) error {
		if client == nil {
			return errors.New("client cannot be nil")
		}
		app.client = client
		return nil
	}
}

// WithFlagStore replaces the session flag store.
func WithFlagStore(flags session.FlagStore) AppOption {
	return func(app *App) error {
		if flags == nil {
			return errors.New("flag store cannot be nil")
		}
		app.flags = flags
		return nil
	}
}

// WithSignal replaces the cross-process auth-changed signal.
func WithSignal(sig session.Signal) AppOption {
	return func(app *App) error {
		if sig == nil {
			return errors.New("signal cannot be nil")
		}
		app.signal = sig
		return nil
	}
}

// WithNotifier routes user-facing notices to n.
func WithNotifier(n notice.Notifier) AppOption {
	return func(app *App) error {
		if n == nil {
			return errors.New("notifier cannot be nil")
		}
		app.notifier = n
		return nil
	}
}
