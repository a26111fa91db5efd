// Package catalog lists the document categories the logged-in user can
// browse, plus the GED search templates for special-client accounts.
package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
)

// ErrNilBackend is returned when the service is created without a backend.
var ErrNilBackend = errors.New("nil catalog backend")

const specialClientCookie = "is_special_client"

// Category is one browsable document category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
	Type string `json:"tipo"`
}

// Template is one GED search template, available to special clients only.
type Template struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// Catalog is what the home view renders.
type Catalog struct {
	Categories []Category
	Templates  []Template
}

// Backend is the slice of the portal client the catalog reads through.
// *apiclient.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Cookie(name string) (string, bool)
}

// Service fetches the catalog.
type Service struct {
	backend Backend
	log     *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger used for catalog diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates the catalog service.
func New(backend Backend, opts ...Option) (*Service, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	s := &Service{backend: backend, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Available returns the user's catalog. A 404 from the category listing is a
// legitimately empty catalog, not a failure. The template fetch only runs for
// special-client accounts and degrades to categories-only when it fails.
func (s *Service) Available(ctx context.Context) (Catalog, error) {
	var cats []Category
	if err := s.backend.Get(ctx, "/documents", &cats); err != nil {
		if apiclient.IsNotFound(err) {
			return Catalog{}, nil
		}
		return Catalog{}, err
	}

	c := Catalog{Categories: cats}
	if v, ok := s.backend.Cookie(specialClientCookie); !ok || v != "true" {
		return c, nil
	}

	var tpls []Template
	if err := s.backend.Get(ctx, "/searchdocuments/templates", &tpls); err != nil {
		s.log.WarnContext(ctx, "template listing failed, degrading to categories",
			logger.Error(err),
		)
		return c, nil
	}
	c.Templates = tpls
	return c, nil
}
