package session

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
)

// SetVisible records whether the host surface is currently visible. The
// periodic refresh loop only runs while visible.
func (s *Store) SetVisible(v bool) {
	s.mu.Lock()
	s.visible = v
	s.mu.Unlock()
}

// OnFocus revalidates the session when the host regains focus, throttled to
// at most once per FocusThrottle and skipped while a revalidation is already
// in flight.
func (s *Store) OnFocus(ctx context.Context) {
	s.maybeRevalidate(ctx)
}

// OnVisible is OnFocus for visibility transitions; it additionally marks the
// surface visible.
func (s *Store) OnVisible(ctx context.Context) {
	s.SetVisible(true)
	s.maybeRevalidate(ctx)
}

func (s *Store) maybeRevalidate(ctx context.Context) {
	if !s.cfg.RevalidateOnFocus {
		return
	}
	s.mu.Lock()
	stale := s.lastSync.IsZero() || s.now().Sub(s.lastSync) > s.cfg.FocusThrottle
	s.mu.Unlock()
	if stale {
		s.revalidate(ctx)
	}
}

// revalidate runs a background identity fetch with a single-in-flight guard:
// a revalidation never runs concurrently with itself.
func (s *Store) revalidate(ctx context.Context) {
	s.mu.Lock()
	if s.revalidating {
		s.mu.Unlock()
		return
	}
	s.revalidating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.revalidating = false
		s.mu.Unlock()
	}()

	_, _ = s.FetchCurrentUser(ctx, true, false)
}

// Run drives the store's background behaviors until ctx is done: the
// periodic refresh-then-revalidate loop, the logged-since watchdog, and the
// cross-process auth-changed subscription. It always returns ctx.Err().
func (s *Store) Run(ctx context.Context) error {
	unsubscribe := s.signal.Subscribe(func() {
		s.revalidate(ctx)
	})
	defer unsubscribe()

	var refreshC <-chan time.Time
	if s.cfg.BackgroundRefresh && s.cfg.BackgroundRefreshInterval > 0 {
		t := time.NewTicker(s.cfg.BackgroundRefreshInterval)
		defer t.Stop()
		refreshC = t.C
	}

	var watchdogC <-chan time.Time
	if s.cfg.SessionAgeCheckInterval > 0 {
		t := time.NewTicker(s.cfg.SessionAgeCheckInterval)
		defer t.Stop()
		watchdogC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-refreshC:
			s.backgroundRefresh(ctx)
		case <-watchdogC:
			s.checkSessionAge(ctx)
		}
	}
}

// backgroundRefresh proactively rotates the session token and revalidates,
// while authenticated and visible. Failures are swallowed: the next identity
// fetch decides whether the session is actually gone.
func (s *Store) backgroundRefresh(ctx context.Context) {
	s.mu.Lock()
	run := s.user != nil && s.visible
	s.mu.Unlock()
	if !run {
		return
	}

	if err := s.backend.Post(ctx, "/user/refresh", nil, nil); err != nil {
		s.log.WarnContext(ctx, "session refresh failed", logger.Error(err))
	}
	s.revalidate(ctx)
}

// checkSessionAge enforces the maximum session age from the logged-since
// cookie (unix milliseconds). An overage triggers a refresh attempt; a failed
// refresh forces logout.
func (s *Store) checkSessionAge(ctx context.Context) {
	s.mu.Lock()
	authed := s.user != nil
	s.mu.Unlock()
	if !authed {
		return
	}

	raw, ok := s.backend.Cookie(loggedSinceCookie)
	if !ok {
		return
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}

	age := s.now().Sub(time.UnixMilli(millis))
	if age <= s.cfg.MaxSessionAge {
		return
	}

	s.log.InfoContext(ctx, "session exceeded maximum age, refreshing",
		slog.Duration("session_age", age),
	)
	if err := s.backend.Post(ctx, "/user/refresh", nil, nil); err != nil {
		s.log.WarnContext(ctx, "forced refresh failed, logging out",
			logger.Error(err),
		)
		s.Logout(ctx, "")
	}
}
