// Package session owns the authenticated-user state: who is logged in, the
// password/token gating flags derived from the profile, and every transition
// that refreshes or invalidates that truth. All other packages read it through
// Snapshot and mutate it only through the operations defined here.
package session

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
)

// Cookie and storage key names shared with the portal backend and the chat
// widget. Not a public contract, but reproduced for behavioral parity.
const (
	accessTokenCookie   = "access_token"
	loggedSinceCookie   = "logged_user"
	specialClientCookie = "is_special_client"

	chatIdentityKey = "zion.livechat.identity"
)

// Backend is the slice of the portal client the store depends on.
// *apiclient.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Cookie(name string) (string, bool)
	SetCookie(name, value string)
	ClearCookie(name string)
}

// Snapshot is a point-in-time read of the session state. The two Must* flags
// are derived, never stored: they follow the profile and the token sub-state.
type Snapshot struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
	IsLoggingIn     bool

	MustChangePassword        bool
	MustValidateInternalToken bool

	InternalTokenValidated bool
	InternalTokenBlocked   bool
	InternalTokenPrompted  bool
}

func (s Snapshot) equal(other Snapshot) bool {
	if !s.User.Equal(other.User) {
		return false
	}
	s.User, other.User = nil, nil
	return s == other
}

// Store is the single source of truth for the session. Safe for concurrent
// use; all reads go through Snapshot and all writes through the exported
// operations.
type Store struct {
	cfg     Config
	backend Backend
	flags   FlagStore
	signal  Signal
	log     *slog.Logger
	tabID   string
	now     func() time.Time

	mu            sync.Mutex
	user          *User
	loading       bool
	loggingIn     bool
	loginPassword string
	lastSync      time.Time
	visible       bool

	tokenValidated bool
	tokenBlocked   bool
	tokenPrompted  bool

	revalidating bool

	nextSubID int
	subs      map[int]func(Snapshot)
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets the logger used for session diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithFlagStore replaces the tab-scoped flag store.
func WithFlagStore(flags FlagStore) Option {
	return func(s *Store) {
		if flags != nil {
			s.flags = flags
		}
	}
}

// WithSignal replaces the cross-process auth-changed signal.
func WithSignal(sig Signal) Option {
	return func(s *Store) {
		if sig != nil {
			s.signal = sig
		}
	}
}

// WithTabID pins the tab identity used to namespace flag keys. Hosts that
// survive restarts pass a stable ID so token flags outlive the process the
// way tab storage outlives a page reload.
func WithTabID(id string) Option {
	return func(s *Store) {
		if id != "" {
			s.tabID = id
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a session store over the portal backend. The store starts in
// the loading state; the first FetchCurrentUser resolves it either way.
func New(cfg Config, backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	s := &Store{
		cfg:     cfg,
		backend: backend,
		flags:   NewMemoryFlags(),
		signal:  NewMemorySignal(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tabID:   uuid.NewString(),
		now:     time.Now,
		loading: true,
		visible: true,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Restore token flags written by a previous process sharing this tab ID.
	ctx := context.Background()
	s.tokenValidated = s.flags.GetBool(ctx, s.flagKey("validated"))
	s.tokenBlocked = s.flags.GetBool(ctx, s.flagKey("blocked"))
	s.tokenPrompted = s.flags.GetBool(ctx, s.flagKey("prompted"))

	return s, nil
}

func (s *Store) flagKey(name string) string {
	return "auth:" + s.tabID + ":internal_token_" + name
}

// Snapshot returns the current session state with derived flags computed.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		User:                   s.user,
		IsAuthenticated:        s.user != nil,
		IsLoading:              s.loading,
		IsLoggingIn:            s.loggingIn,
		InternalTokenValidated: s.tokenValidated,
		InternalTokenBlocked:   s.tokenBlocked,
		InternalTokenPrompted:  s.tokenPrompted,
	}
	if snap.IsAuthenticated {
		u := s.user
		snap.MustChangePassword = u.PasswordChanged == nil || !*u.PasswordChanged
		snap.MustValidateInternalToken = !snap.MustChangePassword &&
			u.Internal && !s.tokenValidated && !s.tokenBlocked
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every structural state
// change. The returned cancel stops delivery.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// mutate runs fn under the lock and notifies subscribers when the snapshot
// changed structurally. Subscribers run outside the lock.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	before := s.snapshotLocked()
	fn()
	after := s.snapshotLocked()
	if before.equal(after) {
		s.mu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub)
	}
	s.mu.Unlock()

	for _, sub := range fns {
		sub(after)
	}
}

// FetchCurrentUser calls the identity endpoint and reconciles the store.
//
// The call is skipped while a login submission is active unless force is set.
// A 401/403 clears the session entirely. Any other failure leaves the current
// user untouched and returns it alongside the error, so background callers
// can treat the outage as transient.
func (s *Store) FetchCurrentUser(ctx context.Context, background, force bool) (*User, error) {
	s.mu.Lock()
	if s.loggingIn && !force {
		s.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	s.mu.Unlock()

	var raw rawUser
	err := s.backend.Get(ctx, "/user/me", &raw)

	switch {
	case err == nil:
		u := raw.normalize()
		s.deriveSpecialClient(raw)
		s.mutate(func() {
			if s.user == nil {
				// First establishment of a session in this tab: any token
				// flags left over from a previous user are stale.
				s.clearTokenFlagsLocked(ctx)
			}
			if !u.Equal(s.user) {
				s.user = u
			}
			s.loading = false
			s.lastSync = s.now()
		})
		s.mu.Lock()
		cur := s.user
		s.mu.Unlock()
		return cur, nil

	case apiclient.IsAuthError(err):
		s.log.InfoContext(ctx, "session cleared by identity endpoint",
			logger.StatusCode(apiclient.StatusOf(err)),
		)
		s.mutate(func() {
			s.user = nil
			s.loginPassword = ""
			s.clearTokenFlagsLocked(ctx)
			s.loading = false
			s.lastSync = s.now()
		})
		return nil, nil

	default:
		if background && !apiclient.IsCanceled(err) {
			s.log.WarnContext(ctx, "background revalidation failed",
				logger.Error(err),
			)
		}
		s.mutate(func() { s.loading = false })
		s.mu.Lock()
		cur := s.user
		s.mu.Unlock()
		return cur, err
	}
}

// deriveSpecialClient persists the special-client cookie from the first
// associated company, for use by the catalog.
func (s *Store) deriveSpecialClient(raw rawUser) {
	if len(raw.Companies) == 0 {
		return
	}
	special := raw.firstCompanyID() == s.cfg.SpecialClientID
	s.backend.SetCookie(specialClientCookie, strconv.FormatBool(special))
}

// RefreshUser forces a foreground identity fetch and returns the resulting
// (or last-known) user.
func (s *Store) RefreshUser(ctx context.Context) (*User, error) {
	return s.FetchCurrentUser(ctx, false, true)
}

// BeginLogin marks an in-flight credential submission so background
// revalidation does not race it, and preemptively clears the token flags.
func (s *Store) BeginLogin(ctx context.Context) {
	s.mutate(func() {
		s.loggingIn = true
		s.clearTokenFlagsLocked(ctx)
	})
}

// EndLogin clears the in-flight login marker.
func (s *Store) EndLogin() {
	s.mutate(func() { s.loggingIn = false })
}

// SetLoginPassword caches the password submitted at login. It lives only in
// process memory: the forced password-change flow re-submits it as the
// current password without asking the user to retype it.
func (s *Store) SetLoginPassword(pass string) {
	s.mu.Lock()
	s.loginPassword = pass
	s.mu.Unlock()
}

// LoginPassword returns the cached login password, if any.
func (s *Store) LoginPassword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginPassword
}

// ClearLoginPassword drops the cached login password.
func (s *Store) ClearLoginPassword() {
	s.mu.Lock()
	s.loginPassword = ""
	s.mu.Unlock()
}

// SetInternalTokenValidated records the second-factor outcome and mirrors it
// to tab-scoped storage.
func (s *Store) SetInternalTokenValidated(ctx context.Context, v bool) {
	s.mutate(func() {
		s.tokenValidated = v
		s.flags.SetBool(ctx, s.flagKey("validated"), v)
	})
}

// SetInternalTokenBlocked marks the second factor as blocked for this tab
// session (too many failed attempts).
func (s *Store) SetInternalTokenBlocked(ctx context.Context, v bool) {
	s.mutate(func() {
		s.tokenBlocked = v
		s.flags.SetBool(ctx, s.flagKey("blocked"), v)
	})
}

// SetInternalTokenPrompted records that the token screen was already shown
// this tab session.
func (s *Store) SetInternalTokenPrompted(ctx context.Context, v bool) {
	s.mutate(func() {
		s.tokenPrompted = v
		s.flags.SetBool(ctx, s.flagKey("prompted"), v)
	})
}

// ClearInternalTokenSession resets all three token flags. Invoked on logout,
// on beginning a new login, and when a session is first established.
func (s *Store) ClearInternalTokenSession(ctx context.Context) {
	s.mutate(func() { s.clearTokenFlagsLocked(ctx) })
}

func (s *Store) clearTokenFlagsLocked(ctx context.Context) {
	s.tokenValidated = false
	s.tokenBlocked = false
	s.tokenPrompted = false
	s.flags.Delete(ctx, s.flagKey("validated"))
	s.flags.Delete(ctx, s.flagKey("blocked"))
	s.flags.Delete(ctx, s.flagKey("prompted"))
}

// Logout tears the session down unconditionally and returns the path the
// host should navigate to (redirectTo, defaulting to "/"). The server-side
// logout call is best-effort: its failure never blocks local clearing.
func (s *Store) Logout(ctx context.Context, redirectTo string) string {
	if err := s.backend.Post(ctx, "/user/logout", nil, nil); err != nil {
		s.log.WarnContext(ctx, "server logout failed", logger.Error(err))
	}

	s.backend.ClearCookie(accessTokenCookie)
	s.backend.ClearCookie(loggedSinceCookie)
	s.backend.ClearCookie(specialClientCookie)
	s.flags.Delete(ctx, chatIdentityKey)

	s.mutate(func() {
		s.user = nil
		s.loginPassword = ""
		s.loggingIn = false
		s.loading = false
		s.clearTokenFlagsLocked(ctx)
	})

	s.signal.Announce(ctx)

	if redirectTo == "" {
		redirectTo = "/"
	}
	return redirectTo
}
