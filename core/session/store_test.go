package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/session"
)

// fakeBackend serves a canned identity payload and records calls.
type fakeBackend struct {
	mu      sync.Mutex
	me      string
	getErr  error
	postErr error
	posts   []string
	cookies map[string]string
}

func newFakeBackend(me string) *fakeBackend {
	return &fakeBackend{me: me, cookies: make(map[string]string)}
}

func (f *fakeBackend) Get(_ context.Context, _ string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return f.getErr
	}
	return json.Unmarshal([]byte(f.me), out)
}

func (f *fakeBackend) Post(_ context.Context, path string, _, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, path)
	return f.postErr
}

func (f *fakeBackend) Cookie(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.cookies[name]
	return v, ok
}

func (f *fakeBackend) SetCookie(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cookies[name] = value
}

func (f *fakeBackend) ClearCookie(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cookies, name)
}

func (f *fakeBackend) setGetErr(err error) {
	f.mu.Lock()
	f.getErr = err
	f.mu.Unlock()
}

func (f *fakeBackend) postedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

const profileJSON = `{
	"nome": "Ana Souza",
	"email": "ana@example.com",
	"cpf": "52998224725",
	"matricula": "1001",
	"gestor": false,
	"interno": false,
	"senha_trocada": true,
	"dados": [{"id": "5849", "nome": "Matriz", "matricula": "1001"}]
}`

func newStore(t *testing.T, backend session.Backend, opts ...session.Option) *session.Store {
	t.Helper()

	s, err := session.New(session.DefaultConfig(), backend, opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil backend", func(t *testing.T) {
		t.Parallel()

		_, err := session.New(session.DefaultConfig(), nil)
		assert.ErrorIs(t, err, session.ErrNilBackend)
	})

	t.Run("starts loading and unauthenticated", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(profileJSON))
		snap := s.Snapshot()
		assert.True(t, snap.IsLoading)
		assert.False(t, snap.IsAuthenticated)
		assert.Nil(t, snap.User)
	})
}

func TestFetchCurrentUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success resolves the session", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(profileJSON))
		u, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "Ana Souza", u.Name)

		snap := s.Snapshot()
		assert.True(t, snap.IsAuthenticated)
		assert.False(t, snap.IsLoading)
		assert.False(t, snap.MustChangePassword)
	})

	t.Run("skipped while logging in", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(profileJSON))
		s.BeginLogin(ctx)

		_, err := s.FetchCurrentUser(ctx, true, false)
		assert.ErrorIs(t, err, session.ErrLoginInProgress)

		u, err := s.FetchCurrentUser(ctx, false, true)
		require.NoError(t, err)
		assert.NotNil(t, u, "force must bypass the login guard")
	})

	t.Run("auth error clears everything", func(t *testing.T) {
		t.Parallel()

		b := newFakeBackend(profileJSON)
		s := newStore(t, b)
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)
		s.SetLoginPassword("hunter2")
		s.SetInternalTokenValidated(ctx, true)

		b.setGetErr(&apiclient.APIError{Status: http.StatusUnauthorized})
		u, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)
		assert.Nil(t, u)

		snap := s.Snapshot()
		assert.False(t, snap.IsAuthenticated)
		assert.Nil(t, snap.User)
		assert.False(t, snap.InternalTokenValidated)
		assert.Empty(t, s.LoginPassword())
	})

	t.Run("transient failure keeps the session", func(t *testing.T) {
		t.Parallel()

		b := newFakeBackend(profileJSON)
		s := newStore(t, b)
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		b.setGetErr(errors.New("connection refused"))
		u, err := s.FetchCurrentUser(ctx, true, false)
		require.Error(t, err)
		require.NotNil(t, u, "last-known user survives a transient outage")

		snap := s.Snapshot()
		assert.True(t, snap.IsAuthenticated)
	})

	t.Run("unchanged profile does not notify", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(profileJSON))
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		var notified int
		cancel := s.Subscribe(func(session.Snapshot) { notified++ })
		defer cancel()

		_, err = s.RefreshUser(ctx)
		require.NoError(t, err)
		assert.Zero(t, notified, "structurally equal refetch must be a no-op")
	})

	t.Run("special client cookie derived from first company", func(t *testing.T) {
		t.Parallel()

		b := newFakeBackend(profileJSON)
		s := newStore(t, b)
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		v, ok := b.Cookie("is_special_client")
		require.True(t, ok)
		assert.Equal(t, "true", v)
	})

	t.Run("ordinary client cookie is false", func(t *testing.T) {
		t.Parallel()

		b := newFakeBackend(`{"nome":"Bia","dados":[{"id":"12","nome":"Outra","matricula":"2"}]}`)
		s := newStore(t, b)
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		v, ok := b.Cookie("is_special_client")
		require.True(t, ok)
		assert.Equal(t, "false", v)
	})

	t.Run("new session clears stale token flags", func(t *testing.T) {
		t.Parallel()

		flags := session.NewMemoryFlags()
		flags.SetBool(ctx, "auth:tab-1:internal_token_validated", true)

		s := newStore(t, newFakeBackend(profileJSON),
			session.WithFlagStore(flags), session.WithTabID("tab-1"))
		assert.True(t, s.Snapshot().InternalTokenValidated, "restored from tab storage")

		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)
		assert.False(t, s.Snapshot().InternalTokenValidated,
			"flags from before this session must not survive its establishment")
	})
}

func TestDerivedFlags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("pending password change", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(`{"nome":"Ana","senha_trocada":false}`))
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		snap := s.Snapshot()
		assert.True(t, snap.MustChangePassword)
		assert.False(t, snap.MustValidateInternalToken)
	})

	t.Run("absent password flag counts as pending", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(`{"nome":"Ana"}`))
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)
		assert.True(t, s.Snapshot().MustChangePassword)
	})

	t.Run("internal employee must validate token", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(`{"nome":"Ana","interno":true,"senha_trocada":true}`))
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)
		assert.True(t, s.Snapshot().MustValidateInternalToken)

		s.SetInternalTokenValidated(ctx, true)
		assert.False(t, s.Snapshot().MustValidateInternalToken)
	})

	t.Run("blocked token suppresses the prompt", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(`{"nome":"Ana","interno":true,"senha_trocada":true}`))
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		s.SetInternalTokenBlocked(ctx, true)
		assert.False(t, s.Snapshot().MustValidateInternalToken)
	})

	t.Run("password change outranks token validation", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, newFakeBackend(`{"nome":"Ana","interno":true,"senha_trocada":false}`))
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		snap := s.Snapshot()
		assert.True(t, snap.MustChangePassword)
		assert.False(t, snap.MustValidateInternalToken)
	})
}

func TestTokenFlagsMirroredToStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	flags := session.NewMemoryFlags()
	s := newStore(t, newFakeBackend(profileJSON),
		session.WithFlagStore(flags), session.WithTabID("tab-9"))

	s.SetInternalTokenPrompted(ctx, true)
	assert.True(t, flags.GetBool(ctx, "auth:tab-9:internal_token_prompted"))

	// A second store sharing the tab ID sees the mirrored state, like a page
	// reload within the same tab.
	reloaded := newStore(t, newFakeBackend(profileJSON),
		session.WithFlagStore(flags), session.WithTabID("tab-9"))
	assert.True(t, reloaded.Snapshot().InternalTokenPrompted)

	s.ClearInternalTokenSession(ctx)
	assert.False(t, flags.GetBool(ctx, "auth:tab-9:internal_token_prompted"))
}

func TestLogout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("clears local state even when the server call fails", func(t *testing.T) {
		t.Parallel()

		b := newFakeBackend(profileJSON)
		s := newStore(t, b)
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)
		s.SetLoginPassword("hunter2")
		s.SetInternalTokenValidated(ctx, true)

		b.mu.Lock()
		b.postErr = errors.New("boom")
		b.mu.Unlock()

		redirect := s.Logout(ctx, "")
		assert.Equal(t, "/", redirect)

		snap := s.Snapshot()
		assert.False(t, snap.IsAuthenticated)
		assert.Nil(t, snap.User)
		assert.False(t, snap.InternalTokenValidated)
		assert.False(t, snap.InternalTokenBlocked)
		assert.False(t, snap.InternalTokenPrompted)
		assert.Empty(t, s.LoginPassword())
		assert.Contains(t, b.postedPaths(), "/user/logout")

		_, ok := b.Cookie("is_special_client")
		assert.False(t, ok, "cookies cleared on logout")
	})

	t.Run("custom redirect and cross-tab signal", func(t *testing.T) {
		t.Parallel()

		sig := session.NewMemorySignal()
		announced := make(chan struct{}, 1)
		sig.Subscribe(func() { announced <- struct{}{} })

		s := newStore(t, newFakeBackend(profileJSON), session.WithSignal(sig))
		assert.Equal(t, "/login", s.Logout(ctx, "/login"))

		select {
		case <-announced:
		default:
			t.Fatal("logout must announce the auth change to other tabs")
		}
	})
}

func TestFocusRevalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("throttled within the window", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		clock := func() time.Time { return now }

		b := newFakeBackend(profileJSON)
		s := newStore(t, b, session.WithClock(clock))
		_, err := s.FetchCurrentUser(ctx, false, false)
		require.NoError(t, err)

		// Within the throttle window the profile change must not be picked up.
		b.mu.Lock()
		b.me = `{"nome":"Renamed","senha_trocada":true}`
		b.mu.Unlock()

		s.OnFocus(ctx)
		assert.Equal(t, "Ana Souza", s.Snapshot().User.Name)

		now = now.Add(6 * time.Minute)
		s.OnFocus(ctx)
		assert.Equal(t, "Renamed", s.Snapshot().User.Name)
	})

	t.Run("disabled by config", func(t *testing.T) {
		t.Parallel()

		cfg := session.DefaultConfig()
		cfg.RevalidateOnFocus = false

		b := newFakeBackend(profileJSON)
		s, err := session.New(cfg, b)
		require.NoError(t, err)

		s.OnVisible(ctx)
		assert.True(t, s.Snapshot().IsLoading, "focus revalidation disabled")
	})
}

func TestSubscribeNotifications(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t, newFakeBackend(profileJSON))

	var snaps []session.Snapshot
	cancel := s.Subscribe(func(snap session.Snapshot) { snaps = append(snaps, snap) })

	_, err := s.FetchCurrentUser(ctx, false, false)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].IsAuthenticated)

	cancel()
	s.Logout(ctx, "")
	assert.Len(t, snaps, 1, "canceled subscriber receives nothing further")
}
