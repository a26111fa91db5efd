// Package auth implements the credential flows on top of the session store:
// login with its single 5xx retry, the forced password change, out-of-band
// password reset, and the internal-employee email-token second factor.
package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/session"
)

// Config holds auth flow tuning.
type Config struct {
	// LoginRetryDelay is the pause before the single login retry on a 5xx.
	LoginRetryDelay time.Duration `env:"AUTH_LOGIN_RETRY_DELAY" envDefault:"500ms"`
	// ResendCooldown throttles internal-token resends.
	ResendCooldown time.Duration `env:"AUTH_TOKEN_RESEND_COOLDOWN" envDefault:"30s"`
	// MaxTokenAttempts is the number of failed validations before the second
	// factor blocks for the rest of the tab session.
	MaxTokenAttempts int `env:"AUTH_MAX_TOKEN_ATTEMPTS" envDefault:"3"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		LoginRetryDelay:  500 * time.Millisecond,
		ResendCooldown:   30 * time.Second,
		MaxTokenAttempts: 3,
	}
}

// NextStep tells the caller where to route after a successful login.
type NextStep int

const (
	// StepHome means the session is fully established.
	StepHome NextStep = iota
	// StepChangePassword means a forced password change is pending.
	StepChangePassword
	// StepValidateToken means the internal-employee second factor is pending.
	StepValidateToken
)

func (s NextStep) String() string {
	switch s {
	case StepHome:
		return "home"
	case StepChangePassword:
		return "change_password"
	case StepValidateToken:
		return "validate_token"
	default:
		return "unknown"
	}
}

// Backend is the slice of the portal client the auth flows call.
// *apiclient.Client satisfies it.
type Backend interface {
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
}

// Sessions is the slice of the session store the auth flows drive.
// *session.Store satisfies it.
type Sessions interface {
	BeginLogin(ctx context.Context)
	EndLogin()
	SetLoginPassword(pass string)
	LoginPassword() string
	ClearLoginPassword()
	RefreshUser(ctx context.Context) (*session.User, error)
	Snapshot() session.Snapshot
	SetInternalTokenValidated(ctx context.Context, v bool)
	SetInternalTokenBlocked(ctx context.Context, v bool)
	SetInternalTokenPrompted(ctx context.Context, v bool)
}

// Service runs the credential flows.
type Service struct {
	cfg      Config
	backend  Backend
	sessions Sessions
	log      *slog.Logger
	now      func() time.Time

	mu            sync.Mutex
	lastTokenSend time.Time
	tokenAttempts int
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger used for flow diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates the auth service.
func New(cfg Config, backend Backend, sessions Sessions, opts ...Option) (*Service, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if sessions == nil {
		return nil, ErrNilSessions
	}

	s := &Service{
		cfg:      cfg,
		backend:  backend,
		sessions: sessions,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	if s.cfg.LoginRetryDelay <= 0 {
		s.cfg.LoginRetryDelay = 500 * time.Millisecond
	}
	if s.cfg.ResendCooldown <= 0 {
		s.cfg.ResendCooldown = 30 * time.Second
	}
	if s.cfg.MaxTokenAttempts <= 0 {
		s.cfg.MaxTokenAttempts = 3
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type loginRequest struct {
	Login    string `json:"usuario"`
	Password string `json:"senha"`
}

// Login submits credentials and returns where to route next. The credential
// post is retried exactly once, after a short pause, and only on a 5xx
// response. Network failures and 4xx responses are never retried.
func (s *Service) Login(ctx context.Context, login, password string) (NextStep, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return StepHome, ErrEmptyCredentials
	}

	s.sessions.BeginLogin(ctx)
	defer s.sessions.EndLogin()
	s.sessions.SetLoginPassword(password)

	req := loginRequest{Login: login, Password: password}
	err := s.backend.Post(ctx, "/user/login", req, nil)
	if err != nil && apiclient.IsServerError(err) {
		s.log.WarnContext(ctx, "login failed upstream, retrying once",
			logger.StatusCode(apiclient.StatusOf(err)),
		)
		select {
		case <-ctx.Done():
			return StepHome, ctx.Err()
		case <-time.After(s.cfg.LoginRetryDelay):
		}
		err = s.backend.Post(ctx, "/user/login", req, nil)
	}
	if err != nil {
		s.sessions.ClearLoginPassword()
		return StepHome, err
	}

	if _, err := s.sessions.RefreshUser(ctx); err != nil {
		return StepHome, err
	}

	snap := s.sessions.Snapshot()
	switch {
	case snap.MustChangePassword:
		return StepChangePassword, nil
	case snap.MustValidateInternalToken:
		s.sessions.SetInternalTokenPrompted(ctx, true)
		return StepValidateToken, nil
	default:
		return StepHome, nil
	}
}

type updatePasswordRequest struct {
	Current string `json:"senha_atual"`
	New     string `json:"senha_nova"`
}

// UpdatePassword performs the forced password change, re-submitting the
// cached login password as the current one. The cache is dropped on success.
func (s *Service) UpdatePassword(ctx context.Context, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyPassword
	}
	current := s.sessions.LoginPassword()
	if current == "" {
		return ErrNoCurrentPassword
	}

	req := updatePasswordRequest{Current: current, New: newPassword}
	if err := s.backend.Put(ctx, "/user/update-password", req, nil); err != nil {
		return err
	}

	s.sessions.ClearLoginPassword()
	_, err := s.sessions.RefreshUser(ctx)
	return err
}

type resetPasswordRequest struct {
	Token string `json:"token"`
	New   string `json:"senha_nova"`
}

// ResetPassword redeems an emailed reset token for a new password. No
// session is required.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyPassword
	}
	return s.backend.Post(ctx, "/auth/reset-password",
		resetPasswordRequest{Token: token, New: newPassword}, nil)
}

// SendInternalToken asks the backend to email a validation token, throttled
// to one send per cooldown window.
func (s *Service) SendInternalToken(ctx context.Context) error {
	s.mu.Lock()
	if !s.lastTokenSend.IsZero() && s.now().Sub(s.lastTokenSend) < s.cfg.ResendCooldown {
		s.mu.Unlock()
		return ErrResendCooldown
	}
	s.mu.Unlock()

	if err := s.backend.Post(ctx, "/user/internal/send-token", nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastTokenSend = s.now()
	s.mu.Unlock()
	return nil
}

type validateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateInternalToken checks the emailed code. A success marks the session
// validated; each rejection burns an attempt, and exhausting them blocks the
// second factor for the rest of the tab session.
func (s *Service) ValidateInternalToken(ctx context.Context, token string) error {
	s.mu.Lock()
	blocked := s.tokenAttempts >= s.cfg.MaxTokenAttempts
	s.mu.Unlock()
	if blocked || s.sessions.Snapshot().InternalTokenBlocked {
		return ErrTokenBlocked
	}

	err := s.backend.Post(ctx, "/user/internal/validate-token",
		validateTokenRequest{Token: token}, nil)
	if err == nil {
		s.mu.Lock()
		s.tokenAttempts = 0
		s.mu.Unlock()
		s.sessions.SetInternalTokenValidated(ctx, true)
		s.sessions.SetInternalTokenBlocked(ctx, false)
		return nil
	}

	// Only an explicit rejection burns an attempt; outages do not punish
	// the user.
	if status := apiclient.StatusOf(err); status >= 400 && status < 500 {
		s.mu.Lock()
		s.tokenAttempts++
		exhausted := s.tokenAttempts >= s.cfg.MaxTokenAttempts
		s.mu.Unlock()
		if exhausted {
			s.log.InfoContext(ctx, "token validation attempts exhausted")
			s.sessions.SetInternalTokenBlocked(ctx, true)
			return ErrTokenBlocked
		}
	}
	return err
}
