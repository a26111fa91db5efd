package auth

import "errors"

var (
	// ErrNilBackend is returned when the service is created without a backend.
	ErrNilBackend = errors.New("nil auth backend")
	// ErrNilSessions is returned when the service is created without a
	// session store.
	ErrNilSessions = errors.New("nil session store")
	// ErrEmptyCredentials is returned by Login before any network call when
	// either field is blank.
	ErrEmptyCredentials = errors.New("login and password are required")
	// ErrEmptyPassword is returned by the password flows when the new
	// password is blank.
	ErrEmptyPassword = errors.New("new password is required")
	// ErrNoCurrentPassword is returned by UpdatePassword when no login
	// password is cached to submit as the current one.
	ErrNoCurrentPassword = errors.New("no cached login password")
	// ErrResendCooldown is returned by SendInternalToken while the resend
	// window is still open.
	ErrResendCooldown = errors.New("token resend still cooling down")
	// ErrTokenBlocked is returned once the validation attempt limit is
	// exhausted for this tab session.
	ErrTokenBlocked = errors.New("token validation blocked for this session")
)
