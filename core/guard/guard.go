// Package guard decides whether a navigation into a protected view may
// proceed. The decision functions are pure over a session snapshot: no side
// effects, deterministic, trivially testable.
package guard

import "github.com/TSC-DEV-2026/ZionDocs-Frontend/core/session"

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// ShowLoading means the session is still resolving; render a placeholder.
	ShowLoading Decision = iota
	// RedirectLogin means the visitor is not authenticated.
	RedirectLogin
	// RedirectChangePassword means a forced password change is pending.
	RedirectChangePassword
	// RedirectHome means the view is not available to this user.
	RedirectHome
	// Allow lets the navigation proceed.
	Allow
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show_loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectChangePassword:
		return "redirect_change_password"
	case RedirectHome:
		return "redirect_home"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Protected gates any authenticated view: loading placeholder first, then
// login, then the forced password change, then the view itself.
func Protected(snap session.Snapshot) Decision {
	switch {
	case snap.IsLoading:
		return ShowLoading
	case !snap.IsAuthenticated:
		return RedirectLogin
	case snap.MustChangePassword:
		return RedirectChangePassword
	default:
		return Allow
	}
}

// InternalToken gates the email-token validation view: everything Protected
// checks, plus the view only exists for internal employees.
func InternalToken(snap session.Snapshot) Decision {
	if d := Protected(snap); d != Allow {
		return d
	}
	if snap.User == nil || !snap.User.Internal {
		return RedirectHome
	}
	return Allow
}
