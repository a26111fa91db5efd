// Package notice carries user-facing notifications out of the core flows.
// Every failure or milestone surfaces as a short title plus a longer
// description; presentation (toast, CLI output, log line) is up to the
// Notifier the host application plugs in.
package notice

import "sync"

// Level classifies how a notice should be presented.
type Level int

const (
	// LevelSuccess is a positive confirmation.
	LevelSuccess Level = iota
	// LevelWarning marks legitimately-empty results and downgraded failures,
	// rendered neutrally rather than as an error.
	LevelWarning
	// LevelError marks a real failure.
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is one user-facing notification.
type Notice struct {
	Level       Level
	Title       string
	Description string
	// CanRetry marks failures that offer a retry affordance replaying the
	// same operation.
	CanRetry bool
	// SessionExpired marks failures whose one-click action is "go to login".
	SessionExpired bool
}

// Notifier receives notices as they happen.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to the Notifier interface.
type Func func(Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard ignores every notice.
var Discard Notifier = Func(func(Notice) {})

// Recorder is a thread-safe Notifier that keeps every notice it receives,
// used by tests and by hosts that render notices later.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Reset drops all recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
