package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers return an empty Attr for zero values so call sites never
// need nil checks.

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event creates an attribute for event names.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// RetryCount creates an attribute for retry attempts.
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Category creates an attribute for a document category.
func Category(c string) slog.Attr {
	if c == "" {
		return slog.Attr{}
	}
	return slog.String("category", c)
}

// Period creates an attribute for a competência value.
func Period(p string) slog.Attr {
	if p == "" {
		return slog.Attr{}
	}
	return slog.String("period", p)
}

// Company creates an attribute for a company (cliente) id.
func Company(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("company", id)
}

// Registration creates an attribute for an employee matrícula.
func Registration(m string) slog.Attr {
	if m == "" {
		return slog.Attr{}
	}
	return slog.String("registration", m)
}
