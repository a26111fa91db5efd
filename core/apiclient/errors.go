package apiclient

import (
	"context"
	"errors"
	"net"
	"net/http"
)

var (
	// ErrEmptyBaseURL is returned when the client is created without a base URL.
	ErrEmptyBaseURL = errors.New("empty portal base URL")
	// ErrInvalidBaseURL is returned when the base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid portal base URL")
	// ErrEncodeRequest is returned when the request body cannot be marshaled.
	ErrEncodeRequest = errors.New("failed to encode request body")
	// ErrDecodeResponse is returned when the response body cannot be unmarshaled.
	ErrDecodeResponse = errors.New("failed to decode response body")
)

// APIError is a non-2xx response from the portal backend.
type APIError struct {
	Status int
	// Detail carries the backend's "detail" or "message" field when present.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return "portal api: " + http.StatusText(e.Status) + ": " + e.Detail
	}
	return "portal api: " + http.StatusText(e.Status)
}

// StatusOf extracts the HTTP status from err, or 0 when err is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsAuthError reports whether err is a 401/403 response. These always clear
// the session and are never retried.
func IsAuthError(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response, which the portal treats
// as a legitimately empty result rather than a failure.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsCanceled reports whether err is a caller-initiated cancellation.
// Cancellations are swallowed silently, never surfaced to the user.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeout reports whether err is a deadline expiry, surfaced as a distinct
// "server slow" message.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransient reports whether err is retryable: a network-layer failure,
// a timeout, or a 502/503/504 response. 4xx responses are never transient.
func IsTransient(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}
	switch StatusOf(err) {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	case 0:
		// No HTTP status means the transport layer failed.
		var netErr net.Error
		if errors.As(err, &netErr) {
			return true
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return true
		}
		return IsTimeout(err)
	default:
		return false
	}
}

// IsServerError reports whether err carries any 5xx status.
func IsServerError(err error) bool {
	return StatusOf(err) >= 500
}

// Message maps err to the user-facing description shown alongside failures.
// Unknown failures fall back to the supplied text.
func Message(err error, fallback string) string {
	if IsTimeout(err) {
		return "O servidor demorou para responder. Tente novamente em instantes."
	}
	switch StatusOf(err) {
	case http.StatusUnauthorized:
		return "Sua sessão expirou. Faça login novamente."
	case http.StatusForbidden:
		return "Você não tem permissão para executar esta ação."
	case http.StatusNotFound:
		return "Não localizamos documentos para os dados informados."
	case http.StatusRequestEntityTooLarge:
		return "Documento muito grande. Tente novamente mais tarde."
	case http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return "Os dados informados não foram aceitos pelo servidor."
	case http.StatusTooManyRequests:
		return "Muitas tentativas. Aguarde e tente novamente."
	case http.StatusInternalServerError:
		return "Ocorreu um problema no servidor. Tente novamente em alguns minutos."
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "O servidor está indisponível no momento. Tente novamente."
	}
	return fallback
}
