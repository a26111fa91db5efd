package retrieval

import "errors"

var (
	// ErrNilBackend is returned when the orchestrator is created without a
	// backend.
	ErrNilBackend = errors.New("nil retrieval backend")
	// ErrNotReady is returned when a reference lacks the identity needed to
	// fetch its payload.
	ErrNotReady = errors.New("reference is not retrieval-ready")
	// ErrEmptyPayload is returned when the build endpoint answered without
	// document content.
	ErrEmptyPayload = errors.New("backend returned no document content")
	// ErrInvalidCPF marks a confirmation skipped because the tax id does not
	// strip down to 11 digits.
	ErrInvalidCPF = errors.New("cpf must have 11 digits")
	// ErrMissingRegistration marks a confirmation skipped for lack of a
	// registration number.
	ErrMissingRegistration = errors.New("registration number is required")
	// ErrInvalidPeriod marks a confirmation skipped because the period is
	// missing or not a canonical competência.
	ErrInvalidPeriod = errors.New("missing or malformed competência")
	// ErrConfirmFailed wraps a confirmation call failure. The download still
	// proceeds.
	ErrConfirmFailed = errors.New("acceptance confirmation failed")
	// ErrBadContent is returned when the payload is not decodable base64.
	ErrBadContent = errors.New("document content is not valid base64")
)
