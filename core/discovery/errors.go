package discovery

import "errors"

var (
	// ErrNilBackend is returned when a flow is created without a backend.
	ErrNilBackend = errors.New("nil discovery backend")
	// ErrTypeNameRequired is returned when a generic-pipeline flow is
	// created without the document-type name it searches for.
	ErrTypeNameRequired = errors.New("document type name is required")
	// ErrCompanyRequired is returned when a downstream step runs before a
	// company was selected.
	ErrCompanyRequired = errors.New("no company selected")
	// ErrPeriodsNotLoaded is returned when a year or month is selected
	// before the competência list resolved.
	ErrPeriodsNotLoaded = errors.New("periods not loaded")
	// ErrUnknownCandidate is returned by Choose for an id that is not among
	// the presented candidates.
	ErrUnknownCandidate = errors.New("unknown candidate id")
	// ErrNothingToRetry is returned by Retry when no step has failed.
	ErrNothingToRetry = errors.New("nothing to retry")
	// ErrCPFRequired is returned by the manager search when the tax id is
	// present but malformed.
	ErrCPFRequired = errors.New("valid cpf is required")
	// ErrIdentityRequired is returned by the manager search when neither
	// the tax id nor the registration was given.
	ErrIdentityRequired = errors.New("cpf or registration is required")
)
