// Package retrieval turns a resolved document reference into binary content,
// tracks the acceptance acknowledgment per document, and mediates the
// accept-and-download action. Build calls ride a bounded retry for transient
// failures; only one preview fetch is alive at a time.
package retrieval

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/notice"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/retry"
)

// Config holds retrieval tuning. The retry bounds apply to every build and
// search call the orchestrator makes.
type Config struct {
	MaxRetries uint64        `env:"RETRIEVAL_MAX_RETRIES" envDefault:"2"`
	BaseDelay  time.Duration `env:"RETRIEVAL_BASE_DELAY" envDefault:"650ms"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{MaxRetries: 2, BaseDelay: 650 * time.Millisecond}
}

// Backend is the slice of the portal client the orchestrator calls.
// *apiclient.Client satisfies it.
type Backend interface {
	Post(ctx context.Context, path string, in, out any) error
}

// Orchestrator fetches payloads and tracks acceptance for the preview
// session. Safe for concurrent use.
type Orchestrator struct {
	cfg      Config
	backend  Backend
	notifier notice.Notifier
	log      *slog.Logger

	mu         sync.Mutex
	previewGen int
	cancel     context.CancelFunc
	accepted   map[string]document.Acceptance
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for retrieval diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithNotifier routes user-facing notices to n.
func WithNotifier(n notice.Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// New creates the orchestrator.
func New(cfg Config, backend Backend, opts ...Option) (*Orchestrator, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	o := &Orchestrator{
		cfg:      cfg,
		backend:  backend,
		notifier: notice.Discard,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		accepted: make(map[string]document.Acceptance),
	}
	if o.cfg.MaxRetries == 0 {
		o.cfg.MaxRetries = 2
	}
	if o.cfg.BaseDelay <= 0 {
		o.cfg.BaseDelay = 650 * time.Millisecond
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// post wraps one backend call in the bounded retry: transient failures only,
// never 4xx.
func (o *Orchestrator) post(ctx context.Context, path string, in, out any) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		return o.backend.Post(ctx, path, in, out)
	},
		retry.WithMaxRetries(o.cfg.MaxRetries),
		retry.WithBaseDelay(o.cfg.BaseDelay),
		retry.WithRetryIf(apiclient.IsTransient),
	)
}

// ResolveContent fetches or builds the payload for ref. Starting a new
// preview cancels the previous in-flight one; only one preview fetch is
// alive at a time.
func (o *Orchestrator) ResolveContent(ctx context.Context, ref document.Ref) (document.Payload, error) {
	if !ref.RetrievalReady() {
		return document.Payload{}, ErrNotReady
	}

	o.mu.Lock()
	o.previewGen++
	gen := o.previewGen
	if o.cancel != nil {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()
	defer func() {
		cancel()
		o.mu.Lock()
		if gen == o.previewGen {
			o.cancel = nil
		}
		o.mu.Unlock()
	}()

	start := time.Now()
	var (
		raw string
		err error
	)
	switch ref.Category {
	case document.CategoryPayslip:
		raw, err = o.buildPayslip(ctx, ref)
	case document.CategoryBenefits:
		raw, err = o.buildBenefits(ctx, ref)
	default:
		raw, err = o.downloadGeneric(ctx, ref)
	}
	if err != nil {
		return document.Payload{}, err
	}
	if raw == "" {
		return document.Payload{}, ErrEmptyPayload
	}

	o.log.DebugContext(ctx, "payload resolved",
		logger.Category(string(ref.Category)),
		logger.Period(ref.Period),
		logger.Elapsed(start),
	)

	o.mu.Lock()
	accepted := o.accepted[ref.AcceptanceKey()]
	o.mu.Unlock()
	return document.Payload{Base64: raw, Accepted: accepted}, nil
}

type buildRequest struct {
	CPF          string `json:"cpf"`
	Registration string `json:"matricula"`
	Period       string `json:"competencia"`
	Lot          string `json:"lote"`
	UID          string `json:"uuid,omitempty"`
	CalcType     string `json:"tipo_calculo,omitempty"`
	Company      string `json:"empresa,omitempty"`
}

// buildResponse is what the montar routes answer: the rendered PDF, nothing
// else we care about.
type buildResponse struct {
	PDF string `json:"pdf_base64"`
}

func (o *Orchestrator) buildPayslip(ctx context.Context, ref document.Ref) (string, error) {
	req := buildRequest{
		CPF:          ref.CPF,
		Registration: ref.Registration,
		Period:       ref.Period,
		Lot:          ref.Lot,
		UID:          ref.UID,
		CalcType:     ref.CalcType,
		Company:      ref.Company,
	}
	var res buildResponse
	if err := o.post(ctx, "/documents/holerite/montar", req, &res); err != nil {
		return "", err
	}
	return res.PDF, nil
}

type benefitsLookupRequest struct {
	CPF          string `json:"cpf"`
	Registration string `json:"matricula"`
	Period       string `json:"competencia"`
}

type benefitsLookupHeader struct {
	UID string `json:"uuid"`
}

type benefitsLookupResponse struct {
	UID            string                `json:"uuid"`
	Header         *benefitsLookupHeader `json:"cabecalho"`
	HeaderAccented *benefitsLookupHeader `json:"cabeçalho"`
}

func (r benefitsLookupResponse) uid() string {
	if r.Header != nil && r.Header.UID != "" {
		return r.Header.UID
	}
	if r.HeaderAccented != nil && r.HeaderAccented.UID != "" {
		return r.HeaderAccented.UID
	}
	return r.UID
}

type benefitsBuildRequest struct {
	CPF          string `json:"cpf"`
	Registration string `json:"matricula"`
	Period       string `json:"competencia"`
	UID          string `json:"uuid"`
}

// buildBenefits ensures the unique id is known, reusing the one carried on
// the reference and falling back to the lookup endpoint, then builds. The
// montar route is keyed by the unique id alone, never the lot.
func (o *Orchestrator) buildBenefits(ctx context.Context, ref document.Ref) (string, error) {
	if ref.UID == "" {
		var res benefitsLookupResponse
		err := o.post(ctx, "/documents/beneficios/buscar", benefitsLookupRequest{
			CPF:          ref.CPF,
			Registration: ref.Registration,
			Period:       ref.Period,
		}, &res)
		if err != nil {
			return "", err
		}
		ref.UID = res.uid()
	}
	if ref.UID == "" {
		return "", ErrNotReady
	}

	req := benefitsBuildRequest{
		CPF:          ref.CPF,
		Registration: ref.Registration,
		Period:       ref.Period,
		UID:          ref.UID,
	}
	var res buildResponse
	if err := o.post(ctx, "/documents/beneficios/montar", req, &res); err != nil {
		return "", err
	}
	return res.PDF, nil
}

type genericDownloadRequest struct {
	TemplateID int `json:"id_tipo"`
	DocumentID int `json:"id_documento"`
}

// downloadResponse is what the generic download route answers. Unlike the
// montar routes it flags failure in the body and has shipped the content
// under two different keys.
type downloadResponse struct {
	Error     bool   `json:"erro"`
	Base64Raw string `json:"base64_raw"`
	Base64    string `json:"base64"`
}

func (r downloadResponse) content() string {
	if r.Base64Raw != "" {
		return r.Base64Raw
	}
	return r.Base64
}

func (o *Orchestrator) downloadGeneric(ctx context.Context, ref document.Ref) (string, error) {
	// The download route wants numeric ids.
	id := ref.DocumentID
	if id == "" {
		id = ref.GedID
	}
	docID, err := strconv.Atoi(id)
	if err != nil {
		return "", ErrNotReady
	}
	templateID, _ := strconv.Atoi(ref.TemplateID)

	var res downloadResponse
	err = o.post(ctx, "/searchdocuments/download", genericDownloadRequest{
		TemplateID: templateID,
		DocumentID: docID,
	}, &res)
	if err != nil {
		return "", err
	}
	if res.Error {
		return "", ErrEmptyPayload
	}
	return res.content(), nil
}

type statusRequest struct {
	UID   string `json:"uuid,omitempty"`
	GedID string `json:"id_ged,omitempty"`
}

type statusResponse struct {
	Accepted bool `json:"aceito"`
}

// CheckAccepted looks the acknowledgment status up, keyed by unique id or
// ged id. A lookup failure leaves the status unknown rather than assuming
// false. Results are cached for the preview session.
func (o *Orchestrator) CheckAccepted(ctx context.Context, ref document.Ref) document.Acceptance {
	key := ref.AcceptanceKey()
	if key == "" {
		return document.AcceptanceUnknown
	}

	o.mu.Lock()
	if cached, ok := o.accepted[key]; ok {
		o.mu.Unlock()
		return cached
	}
	o.mu.Unlock()

	req := statusRequest{}
	switch ref.Category {
	case document.CategoryPayslip, document.CategoryBenefits:
		req.UID = key
	default:
		req.GedID = key
	}

	var res statusResponse
	if err := o.backend.Post(ctx, "/status-doc/consultar", req, &res); err != nil {
		o.log.WarnContext(ctx, "acceptance lookup failed",
			logger.Category(string(ref.Category)),
			logger.Error(err),
		)
		return document.AcceptanceUnknown
	}

	status := document.AcceptancePending
	if res.Accepted {
		status = document.AcceptanceConfirmed
	}
	o.mu.Lock()
	o.accepted[key] = status
	o.mu.Unlock()
	return status
}

func (o *Orchestrator) markAccepted(key string) {
	if key == "" {
		return
	}
	o.mu.Lock()
	o.accepted[key] = document.AcceptanceConfirmed
	o.mu.Unlock()
}
