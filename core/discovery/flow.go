// Package discovery drives the company → registration → year → month
// selection funnel that turns user choices into a retrievable document
// reference. One Flow instance serves one category; the transition semantics
// are shared and only the endpoint bindings differ.
package discovery

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/notice"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/session"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/cpf"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/period"
)

// Subject is the person documents are discovered for, carried from the
// session profile.
type Subject struct {
	CPF       string
	Manager   bool
	Client    string
	Companies []session.Company
	// TypeName is the chosen document-type name; only the generic pipelines
	// use it.
	TypeName string
	// TemplateID is the GED template the type name lives under, carried
	// into every generic search and download.
	TemplateID string
}

// Flow is one category's selection funnel. Safe for concurrent use; a
// selection that supersedes an in-flight fetch cancels it, and the stale
// result is discarded.
type Flow struct {
	category document.Category
	bind     binding
	backend  Backend
	subject  Subject
	notifier notice.Notifier
	log      *slog.Logger

	mu            sync.Mutex
	state         State
	company       string
	registrations []string
	registration  string
	items         []period.Item
	year          int
	month         int
	candidates    []document.Ref
	resolved      *document.Ref
	cache         map[string][]period.Item
	gen           int
	cancel        context.CancelFunc
	lastFailed    func(ctx context.Context) error
}

// Option configures a flow.
type Option func(*Flow)

// WithLogger sets the logger used for funnel diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(f *Flow) {
		if log != nil {
			f.log = log
		}
	}
}

// WithNotifier routes user-facing notices to n.
func WithNotifier(n notice.Notifier) Option {
	return func(f *Flow) {
		if n != nil {
			f.notifier = n
		}
	}
}

// New creates a flow for the category. Generic-pipeline categories are
// derived from the subject's document-type name, so passing CategoryGeneric
// with a TRCT type name yields the year-only variant.
func New(cat document.Category, subject Subject, backend Backend, opts ...Option) (*Flow, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	switch cat {
	case document.CategoryPayslip, document.CategoryBenefits:
	default:
		if subject.TypeName == "" {
			return nil, ErrTypeNameRequired
		}
		cat = classify(subject.TypeName)
	}

	subject.CPF = cpf.Digits(subject.CPF)

	f := &Flow{
		category: cat,
		bind:     bindingFor(cat),
		backend:  backend,
		subject:  subject,
		notifier: notice.Discard,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    StateNoCompany,
		cache:    make(map[string][]period.Item),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Category returns the pipeline this flow serves.
func (f *Flow) Category() document.Category { return f.category }

// State returns the current funnel state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Registrations lists the registration numbers under the selected company.
func (f *Flow) Registrations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.registrations...)
}

// Years lists the available years, newest first.
func (f *Flow) Years() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return period.Years(f.items)
}

// Months lists the selected year's available months, newest first.
func (f *Flow) Months() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return period.Months(f.items, f.year)
}

// Candidates returns the documents the last resolution produced.
func (f *Flow) Candidates() []document.Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]document.Ref(nil), f.candidates...)
}

// Resolved returns the reference ready for retrieval, or nil.
func (f *Flow) Resolved() *document.Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved == nil {
		return nil
	}
	ref := *f.resolved
	return &ref
}

// SelectCompany picks a company and resets every downstream selection. A
// company with exactly one registration auto-selects it and proceeds to the
// period fetch.
func (f *Flow) SelectCompany(ctx context.Context, companyID string) error {
	f.mu.Lock()
	f.supersedeLocked()
	f.company = companyID
	f.registration = ""
	f.registrations = registrationsOf(f.subject.Companies, companyID)
	f.items = nil
	f.year, f.month = 0, 0
	f.candidates = nil
	f.resolved = nil
	f.lastFailed = nil

	if len(f.registrations) == 1 {
		f.registration = f.registrations[0]
		f.mu.Unlock()
		return f.loadPeriods(ctx)
	}
	f.state = StateNeedRegistration
	f.mu.Unlock()
	return nil
}

func registrationsOf(companies []session.Company, companyID string) []string {
	seen := make(map[string]struct{})
	regs := make([]string, 0, 1)
	for _, c := range companies {
		if c.ID != companyID || c.Registration == "" {
			continue
		}
		if _, ok := seen[c.Registration]; ok {
			continue
		}
		seen[c.Registration] = struct{}{}
		regs = append(regs, c.Registration)
	}
	return regs
}

// SelectRegistration picks a registration under the selected company and
// proceeds to the period fetch.
func (f *Flow) SelectRegistration(ctx context.Context, registration string) error {
	f.mu.Lock()
	if f.company == "" {
		f.mu.Unlock()
		return ErrCompanyRequired
	}
	f.supersedeLocked()
	f.registration = registration
	f.items = nil
	f.year, f.month = 0, 0
	f.candidates = nil
	f.resolved = nil
	f.lastFailed = nil
	f.mu.Unlock()
	return f.loadPeriods(ctx)
}

// SelectYear narrows to one year. The year-only category resolves directly,
// since it has no month granularity.
func (f *Flow) SelectYear(ctx context.Context, year int) error {
	f.mu.Lock()
	if f.state != StatePeriodsLoaded && f.state != StateYearSelected &&
		f.state != StateResolved && f.state != StateChoosing &&
		f.state != StateNotFound && f.state != StateError {
		f.mu.Unlock()
		return ErrPeriodsNotLoaded
	}
	f.supersedeLocked()
	f.year = year
	f.month = 0
	f.candidates = nil
	f.resolved = nil
	f.lastFailed = nil

	if f.category.YearOnly() {
		f.mu.Unlock()
		return f.resolve(ctx)
	}
	f.state = StateYearSelected
	f.mu.Unlock()
	return nil
}

// SelectMonth picks a month within the selected year and resolves it.
// Re-selecting the same month after a transient failure retries it.
func (f *Flow) SelectMonth(ctx context.Context, month int) error {
	f.mu.Lock()
	if f.year == 0 {
		f.mu.Unlock()
		return ErrPeriodsNotLoaded
	}
	f.supersedeLocked()
	f.month = month
	f.candidates = nil
	f.resolved = nil
	f.mu.Unlock()
	return f.resolve(ctx)
}

// Choose disambiguates among several candidates by unique id.
func (f *Flow) Choose(uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.candidates {
		if f.candidates[i].UID == uid {
			ref := f.candidates[i]
			f.resolved = &ref
			f.state = StateResolved
			return nil
		}
	}
	return ErrUnknownCandidate
}

// Retry replays the last failed step.
func (f *Flow) Retry(ctx context.Context) error {
	f.mu.Lock()
	op := f.lastFailed
	f.mu.Unlock()
	if op == nil {
		return ErrNothingToRetry
	}
	return op(ctx)
}

// supersedeLocked cancels the in-flight fetch, if any, and bumps the
// generation so its late result is discarded.
func (f *Flow) supersedeLocked() {
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// beginFetchLocked arms a cancellable fetch and returns the generation to
// check the result against.
func (f *Flow) beginFetchLocked(ctx context.Context) (context.Context, int) {
	f.gen++
	gen := f.gen
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	return ctx, gen
}

func (f *Flow) loadPeriods(ctx context.Context) error {
	f.mu.Lock()
	key := f.company + "|" + f.registration
	if items, ok := f.cache[key]; ok {
		f.items = items
		f.state = StatePeriodsLoaded
		f.mu.Unlock()
		return nil
	}
	fetchCtx, gen := f.beginFetchLocked(ctx)
	f.state = StatePeriodsLoading
	sel := selection{company: f.company, registration: f.registration}
	f.mu.Unlock()

	items, err := f.bind.fetchPeriods(fetchCtx, f.backend, f.subject, sel)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return nil
	}
	f.cancel = nil

	switch {
	case err == nil:
		f.cache[key] = items
		f.items = items
		f.state = StatePeriodsLoaded
		return nil

	case apiclient.IsCanceled(err):
		return nil

	case apiclient.IsNotFound(err):
		f.cache[key] = nil
		f.items = nil
		f.state = StatePeriodsLoaded
		f.notifier.Notify(notice.Notice{
			Level:       notice.LevelWarning,
			Title:       "Nenhum período disponível",
			Description: "Não localizamos documentos para os dados informados.",
		})
		return nil

	default:
		f.state = StateError
		f.lastFailed = f.loadPeriods
		f.notifyFailure(ctx, err, "Não foi possível consultar os períodos disponíveis.")
		return err
	}
}

func (f *Flow) resolve(ctx context.Context) error {
	f.mu.Lock()
	fetchCtx, gen := f.beginFetchLocked(ctx)
	f.state = StateResolving
	sel := selection{
		company:      f.company,
		registration: f.registration,
		year:         f.year,
		month:        f.month,
	}
	f.mu.Unlock()

	refs, err := f.bind.resolve(fetchCtx, f.backend, f.subject, sel)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return nil
	}
	f.cancel = nil

	switch {
	case apiclient.IsCanceled(err):
		return nil

	case apiclient.IsNotFound(err), err == nil && len(refs) == 0:
		f.candidates = nil
		f.resolved = nil
		f.state = StateNotFound
		f.notifier.Notify(notice.Notice{
			Level:       notice.LevelWarning,
			Title:       "Nenhum documento encontrado",
			Description: "Não localizamos documentos para os dados informados.",
		})
		return nil

	case err != nil:
		f.state = StateError
		f.lastFailed = f.resolve
		f.notifyFailure(ctx, err, "Não foi possível buscar o documento.")
		return err
	}

	f.candidates = refs
	if len(refs) == 1 || f.bind.autoFirst {
		ref := refs[0]
		f.resolved = &ref
		f.state = StateResolved
		f.log.DebugContext(ctx, "document resolved",
			logger.Category(string(f.category)),
			logger.Company(sel.company),
			logger.Registration(sel.registration),
			logger.Period(ref.Period),
		)
		return nil
	}

	// Several candidates for the same period: all are presented, none is
	// picked automatically.
	f.resolved = nil
	f.state = StateChoosing
	return nil
}

func (f *Flow) notifyFailure(ctx context.Context, err error, fallback string) {
	f.log.WarnContext(ctx, "discovery step failed",
		logger.Category(string(f.category)),
		logger.Error(err),
	)
	f.notifier.Notify(notice.Notice{
		Level:          notice.LevelError,
		Title:          "Falha ao consultar documentos",
		Description:    apiclient.Message(err, fallback),
		CanRetry:       !apiclient.IsAuthError(err),
		SessionExpired: apiclient.IsAuthError(err),
	})
}
