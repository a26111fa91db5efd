package discovery

import (
	"context"
	"strings"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/cpf"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/textnorm"
)

// classify routes a document-type name to its pipeline category. Type names
// come from the backend with inconsistent casing and accents, so matching
// runs over the folded form.
func classify(typeName string) document.Category {
	f := textnorm.Fold(typeName)
	switch {
	case strings.Contains(f, "trct"),
		strings.Contains(f, "rescis"),
		strings.Contains(f, "informe rendimento"),
		strings.Contains(f, "informe de rendimento"):
		return document.CategoryTRCT
	case strings.Contains(f, "recibo"):
		return document.CategoryReceipts
	default:
		return document.CategoryGeneric
	}
}

// ManagerQuery is the flat search managers run instead of the guided funnel.
// At least one of the tax id and the registration must be given; the period
// is accepted in any competência spelling and converted for the backend.
type ManagerQuery struct {
	TypeName     string
	TemplateID   string
	CPF          string
	Registration string
	Period       string
}

// ManagerSearch runs the flat search over the same endpoints the guided
// funnel uses. Unlike the funnel requests, the tax id also rides at the top
// level of the payload.
func (f *Flow) ManagerSearch(ctx context.Context, q ManagerQuery) ([]document.Ref, error) {
	if strings.TrimSpace(q.TypeName) == "" {
		return nil, ErrTypeNameRequired
	}
	digits := cpf.Digits(q.CPF)
	if digits != "" && !cpf.Valid(digits) {
		return nil, ErrCPFRequired
	}
	registration := strings.TrimSpace(q.Registration)
	if digits == "" && registration == "" {
		return nil, ErrIdentityRequired
	}

	cat := classify(q.TypeName)
	req := gedSearchRequest{
		TemplateID: templateID(q.TemplateID),
		Params: []searchParam{
			{Name: "tipodedoc", Value: q.TypeName},
			{Name: "matricula", Value: registration},
			{Name: "colaborador", Value: digits},
		},
		PeriodField: "anomes",
		Period:      managerPeriod(q.Period),
		CPF:         digits,
	}

	var res gedSearchResponse
	if err := f.backend.Post(ctx, searchPath(cat), req, &res); err != nil {
		return nil, err
	}

	refs := make([]document.Ref, 0, len(res.Documents))
	for _, d := range res.Documents {
		ref := d.ref(cat, req.Period)
		ref.TemplateID = q.TemplateID
		if ref.TypeName == "" {
			ref.TypeName = q.TypeName
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// managerPeriod converts the manager's free-form competência input to the
// YYYY-MM shape the search routes expect. "03/2025" and "202503" both come
// out as "2025-03"; anything else passes through.
func managerPeriod(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "/"); i >= 0 {
		month, year := s[:i], s[i+1:]
		if len(month) == 1 {
			month = "0" + month
		}
		return year + "-" + month
	}
	if len(s) == 6 {
		return s[:4] + "-" + s[4:]
	}
	return s
}
