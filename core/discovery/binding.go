package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/period"
)

// Backend is the slice of the portal client the discovery flows call.
// *apiclient.Client satisfies it.
type Backend interface {
	Post(ctx context.Context, path string, in, out any) error
}

type selection struct {
	company      string
	registration string
	year         int
	month        int
}

func (s selection) period() string {
	return period.Make(s.year, s.month)
}

// flexStr decodes a JSON string or number into a string. The backend is
// inconsistent about which it sends for ids and lot numbers.
type flexStr string

func (s *flexStr) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexStr(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexStr(n.String())
	return nil
}

// binding is the category-specific half of the flow: which endpoints to
// call and how their responses map onto references. The transition semantics
// live entirely in Flow and are identical across categories.
type binding struct {
	category document.Category
	// autoFirst resolves straight to the first candidate when the search
	// returns several, instead of asking the user to disambiguate.
	autoFirst bool

	fetchPeriods func(ctx context.Context, b Backend, sub Subject, sel selection) ([]period.Item, error)
	resolve      func(ctx context.Context, b Backend, sub Subject, sel selection) ([]document.Ref, error)
}

func bindingFor(cat document.Category) binding {
	switch cat {
	case document.CategoryPayslip:
		return binding{
			category:     cat,
			fetchPeriods: payslipPeriods,
			resolve:      payslipResolve,
		}
	case document.CategoryBenefits:
		return binding{
			category:     cat,
			autoFirst:    true,
			fetchPeriods: benefitsPeriods,
			resolve:      benefitsResolve,
		}
	default:
		return binding{
			category:     cat,
			autoFirst:    true,
			fetchPeriods: searchPeriods,
			resolve:      searchResolve,
		}
	}
}

type competenciasRequest struct {
	CPF          string `json:"cpf"`
	Registration string `json:"matricula"`
	Company      string `json:"empresa,omitempty"`
}

type competenciaItem struct {
	Year  int `json:"ano"`
	Month int `json:"mes"`
}

type competenciasResponse struct {
	Competencias []competenciaItem `json:"competencias"`
}

func parsePeriods(raw []competenciaItem) []period.Item {
	items := make([]period.Item, 0, len(raw))
	for _, c := range raw {
		if c.Year == 0 || c.Month < 1 || c.Month > 12 {
			continue
		}
		items = append(items, period.Item{Year: c.Year, Month: c.Month})
	}
	return items
}

func payslipPeriods(ctx context.Context, b Backend, sub Subject, sel selection) ([]period.Item, error) {
	req := competenciasRequest{CPF: sub.CPF, Registration: sel.registration, Company: sel.company}
	var res competenciasResponse
	if err := b.Post(ctx, "/documents/holerite/competencias", req, &res); err != nil {
		return nil, err
	}
	return parsePeriods(res.Competencias), nil
}

type payslipSearchRequest struct {
	CPF          string `json:"cpf"`
	Registration string `json:"matricula"`
	Period       string `json:"competencia"`
	Company      string `json:"empresa,omitempty"`
}

type payslipHeader struct {
	Lot flexStr `json:"lote"`
}

type payslipItem struct {
	UID         string         `json:"uuid"`
	Accepted    bool           `json:"aceito"`
	CalcType    string         `json:"tipo_calculo"`
	Description string         `json:"descricao"`
	Header      *payslipHeader `json:"cabecalho"`
}

func (h payslipItem) lot() string {
	if h.Header == nil {
		return ""
	}
	return string(h.Header.Lot)
}

type payslipSearchResponse struct {
	PeriodUsed string        `json:"competencia_utilizada"`
	Items      []payslipItem `json:"holerites"`
}

func payslipResolve(ctx context.Context, b Backend, sub Subject, sel selection) ([]document.Ref, error) {
	req := payslipSearchRequest{
		CPF:          sub.CPF,
		Registration: sel.registration,
		Period:       sel.period(),
		Company:      sel.company,
	}
	var res payslipSearchResponse
	if err := b.Post(ctx, "/documents/holerite/buscar", req, &res); err != nil {
		return nil, err
	}

	p := period.Normalize(res.PeriodUsed)
	if !period.Valid(p) {
		p = sel.period()
	}

	refs := make([]document.Ref, 0, len(res.Items))
	for _, h := range res.Items {
		lot := h.lot()
		// A lone payslip with no lot number still builds under lot 1.
		if lot == "" && len(res.Items) == 1 {
			lot = "1"
		}
		refs = append(refs, document.Ref{
			Category:     document.CategoryPayslip,
			Company:      sel.company,
			Registration: sel.registration,
			CPF:          sub.CPF,
			Period:       p,
			Lot:          lot,
			UID:          h.UID,
			CalcType:     h.CalcType,
			Description:  h.Description,
		})
	}
	return refs, nil
}

func benefitsPeriods(ctx context.Context, b Backend, sub Subject, sel selection) ([]period.Item, error) {
	req := competenciasRequest{CPF: sub.CPF, Registration: sel.registration, Company: sel.company}
	var res competenciasResponse
	if err := b.Post(ctx, "/documents/beneficios/competencias", req, &res); err != nil {
		return nil, err
	}
	return parsePeriods(res.Competencias), nil
}

type benefitsSearchRequest struct {
	CPF          string `json:"cpf"`
	Registration string `json:"matricula"`
	Period       string `json:"competencia"`
}

type benefitsHeader struct {
	UID string  `json:"uuid"`
	Lot flexStr `json:"lote"`
}

type benefitsLine struct {
	Lot flexStr `json:"lote"`
}

// benefitsSearchResponse accepts the header under either the accented or the
// plain key; the backend has shipped both spellings. The unique id may also
// arrive at the top level and the lot number on the first statement line.
type benefitsSearchResponse struct {
	UID            string          `json:"uuid"`
	Header         *benefitsHeader `json:"cabecalho"`
	HeaderAccented *benefitsHeader `json:"cabeçalho"`
	Lines          []benefitsLine  `json:"beneficios"`
}

func (r benefitsSearchResponse) header() *benefitsHeader {
	if r.Header != nil {
		return r.Header
	}
	return r.HeaderAccented
}

func (r benefitsSearchResponse) identity() (uid, lot string) {
	if hdr := r.header(); hdr != nil {
		uid = hdr.UID
		lot = string(hdr.Lot)
	}
	if uid == "" {
		uid = r.UID
	}
	if lot == "" && len(r.Lines) > 0 {
		lot = string(r.Lines[0].Lot)
	}
	return uid, lot
}

// benefitsResolve resolves the single statement for the period. The montar
// step needs both the unique id and the lot number, so a response missing
// either gets one secondary lookup before the flow reports an empty result.
func benefitsResolve(ctx context.Context, b Backend, sub Subject, sel selection) ([]document.Ref, error) {
	req := benefitsSearchRequest{
		CPF:          sub.CPF,
		Registration: sel.registration,
		Period:       sel.period(),
	}

	var uid, lot string
	for i := 0; i < 2; i++ {
		var res benefitsSearchResponse
		if err := b.Post(ctx, "/documents/beneficios/buscar", req, &res); err != nil {
			return nil, err
		}
		if uid, lot = res.identity(); uid != "" && lot != "" {
			break
		}
	}
	if uid == "" || lot == "" {
		return nil, nil
	}

	return []document.Ref{{
		Category:     document.CategoryBenefits,
		Company:      sel.company,
		Registration: sel.registration,
		CPF:          sub.CPF,
		Period:       sel.period(),
		Lot:          lot,
		UID:          uid,
	}}, nil
}

type searchParam struct {
	Name  string `json:"nome"`
	Value string `json:"valor"`
}

// gedSearchRequest is the shape every GED search route takes. An empty
// Period asks for the available competências; a set one ("YYYY-MM", or
// "YYYY" when PeriodField is "ano") asks for the documents in it.
type gedSearchRequest struct {
	TemplateID  int           `json:"id_template"`
	Params      []searchParam `json:"cp"`
	PeriodField string        `json:"campo_anomes"`
	Period      string        `json:"anomes"`
	// CPF rides at the top level only on the manager's flat search.
	CPF string `json:"cpf,omitempty"`
}

func templateID(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func searchParams(cat document.Category, sub Subject, sel selection) []searchParam {
	if cat.YearOnly() {
		// Year-granular and cross-company: the tax id is the only filter
		// besides the type name.
		return []searchParam{
			{Name: "tipodedoc", Value: sub.TypeName},
			{Name: "cpf", Value: sub.CPF},
		}
	}
	cp := []searchParam{
		{Name: "tipodedoc", Value: sub.TypeName},
		{Name: "matricula", Value: sel.registration},
		{Name: "colaborador", Value: sub.CPF},
	}
	if cat == document.CategoryReceipts && sel.company != "" {
		cp = append(cp, searchParam{Name: "cliente", Value: sel.company})
	}
	return cp
}

type gedPeriodsResponse struct {
	Anomes []competenciaItem `json:"anomes"`
	Anos   []struct {
		Year int `json:"ano"`
	} `json:"anos"`
}

type gedDoc struct {
	DocumentID flexStr `json:"id_documento"`
	GedID      flexStr `json:"id_ged"`
	ID         flexStr `json:"id"`
	NormPeriod string  `json:"_norm_anomes"`
	Period     string  `json:"anomes"`
	Year       flexStr `json:"ano"`
	TypeName   string  `json:"tipodedoc"`
	FileName   string  `json:"nomearquivo"`
	Client     string  `json:"cliente"`
	CostCenter string  `json:"cr"`
	Size       string  `json:"tamanho"`
	Status     string  `json:"status"`
}

type gedSearchResponse struct {
	TotalRaw   int      `json:"total_bruto"`
	TotalFound int      `json:"total_encontrado"`
	Documents  []gedDoc `json:"documentos"`
}

// searchPath routes a generic-pipeline category to its search endpoint.
func searchPath(cat document.Category) string {
	switch cat {
	case document.CategoryTRCT:
		return "/documents/search/informetrct"
	case document.CategoryReceipts:
		return "/documents/search/recibos"
	default:
		return "/documents/search"
	}
}

// ref normalizes one search hit. The id arrives under a handful of keys and
// the period under another handful; the first non-empty one wins, with the
// searched period as the last fallback.
func (d gedDoc) ref(cat document.Category, searched string) document.Ref {
	id := string(d.DocumentID)
	if id == "" {
		id = string(d.GedID)
	}
	if id == "" {
		id = string(d.ID)
	}
	p := d.NormPeriod
	if p == "" {
		p = d.Period
	}
	if p == "" {
		p = string(d.Year)
	}
	if p == "" {
		p = searched
	}
	return document.Ref{
		Category:   cat,
		Period:     period.Normalize(p),
		DocumentID: id,
		GedID:      string(d.GedID),
		TypeName:   d.TypeName,
		FileName:   d.FileName,
		Client:     d.Client,
		CostCenter: d.CostCenter,
		Size:       d.Size,
		Status:     d.Status,
	}
}

// searchPeriods asks the search route for the available competências: the
// usual request with an empty anomes. The year-only category answers under
// "anos", the others under "anomes".
func searchPeriods(ctx context.Context, b Backend, sub Subject, sel selection) ([]period.Item, error) {
	cat := classify(sub.TypeName)
	req := gedSearchRequest{
		TemplateID:  templateID(sub.TemplateID),
		Params:      searchParams(cat, sub, sel),
		PeriodField: "anomes",
	}
	if cat.YearOnly() {
		req.PeriodField = "ano"
	}

	var res gedPeriodsResponse
	if err := b.Post(ctx, searchPath(cat), req, &res); err != nil {
		return nil, err
	}

	if cat.YearOnly() {
		items := make([]period.Item, 0, len(res.Anos))
		for _, y := range res.Anos {
			if y.Year == 0 {
				continue
			}
			items = append(items, period.Item{Year: y.Year})
		}
		return items, nil
	}
	return parsePeriods(res.Anomes), nil
}

// searchResolve re-issues the search with the selected period filled in and
// maps the returned documents.
func searchResolve(ctx context.Context, b Backend, sub Subject, sel selection) ([]document.Ref, error) {
	cat := classify(sub.TypeName)
	req := gedSearchRequest{
		TemplateID:  templateID(sub.TemplateID),
		Params:      searchParams(cat, sub, sel),
		PeriodField: "anomes",
		Period:      fmt.Sprintf("%04d-%02d", sel.year, sel.month),
	}
	if cat.YearOnly() {
		req.PeriodField = "ano"
		req.Period = strconv.Itoa(sel.year)
	}

	var res gedSearchResponse
	if err := b.Post(ctx, searchPath(cat), req, &res); err != nil {
		return nil, err
	}

	refs := make([]document.Ref, 0, len(res.Documents))
	for _, d := range res.Documents {
		ref := d.ref(cat, req.Period)
		ref.TemplateID = sub.TemplateID
		if ref.TypeName == "" {
			ref.TypeName = sub.TypeName
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
