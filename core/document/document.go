// Package document holds the shared vocabulary of the portal: document
// categories, the reference that identifies one retrievable artifact, and
// the fetched payload with its acceptance state.
package document

import "github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/period"

// Category names one discovery/retrieval pipeline.
type Category string

const (
	// CategoryPayslip is the monthly payslip (holerite).
	CategoryPayslip Category = "holerite"
	// CategoryBenefits is the employee-benefits statement.
	CategoryBenefits Category = "beneficios"
	// CategoryGeneric is any GED-backed document browsed by type name.
	CategoryGeneric Category = "generico"
	// CategoryTRCT is the year-granular termination-notice / income-report
	// variant of the generic pipeline.
	CategoryTRCT Category = "informetrct"
	// CategoryReceipts is the VA/VT receipt variant, which carries the
	// client id in its search filter.
	CategoryReceipts Category = "recibos"
)

// YearOnly reports whether the category has no month granularity.
func (c Category) YearOnly() bool {
	return c == CategoryTRCT
}

// Ref identifies one retrievable artifact before its payload is fetched.
// Which fields are set depends on the category: payslip and benefits carry
// registration/period/lot/uid, generic carries the GED identifiers.
type Ref struct {
	Category Category `json:"categoria"`

	Company      string `json:"empresa,omitempty"`
	Registration string `json:"matricula,omitempty"`
	CPF          string `json:"cpf,omitempty"`
	// Period is the competência in canonical YYYYMM form (YYYY for the
	// year-only category).
	Period string `json:"competencia,omitempty"`

	Lot         string `json:"lote,omitempty"`
	UID         string `json:"uuid,omitempty"`
	CalcType    string `json:"tipo_calculo,omitempty"`
	Description string `json:"descricao,omitempty"`

	DocumentID string `json:"id_documento,omitempty"`
	GedID      string `json:"id_ged,omitempty"`
	TemplateID string `json:"id_tipo,omitempty"`
	TypeName   string `json:"tipo_documento,omitempty"`
	FileName   string `json:"nome_arquivo,omitempty"`
	Client     string `json:"cliente,omitempty"`
	CostCenter string `json:"centro_de_custo,omitempty"`
	Size       string `json:"tamanho,omitempty"`
	Status     string `json:"status,omitempty"`
}

// RetrievalReady reports whether the reference carries enough identity to be
// turned into a payload: an identifying key plus, outside the generic
// pipeline, a normalized period.
func (r Ref) RetrievalReady() bool {
	switch r.Category {
	case CategoryPayslip, CategoryBenefits:
		return (r.UID != "" || r.Lot != "") && period.Valid(r.Period)
	default:
		return r.DocumentID != "" || r.GedID != ""
	}
}

// AcceptanceKey returns the id acceptance is tracked under: the unique id
// for payslip/benefits, the document id (falling back to the GED id)
// otherwise.
func (r Ref) AcceptanceKey() string {
	switch r.Category {
	case CategoryPayslip, CategoryBenefits:
		return r.UID
	default:
		if r.DocumentID != "" {
			return r.DocumentID
		}
		return r.GedID
	}
}

// Acceptance is the tri-state acknowledgment flag. Unknown renders
// distinctly from both true and false.
type Acceptance int

const (
	// AcceptanceUnknown means the status lookup has not resolved.
	AcceptanceUnknown Acceptance = iota
	// AcceptancePending means the backend knows the document and it has not
	// been accepted yet.
	AcceptancePending
	// AcceptanceConfirmed means the document was accepted.
	AcceptanceConfirmed
)

func (a Acceptance) String() string {
	switch a {
	case AcceptancePending:
		return "pending"
	case AcceptanceConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Payload is the fetched binary content, still base64-encoded, plus the
// acceptance state cached for the preview session.
type Payload struct {
	Base64   string
	Accepted Acceptance
}
