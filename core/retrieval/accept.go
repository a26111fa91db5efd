package retrieval

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/apiclient"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/notice"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/cpf"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/period"
)

// Download is the decoded content plus the name it should be saved under.
type Download struct {
	Filename string
	Data     []byte
}

type confirmRequest struct {
	Accepted     bool   `json:"aceito"`
	DocType      string `json:"tipo_doc"`
	Base64       string `json:"base64"`
	CPF          string `json:"cpf"`
	Registration string `json:"matricula"`
	Unit         string `json:"unidade,omitempty"`
	Period       string `json:"competencia,omitempty"`
	UID          string `json:"uuid,omitempty"`
	GedID        string `json:"id_ged,omitempty"`
}

// AcceptAndDownload confirms acceptance and hands back the decoded content
// as one action. The download is never blocked: a failed local validation
// skips the confirmation with the matching sentinel error, and a failed
// confirmation call downgrades to a warning — in both cases the returned
// Download is still usable.
func (o *Orchestrator) AcceptAndDownload(ctx context.Context, ref document.Ref, payload document.Payload) (Download, error) {
	dl, decErr := o.decode(ref, payload)
	if decErr != nil {
		return Download{}, decErr
	}

	if err := validateConfirmation(ref); err != nil {
		o.notifier.Notify(notice.Notice{
			Level:       notice.LevelWarning,
			Title:       "Não foi possível confirmar o aceite",
			Description: "Dados incompletos para confirmação. O download continuará normalmente.",
		})
		return dl, err
	}

	req := confirmRequest{
		Accepted:     true,
		DocType:      string(ref.Category),
		Base64:       payload.Base64,
		CPF:          cpf.Digits(ref.CPF),
		Registration: ref.Registration,
		Unit:         ref.Client,
		Period:       ref.Period,
	}
	switch ref.Category {
	case document.CategoryPayslip, document.CategoryBenefits:
		req.UID = ref.UID
	default:
		req.GedID = ref.GedID
	}

	if err := o.backend.Post(ctx, "/status-doc", req, nil); err != nil {
		o.log.WarnContext(ctx, "acceptance confirmation failed",
			logger.Category(string(ref.Category)),
			logger.Error(err),
		)
		o.notifier.Notify(notice.Notice{
			Level:       notice.LevelWarning,
			Title:       "Não foi possível confirmar o aceite",
			Description: apiclient.Message(err, "O download continuará normalmente."),
		})
		return dl, errors.Join(ErrConfirmFailed, err)
	}

	o.markAccepted(ref.AcceptanceKey())
	return dl, nil
}

// validateConfirmation applies the local checks confirmation requires: an
// 11-digit tax id and a period always, plus registration and the canonical
// six-digit competência shape for the payroll categories. No network call is
// made when any of them fails.
func validateConfirmation(ref document.Ref) error {
	if len(cpf.Digits(ref.CPF)) != 11 {
		return ErrInvalidCPF
	}
	switch ref.Category {
	case document.CategoryPayslip, document.CategoryBenefits:
		if ref.Registration == "" {
			return ErrMissingRegistration
		}
		if !period.Valid(ref.Period) {
			return ErrInvalidPeriod
		}
	default:
		if strings.TrimSpace(ref.Period) == "" {
			return ErrInvalidPeriod
		}
	}
	return nil
}

func (o *Orchestrator) decode(ref document.Ref, payload document.Payload) (Download, error) {
	data, err := Decode(payload.Base64)
	if err != nil {
		return Download{}, err
	}
	return Download{Filename: Filename(ref), Data: data}, nil
}

// Decode turns the base64 payload into bytes, tolerating a data-URL prefix.
func Decode(content string) ([]byte, error) {
	if i := strings.Index(content, ";base64,"); i >= 0 && strings.HasPrefix(content, "data:") {
		content = content[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil {
		return nil, errors.Join(ErrBadContent, err)
	}
	return data, nil
}

// Filename derives the suggested save name per category. Purely a naming
// convention, not a contract with the backend.
func Filename(ref document.Ref) string {
	switch ref.Category {
	case document.CategoryPayslip:
		return "holerite_" + ref.Registration + "_" + ref.Period + ".pdf"
	case document.CategoryBenefits:
		return "beneficios_" + ref.Registration + "_" + ref.Period + ".pdf"
	default:
		if ref.FileName != "" {
			return ref.FileName
		}
		if ref.TypeName != "" {
			return ref.TypeName + ".pdf"
		}
		return "documento.pdf"
	}
}
