package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
)

func TestAcceptanceKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  document.Ref
		want string
	}{
		{
			name: "payslip keys by uuid",
			ref:  document.Ref{Category: document.CategoryPayslip, UID: "u-1", DocumentID: "481"},
			want: "u-1",
		},
		{
			name: "benefits keys by uuid",
			ref:  document.Ref{Category: document.CategoryBenefits, UID: "b-1"},
			want: "b-1",
		},
		{
			name: "generic prefers the document id",
			ref:  document.Ref{Category: document.CategoryGeneric, DocumentID: "481", GedID: "9"},
			want: "481",
		},
		{
			name: "generic falls back to the ged id",
			ref:  document.Ref{Category: document.CategoryGeneric, GedID: "9"},
			want: "9",
		},
		{
			name: "year-only variant follows the generic rule",
			ref:  document.Ref{Category: document.CategoryTRCT, DocumentID: "310", GedID: "311"},
			want: "310",
		},
		{
			name: "nothing to key by",
			ref:  document.Ref{Category: document.CategoryGeneric},
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.ref.AcceptanceKey())
		})
	}
}

func TestRetrievalReady(t *testing.T) {
	t.Parallel()

	assert.True(t, document.Ref{Category: document.CategoryPayslip, UID: "u-1", Period: "202403"}.RetrievalReady())
	assert.True(t, document.Ref{Category: document.CategoryPayslip, Lot: "1", Period: "202403"}.RetrievalReady())
	assert.False(t, document.Ref{Category: document.CategoryPayslip, UID: "u-1", Period: "2024-3"}.RetrievalReady())
	assert.False(t, document.Ref{Category: document.CategoryBenefits, Period: "202403"}.RetrievalReady())

	assert.True(t, document.Ref{Category: document.CategoryGeneric, DocumentID: "481"}.RetrievalReady())
	assert.True(t, document.Ref{Category: document.CategoryTRCT, GedID: "9"}.RetrievalReady())
	assert.False(t, document.Ref{Category: document.CategoryGeneric}.RetrievalReady())
}
