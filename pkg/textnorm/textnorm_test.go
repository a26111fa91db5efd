package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/textnorm"
)

func TestFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "beneficios", textnorm.Fold("Benefícios"))
	assert.Equal(t, "beneficios", textnorm.Fold("  BENEFICIOS  "))
	assert.Equal(t, "informe rendimento", textnorm.Fold("Informe Rendimento"))
	assert.Equal(t, "rescisao", textnorm.Fold("Rescisão"))
	assert.Equal(t, "", textnorm.Fold(""))
}

func TestContains(t *testing.T) {
	t.Parallel()

	assert.True(t, textnorm.Contains("Termo de Rescisão TRCT", "rescis"))
	assert.True(t, textnorm.Contains("Recibo VA", "recibo va"))
	assert.False(t, textnorm.Contains("Holerite", "recibo"))
}
