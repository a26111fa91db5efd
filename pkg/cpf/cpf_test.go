package cpf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/cpf"
)

func TestDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "52998224725", cpf.Digits(" 529.982.247-25 "))
	assert.Equal(t, "", cpf.Digits("abc"))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "529.982.247-25", cpf.Format("52998224725"))
	assert.Equal(t, "529.982", cpf.Format("529982"))
	assert.Equal(t, "529.982.247-25", cpf.Format("529982247259999"))
	assert.Equal(t, "", cpf.Format(""))
}

func TestValid(t *testing.T) {
	t.Parallel()

	// 529.982.247-25 is the canonical valid fixture.
	assert.True(t, cpf.Valid("529.982.247-25"))
	assert.True(t, cpf.Valid("52998224725"))

	assert.False(t, cpf.Valid("52998224724"), "wrong check digit")
	assert.False(t, cpf.Valid("11111111111"), "repeated digits")
	assert.False(t, cpf.Valid("5299822472"), "too short")
	assert.False(t, cpf.Valid(""), "empty")
}
