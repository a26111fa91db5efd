package period_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/period"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"202403":  "202403",
		"2024-03": "202403",
		"03/2024": "202403",
		"2024/03": "202403", // lenient digit fallback keeps the order given
		"":        "",
		"2024.03": "202403",
	}
	for in, want := range cases {
		assert.Equal(t, want, period.Normalize(in), "input %q", in)
	}
}

func TestNormalizeRoundTripEquivalence(t *testing.T) {
	t.Parallel()

	// All spellings of the same competência collapse to one canonical value.
	for _, in := range []string{"202403", "2024-03", "03/2024"} {
		assert.Equal(t, "202403", period.Normalize(in))
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, period.Valid("202511"))
	assert.False(t, period.Valid("2025-11"))
	assert.False(t, period.Valid("20251"))
	assert.False(t, period.Valid(""))
}

func TestMakeAndLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "202501", period.Make(2025, 1))
	assert.Equal(t, "202512", period.Make(2025, 12))
	assert.Equal(t, "2025-01", period.Label("202501"))
	assert.Equal(t, "not-a-period", period.Label("not-a-period"))
}

func TestYearsAndMonths(t *testing.T) {
	t.Parallel()

	items := []period.Item{
		{Year: 2023, Month: 12},
		{Year: 2025, Month: 1},
		{Year: 2025, Month: 3},
		{Year: 2025, Month: 3},
		{Year: 2024, Month: 7},
	}

	assert.Equal(t, []int{2025, 2024, 2023}, period.Years(items))
	assert.Equal(t, []int{3, 1}, period.Months(items, 2025))
	assert.Empty(t, period.Months(items, 2020))
}

func TestYear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2025, period.Year("202503"))
	assert.Equal(t, 2025, period.Year("2025"))
	assert.Equal(t, 0, period.Year("xx"))
}
