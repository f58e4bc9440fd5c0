package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	limits := DefaultCategoryLimits()

	tests := []struct {
		name  string
		lines int
		want  Category
	}{
		{"empty file", 0, CategoryNormal},
		{"small file", 100, CategoryNormal},
		{"just under soft cap", 1499, CategoryNormal},
		{"exactly soft cap", 1500, CategoryLarge},
		{"between caps", 2500, CategoryLarge},
		{"just under god threshold", 3999, CategoryLarge},
		{"exactly god threshold", 4000, CategoryPotentialGod},
		{"just under hard cap", 4999, CategoryPotentialGod},
		{"exactly hard cap", 5000, CategoryRejected},
		{"over hard cap", 12000, CategoryRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.lines, limits))
		})
	}
}

func TestCategorizeCustomLimits(t *testing.T) {
	limits := CategoryLimits{SoftCap: 10, GodThreshold: 20, HardCap: 30}

	assert.Equal(t, CategoryNormal, Categorize(9, limits))
	assert.Equal(t, CategoryLarge, Categorize(10, limits))
	assert.Equal(t, CategoryPotentialGod, Categorize(20, limits))
	assert.Equal(t, CategoryRejected, Categorize(30, limits))
}

func TestCategoryLimitsValidate(t *testing.T) {
	require.NoError(t, DefaultCategoryLimits().Validate())

	bad := []CategoryLimits{
		{SoftCap: 0, GodThreshold: 10, HardCap: 20},
		{SoftCap: 10, GodThreshold: 10, HardCap: 20},
		{SoftCap: 10, GodThreshold: 20, HardCap: 20},
		{SoftCap: 30, GodThreshold: 20, HardCap: 10},
	}
	for _, limits := range bad {
		assert.ErrorIs(t, limits.Validate(), ErrInvalidInput)
	}
}
