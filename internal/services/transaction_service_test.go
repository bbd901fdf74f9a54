package services

import (
	"testing"

	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotal(t *testing.T) {
	// 10% off 20000 is 18000 per unit.
	discounted := &models.Food{Price: 20000, Discount: 10}
	plain := &models.Food{Price: 5000}

	testCases := []struct {
		name     string
		details  []models.DetailOrder
		expected float64
	}{
		{
			name:     "single discounted item",
			details:  []models.DetailOrder{{Qty: 1, Food: discounted}},
			expected: 18000,
		},
		{
			name:     "quantity multiplies the discounted price",
			details:  []models.DetailOrder{{Qty: 2, Food: discounted}},
			expected: 36000,
		},
		{
			name: "mixed items",
			details: []models.DetailOrder{
				{Qty: 2, Food: discounted},
				{Qty: 3, Food: plain},
			},
			expected: 51000,
		},
		{
			name:     "no line items",
			details:  nil,
			expected: 0,
		},
		{
			name: "detail without a loaded food is skipped",
			details: []models.DetailOrder{
				{Qty: 5},
				{Qty: 1, Food: plain},
			},
			expected: 5000,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, ComputeTotal(tc.details), 0.001)
		})
	}
}

func TestComputeTotalRounding(t *testing.T) {
	// 3 x (9.99 minus 15%) = 25.4745, rounds to 25.47.
	food := &models.Food{Price: 9.99, Discount: 15}
	total := ComputeTotal([]models.DetailOrder{{Qty: 3, Food: food}})
	assert.Equal(t, 25.47, total)
}
