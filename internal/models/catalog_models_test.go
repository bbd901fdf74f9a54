package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoodEffectivePrice(t *testing.T) {
	testCases := []struct {
		name     string
		price    float64
		discount float64
		expected float64
	}{
		{"no discount", 20000, 0, 20000},
		{"ten percent off", 20000, 10, 18000},
		{"half price", 5000, 50, 2500},
		{"full discount", 1000, 100, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			food := Food{Price: tc.price, Discount: tc.discount}
			assert.InDelta(t, tc.expected, food.EffectivePrice(), 0.001)
		})
	}
}
