package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPricing(t *testing.T) {
	p := DefaultPricing()

	assert.InDelta(t, 0.000125, p.InputCost(1000), 1e-12)
	assert.InDelta(t, 0.000375, p.OutputCost(1000), 1e-12)
	assert.InDelta(t, 0.0000625, p.InputCost(500), 1e-12)
	assert.Zero(t, p.OutputCost(0))
}

func TestCharCountUsesCodePoints(t *testing.T) {
	assert.Equal(t, 5, CharCount("héllo"))
	assert.Equal(t, 2, CharCount("日本"))
}
