package ai

import "unicode/utf8"

// Pricing is character based: the model API bills per 1000 characters.
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

func DefaultPricing() Pricing {
	return Pricing{InputPer1K: 0.000125, OutputPer1K: 0.000375}
}

// CharCount counts Unicode code points, the unit the pricing uses.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

func (p Pricing) InputCost(chars int) float64 {
	return float64(chars) / 1000 * p.InputPer1K
}

func (p Pricing) OutputCost(chars int) float64 {
	return float64(chars) / 1000 * p.OutputPer1K
}
