package rate

import "errors"

var ErrZeroRate = errors.New("source currency rate is zero")

// CalculateExchangeRate derives the source→target rate from two rates
// expressed against the same base currency.
func CalculateExchangeRate(sourceRate, targetRate float64) (float64, error) {
	if sourceRate == 0 {
		return 0, ErrZeroRate
	}
	return targetRate / sourceRate, nil
}

// Convert applies a rate to an amount. No validation; negative and zero
// amounts pass through the formula unchanged.
func Convert(amount, rate float64) float64 {
	return amount * rate
}
