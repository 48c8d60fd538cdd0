package currency

import (
	"context"
)

// Rates maps ISO 4217 currency codes to their multiplier relative to USD.
type Rates map[string]float64

// RateProvider supplies the exchange rate table the cache layer stores under
// the currency region. Implementations own their own refresh and failure
// policy; the cache layer only adds the 24h TTL on top.
type RateProvider interface {
	Rates(ctx context.Context) (Rates, error)
}

// staticRates is the bundled fallback table, relative to USD.
var staticRates = Rates{
	"USD": 1.0,
	"EUR": 0.85,
	"GBP": 0.73,
	"JPY": 110.0,
	"CAD": 1.36,
	"AUD": 1.52,
	"CHF": 0.88,
	"INR": 83.2,
}

// StaticProvider serves the bundled rate table. Used when no upstream rate
// API is configured and as the fallback when the upstream is unavailable.
type StaticProvider struct{}

// Rates returns a copy of the bundled table.
func (StaticProvider) Rates(_ context.Context) (Rates, error) {
	out := make(Rates, len(staticRates))
	for code, rate := range staticRates {
		out[code] = rate
	}
	return out, nil
}
