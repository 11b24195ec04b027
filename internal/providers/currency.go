// Package providers defines the black-box contracts for external
// collaborators the Pricing Engine depends on. Their internals (currency
// rate sourcing, competitor scraping) are explicitly out of scope (§6
// Non-goals) — only the contract and a deterministic default live here.
package providers

import "context"

// CurrencyProvider converts an amount from one ISO-4217 code to another.
type CurrencyProvider interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// StaticCurrencyProvider is a deterministic fallback for tests and for
// hotels that haven't configured a live rate feed: identity conversion
// plus a small fixed table, never failing.
type StaticCurrencyProvider struct {
	Rates map[string]float64 // code -> units per EUR
}

func NewStaticCurrencyProvider() *StaticCurrencyProvider {
	return &StaticCurrencyProvider{
		Rates: map[string]float64{
			"EUR": 1.0,
			"USD": 1.08,
			"GBP": 0.85,
		},
	}
}

func (p *StaticCurrencyProvider) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := p.Rates[from]
	if !ok {
		fromRate = 1.0
	}
	toRate, ok := p.Rates[to]
	if !ok {
		toRate = 1.0
	}
	eur := amount / fromRate
	return eur * toRate, nil
}
