package currency

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/catalog/internal/metrics"
	"github.com/mmynk/catalog/internal/models"
)

// RateSource looks up exchange rates.
type RateSource interface {
	ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// CountryResolver maps an IP address to a country and currency.
type CountryResolver interface {
	ResolveCountryAndCurrency(ctx context.Context, ip string) (string, string)
}

// Converter applies the fallback rules around the external lookups: a failed
// rate is 1 and a failed geolocation is USD. Neither failure is returned.
type Converter struct {
	rates   RateSource
	locator CountryResolver
}

// NewConverter creates a converter. A nil locator always yields USD.
func NewConverter(rates RateSource, locator CountryResolver) *Converter {
	return &Converter{rates: rates, locator: locator}
}

// Rate returns the rate from one currency to another. Identical currencies
// skip the lookup.
func (c *Converter) Rate(ctx context.Context, from, to string) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if from == to || c.rates == nil {
		return one
	}
	rate, err := c.rates.ExchangeRate(ctx, from, to)
	if err != nil {
		slog.Warn("Exchange rate lookup failed, using 1", "from", from, "to", to, "error", err)
		metrics.RateFallbacks.Inc()
		return one
	}
	return rate
}

// DisplayCurrency resolves the currency analytics are reported in for a
// client IP. Empty, private and unresolvable addresses yield USD.
func (c *Converter) DisplayCurrency(ctx context.Context, ip string) string {
	if ip == "" || c.locator == nil {
		return models.DefaultCurrency
	}
	_, code := c.locator.ResolveCountryAndCurrency(ctx, ip)
	if normalized, ok := models.NormalizeCurrency(code); ok {
		return normalized
	}
	slog.Warn("Could not resolve display currency, using default", "ip", ip, "default", models.DefaultCurrency)
	metrics.GeoFallbacks.Inc()
	return models.DefaultCurrency
}
