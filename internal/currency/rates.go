// Package currency converts amounts between currencies and resolves a
// client's display currency from its IP address.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultRateBaseURL is the exchangerate-api v6 endpoint.
const DefaultRateBaseURL = "https://v6.exchangerate-api.com/v6"

// ErrRateUnavailable is returned when the provider has no rate for a pair.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

const rateCacheSize = 256

// RateClient fetches conversion tables from exchangerate-api. Tables are
// cached per base currency and concurrent fetches for the same base share
// one request.
type RateClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *ttlCache[map[string]decimal.Decimal]
	group      singleflight.Group
}

// NewRateClient creates a client. A ttl of zero disables caching.
func NewRateClient(baseURL, apiKey string, httpClient *http.Client, ttl time.Duration) *RateClient {
	if baseURL == "" {
		baseURL = DefaultRateBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &RateClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      newTTLCache[map[string]decimal.Decimal](rateCacheSize, ttl),
	}
}

type latestRatesResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// ExchangeRate returns the rate from one currency to another rounded to 2
// decimals.
func (c *RateClient) ExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rates, err := c.table(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s to %s", ErrRateUnavailable, from, to)
	}
	return rate.Round(2), nil
}

func (c *RateClient) table(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	if rates, ok := c.cache.get(base); ok {
		return rates, nil
	}
	v, err, _ := c.group.Do(base, func() (any, error) {
		rates, err := c.fetch(ctx, base)
		if err != nil {
			return nil, err
		}
		c.cache.set(base, rates)
		return rates, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]decimal.Decimal), nil
}

func (c *RateClient) fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch rates for %s: status %d", base, resp.StatusCode)
	}

	var body latestRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rates for %s: %w", base, err)
	}
	if len(body.ConversionRates) == 0 {
		return nil, fmt.Errorf("%w: provider returned no rates for %s (%s)", ErrRateUnavailable, base, body.ErrorType)
	}
	return body.ConversionRates, nil
}
