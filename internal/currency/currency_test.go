package currency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/test-key/latest/CAD":
			fmt.Fprint(w, `{"result":"success","base_code":"CAD","conversion_rates":{"CAD":1,"USD":0.7312,"EUR":0.6789}}`)
		case "/test-key/latest/XXX":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"result":"error","error-type":"unsupported-code"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRateClientExchangeRate(t *testing.T) {
	var hits atomic.Int32
	srv := newRateServer(t, &hits)
	client := NewRateClient(srv.URL, "test-key", srv.Client(), time.Minute)
	ctx := context.Background()

	rate, err := client.ExchangeRate(ctx, "CAD", "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.73", rate.StringFixed(2))

	rate, err = client.ExchangeRate(ctx, "cad", "eur")
	require.NoError(t, err)
	assert.Equal(t, "0.68", rate.StringFixed(2))
	assert.Equal(t, int32(1), hits.Load(), "second lookup for the same base should be cached")

	rate, err = client.ExchangeRate(ctx, "USD", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, int32(1), hits.Load(), "same currency must not hit the provider")

	_, err = client.ExchangeRate(ctx, "CAD", "JPY")
	assert.ErrorIs(t, err, ErrRateUnavailable)

	_, err = client.ExchangeRate(ctx, "XXX", "USD")
	assert.Error(t, err)
}

func TestRateClientWithoutCache(t *testing.T) {
	var hits atomic.Int32
	srv := newRateServer(t, &hits)
	client := NewRateClient(srv.URL, "test-key", srv.Client(), 0)

	for i := 0; i < 3; i++ {
		_, err := client.ExchangeRate(context.Background(), "CAD", "USD")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestTTLCacheExpires(t *testing.T) {
	c := newTTLCache[int](2, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.set("a", 1)
	c.set("b", 2)
	c.set("c", 3)
	_, ok := c.get("a")
	assert.False(t, ok, "oldest entry should be evicted")

	v, ok := c.get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("c")
	assert.False(t, ok, "entry should expire after ttl")
}

func TestLocatorResolveCountryAndCurrency(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/json/8.8.8.8":
			fmt.Fprint(w, `{"status":"success","countryCode":"CH"}`)
		case "/json/1.1.1.1":
			fmt.Fprint(w, `{"status":"fail"}`)
		case "/v3.1/alpha/CH":
			fmt.Fprint(w, `[{"name":{"common":"Switzerland"},"currencies":{"CHF":{"name":"Swiss franc","symbol":"Fr."},"EUR":{"name":"Euro"}}}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	locator := NewLocator(srv.URL, srv.URL, srv.Client())
	ctx := context.Background()

	country, code := locator.ResolveCountryAndCurrency(ctx, "8.8.8.8")
	assert.Equal(t, "CH", country)
	assert.Equal(t, "CHF", code)

	country, code = locator.ResolveCountryAndCurrency(ctx, "1.1.1.1")
	assert.Empty(t, country)
	assert.Empty(t, code)

	before := hits.Load()
	for _, ip := range []string{"", "127.0.0.1", "10.0.0.8", "192.168.1.1", "::1", "not-an-ip"} {
		country, code = locator.ResolveCountryAndCurrency(ctx, ip)
		assert.Empty(t, country, ip)
		assert.Empty(t, code, ip)
	}
	assert.Equal(t, before, hits.Load(), "non-public addresses must not be looked up")
}

func TestLocatorCurrencyOfKeepsResponseOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3.1/alpha/PA":
			fmt.Fprint(w, `[{"currencies":{"PAB":{"name":"Panamanian balboa"},"USD":{"name":"United States dollar"}}}]`)
		case "/v3.1/alpha/ZW":
			fmt.Fprint(w, `[{"currencies":{"ZWL":{"name":"Zimbabwean dollar"},"BWP":{"name":"Botswana pula"},"USD":{"name":"US dollar"}}}]`)
		case "/v3.1/alpha/AQ":
			fmt.Fprint(w, `[{"currencies":null}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	locator := NewLocator(srv.URL, srv.URL, srv.Client())
	ctx := context.Background()

	tests := []struct {
		country string
		want    string
	}{
		{"PA", "PAB"},
		{"ZW", "ZWL"},
	}
	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			code, err := locator.CurrencyOf(ctx, tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}

	_, err := locator.CurrencyOf(ctx, "AQ")
	assert.Error(t, err)
}

type fakeRates struct {
	rates map[string]decimal.Decimal
	calls int
}

func (f *fakeRates) ExchangeRate(_ context.Context, from, to string) (decimal.Decimal, error) {
	f.calls++
	rate, ok := f.rates[from+to]
	if !ok {
		return decimal.Zero, errors.New("provider down")
	}
	return rate, nil
}

type fakeResolver struct {
	currency string
}

func (f fakeResolver) ResolveCountryAndCurrency(context.Context, string) (string, string) {
	if f.currency == "" {
		return "", ""
	}
	return "XX", f.currency
}

func TestConverter(t *testing.T) {
	rates := &fakeRates{rates: map[string]decimal.Decimal{"CADUSD": decimal.RequireFromString("0.73")}}
	conv := NewConverter(rates, fakeResolver{currency: "cad"})
	ctx := context.Background()

	assert.Equal(t, "0.73", conv.Rate(ctx, "CAD", "USD").String())
	assert.True(t, conv.Rate(ctx, "USD", "USD").Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 1, rates.calls, "same currency must skip the lookup")

	assert.True(t, conv.Rate(ctx, "GBP", "USD").Equal(decimal.NewFromInt(1)), "failed lookup falls back to 1")

	assert.Equal(t, "CAD", conv.DisplayCurrency(ctx, "8.8.8.8"))
	assert.Equal(t, "USD", conv.DisplayCurrency(ctx, ""))
	assert.Equal(t, "USD", NewConverter(rates, fakeResolver{}).DisplayCurrency(ctx, "8.8.8.8"))
	assert.Equal(t, "USD", NewConverter(rates, nil).DisplayCurrency(ctx, "8.8.8.8"))
}
