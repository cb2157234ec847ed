package currency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultGeoBaseURL is the ip-api.com endpoint.
	DefaultGeoBaseURL = "http://ip-api.com"

	// DefaultCountryBaseURL is the restcountries.com endpoint.
	DefaultCountryBaseURL = "https://restcountries.com"
)

// Locator resolves an IP address to a country and its currency by chaining
// ip-api.com and restcountries.com.
type Locator struct {
	geoBaseURL     string
	countryBaseURL string
	httpClient     *http.Client
}

// NewLocator creates a locator. Empty base URLs use the public services.
func NewLocator(geoBaseURL, countryBaseURL string, httpClient *http.Client) *Locator {
	if geoBaseURL == "" {
		geoBaseURL = DefaultGeoBaseURL
	}
	if countryBaseURL == "" {
		countryBaseURL = DefaultCountryBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Locator{
		geoBaseURL:     strings.TrimRight(geoBaseURL, "/"),
		countryBaseURL: strings.TrimRight(countryBaseURL, "/"),
		httpClient:     httpClient,
	}
}

// ResolveCountryAndCurrency returns the ISO country code and currency code
// for ip, or two empty strings when either lookup fails.
func (l *Locator) ResolveCountryAndCurrency(ctx context.Context, ip string) (string, string) {
	country, err := l.Country(ctx, ip)
	if err != nil {
		return "", ""
	}
	code, err := l.CurrencyOf(ctx, country)
	if err != nil {
		return "", ""
	}
	return country, code
}

// Country looks up the country code of a public IP address.
func (l *Locator) Country(ctx context.Context, ip string) (string, error) {
	if !IsPublicIP(ip) {
		return "", fmt.Errorf("cannot geolocate non-public address %q", ip)
	}

	var body struct {
		Status      string `json:"status"`
		CountryCode string `json:"countryCode"`
	}
	endpoint := fmt.Sprintf("%s/json/%s?fields=status,countryCode", l.geoBaseURL, url.PathEscape(ip))
	if err := l.getJSON(ctx, endpoint, &body); err != nil {
		return "", err
	}
	if body.CountryCode == "" {
		return "", fmt.Errorf("no country for %s (status %q)", ip, body.Status)
	}
	return body.CountryCode, nil
}

// CurrencyOf returns the first currency code a country lists, in the order
// the countries API returns them.
func (l *Locator) CurrencyOf(ctx context.Context, countryCode string) (string, error) {
	var body []struct {
		Currencies currencyCodes `json:"currencies"`
	}
	endpoint := fmt.Sprintf("%s/v3.1/alpha/%s", l.countryBaseURL, url.PathEscape(countryCode))
	if err := l.getJSON(ctx, endpoint, &body); err != nil {
		return "", err
	}
	if len(body) == 0 || len(body[0].Currencies) == 0 {
		return "", fmt.Errorf("no currency for country %s", countryCode)
	}
	return body[0].Currencies[0], nil
}

// currencyCodes holds the keys of a currencies object in document order.
type currencyCodes []string

func (c *currencyCodes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("currencies: expected object, got %v", tok)
	}
	var codes []string
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := key.(string)
		if !ok {
			return fmt.Errorf("currencies: unexpected key %v", key)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
		codes = append(codes, code)
	}
	*c = codes
	return nil
}

func (l *Locator) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// IsPublicIP reports whether ip parses and is routable on the internet.
func IsPublicIP(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return !(addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast())
}
