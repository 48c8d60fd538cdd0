package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStaticProviderReturnsCopy(t *testing.T) {
	provider := StaticProvider{}
	ctx := context.Background()

	rates, err := provider.Rates(ctx)
	require.NoError(t, err)
	require.Equal(t, 1.0, rates["USD"])
	require.Contains(t, rates, "EUR")

	rates["USD"] = 99
	again, err := provider.Rates(ctx)
	require.NoError(t, err)
	require.Equal(t, 1.0, again["USD"])
}

func TestHTTPProviderFetchesUpstreamRates(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.9,"GBP":0.8}}`))
	}))
	defer upstream.Close()

	provider, err := NewHTTPProvider(HTTPProviderConfig{URL: upstream.URL, Timeout: time.Second})
	require.NoError(t, err)

	rates, err := provider.Rates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0.9, rates["EUR"])
	require.Equal(t, 0.8, rates["GBP"])
	require.Equal(t, 1.0, rates["USD"])
}

func TestHTTPProviderFallsBackToStaticTable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	provider, err := NewHTTPProvider(HTTPProviderConfig{URL: upstream.URL, Timeout: time.Second})
	require.NoError(t, err)

	rates, err := provider.Rates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1.0, rates["USD"])
	require.Contains(t, rates, "EUR")
}

func TestHTTPProviderRequiresURL(t *testing.T) {
	_, err := NewHTTPProvider(HTTPProviderConfig{})
	require.Error(t, err)
}
