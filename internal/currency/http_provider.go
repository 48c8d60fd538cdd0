package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack/pkg/logger"
)

const defaultFetchTimeout = 10 * time.Second

// HTTPProviderConfig configures the upstream exchange-rate API client.
type HTTPProviderConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// HTTPProvider fetches USD-relative rates from an external API. Calls run
// through a circuit breaker; while the breaker is open, or when a fetch
// fails, the bundled static table is served instead so a rate outage never
// breaks the request path.
type HTTPProvider struct {
	client   *resty.Client
	breaker  *gobreaker.CircuitBreaker
	fallback StaticProvider
	log      *zap.Logger
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// NewHTTPProvider constructs an HTTP-backed rate provider.
func NewHTTPProvider(cfg HTTPProviderConfig) (*HTTPProvider, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("currency: provider url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	client := resty.New().
		SetBaseURL(url).
		SetTimeout(timeout)
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		client.SetHeader("Authorization", "Bearer "+key)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "currency-rates",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &HTTPProvider{
		client:  client,
		breaker: breaker,
		log:     logger.WithModule("currency"),
	}, nil
}

// Rates returns the upstream table, falling back to the static table when the
// upstream is unreachable or the breaker is open.
func (p *HTTPProvider) Rates(ctx context.Context) (Rates, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetch(ctx)
	})
	if err != nil {
		p.log.Warn("rate fetch failed, serving static table", zap.Error(err))
		return p.fallback.Rates(ctx)
	}
	return result.(Rates), nil
}

func (p *HTTPProvider) fetch(ctx context.Context) (Rates, error) {
	var payload ratesResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("currency: fetch rates: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("currency: upstream returned %d", resp.StatusCode())
	}
	if len(payload.Rates) == 0 {
		return nil, errors.New("currency: upstream returned empty rate table")
	}

	rates := Rates(payload.Rates)
	if _, ok := rates["USD"]; !ok {
		rates["USD"] = 1.0
	}
	return rates, nil
}
