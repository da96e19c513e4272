package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"currency-tracker/internal/domain/model"
	"currency-tracker/internal/domain/ports"
	"currency-tracker/pkg/logger"
)

var _ ports.RateService = (*ExchangeAPI)(nil)

// ExchangeAPI fetches the full rate list from a vatcomply-style API:
// GET /rates?base=X for the rates, GET /currencies for display names.
type ExchangeAPI struct {
	baseURL      string
	baseCurrency string
	httpClient   *http.Client
	log          *logger.Logger
}

func NewExchangeAPI(baseURL, baseCurrency string, timeout time.Duration, log *logger.Logger) *ExchangeAPI {
	return &ExchangeAPI{
		baseURL:      baseURL,
		baseCurrency: baseCurrency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (e *ExchangeAPI) GetLatestExchangeRates(ctx context.Context) ([]model.Currency, error) {
	names, err := e.fetchCurrencyNames(ctx)
	if err != nil {
		// Names are display sugar; the rate list is the payload that matters.
		e.log.Warn("Failed to fetch currency names, falling back to codes", "error", err)
		names = map[string]string{}
	}

	body, err := e.get(ctx, fmt.Sprintf("%s/rates?base=%s", e.baseURL, e.baseCurrency))
	if err != nil {
		return nil, err
	}

	rates := gjson.GetBytes(body, "rates")
	if !rates.Exists() || !rates.IsObject() {
		return nil, fmt.Errorf("unexpected rates response: missing rates object")
	}

	var currencies []model.Currency
	rates.ForEach(func(key, value gjson.Result) bool {
		code := key.String()
		name := names[code]
		if name == "" {
			name = code
		}
		currencies = append(currencies, model.Currency{
			Code: code,
			Name: name,
			Rate: value.Float(),
		})
		return true
	})

	if len(currencies) == 0 {
		return nil, fmt.Errorf("unexpected rates response: empty rates object")
	}

	e.log.Debug("Fetched exchange rates", "base", e.baseCurrency, "count", len(currencies))
	return currencies, nil
}

func (e *ExchangeAPI) fetchCurrencyNames(ctx context.Context) (map[string]string, error) {
	body, err := e.get(ctx, e.baseURL+"/currencies")
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		names[key.String()] = value.Get("name").String()
		return true
	})
	return names, nil
}

func (e *ExchangeAPI) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
