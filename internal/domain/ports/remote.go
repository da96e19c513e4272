package ports

import (
	"context"

	"currency-tracker/internal/domain/model"
)

// RateService fetches the current full list of currency rates from the
// external API. Fire-once: no retries, the caller handles failure.
type RateService interface {
	GetLatestExchangeRates(ctx context.Context) ([]model.Currency, error)
}
