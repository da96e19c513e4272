package ports

import (
	"context"

	"currency-tracker/internal/domain/model"
)

// CurrencyRepository stores the most recently fetched rate snapshot. The
// store holds either nothing or one complete fetch generation; callers run
// CleanUp to completion before inserting the next generation.
type CurrencyRepository interface {
	ReadCurrencyData(ctx context.Context) ([]model.Currency, error)
	InsertCurrencyData(ctx context.Context, currency model.Currency) error
	CleanUp(ctx context.Context) error
}
