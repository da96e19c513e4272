package repository

import (
	"context"
	"sync"

	"currency-tracker/internal/domain/model"
	"currency-tracker/internal/domain/ports"
)

var _ ports.CurrencyRepository = (*MemoryRepository)(nil)

// MemoryRepository keeps the cached snapshot in process memory, in insertion
// order. Used by tests and db-less runs.
type MemoryRepository struct {
	mu         sync.RWMutex
	currencies []model.Currency
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) ReadCurrencyData(ctx context.Context) ([]model.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]model.Currency, len(r.currencies))
	copy(snapshot, r.currencies)
	return snapshot, nil
}

func (r *MemoryRepository) InsertCurrencyData(ctx context.Context, currency model.Currency) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currencies = append(r.currencies, currency)
	return nil
}

func (r *MemoryRepository) CleanUp(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currencies = nil
	return nil
}
