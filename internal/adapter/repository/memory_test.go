package repository

import (
	"context"
	"testing"

	"currency-tracker/internal/domain/model"
)

func TestMemoryRepository_SnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	firstGeneration := []model.Currency{
		{Code: "USD", Name: "US Dollar", Rate: 1.0},
		{Code: "EUR", Name: "Euro", Rate: 0.92},
	}
	for _, c := range firstGeneration {
		if err := repo.InsertCurrencyData(ctx, c); err != nil {
			t.Fatalf("unexpected insert error: %v", err)
		}
	}

	secondGeneration := []model.Currency{
		{Code: "JPY", Name: "Japanese Yen", Rate: 151.2},
		{Code: "GBP", Name: "Pound Sterling", Rate: 0.79},
		{Code: "INR", Name: "Indian Rupee", Rate: 83.1},
	}

	if err := repo.CleanUp(ctx); err != nil {
		t.Fatalf("unexpected clean-up error: %v", err)
	}
	for _, c := range secondGeneration {
		if err := repo.InsertCurrencyData(ctx, c); err != nil {
			t.Fatalf("unexpected insert error: %v", err)
		}
	}

	got, err := repo.ReadCurrencyData(ctx)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}

	if len(got) != len(secondGeneration) {
		t.Fatalf("expected %d currencies, got %d", len(secondGeneration), len(got))
	}
	for i, want := range secondGeneration {
		if got[i] != want {
			t.Errorf("position %d: expected %+v, got %+v", i, want, got[i])
		}
	}
}

func TestMemoryRepository_ReadEmpty(t *testing.T) {
	repo := NewMemoryRepository()

	got, err := repo.ReadCurrencyData(context.Background())
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d entries", len(got))
	}
}

func TestMemoryRepository_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	if err := repo.InsertCurrencyData(ctx, model.Currency{Code: "USD", Name: "US Dollar", Rate: 1}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	first, _ := repo.ReadCurrencyData(ctx)
	first[0].Rate = 99

	second, _ := repo.ReadCurrencyData(ctx)
	if second[0].Rate != 1 {
		t.Errorf("snapshot mutation leaked into the store: rate = %v", second[0].Rate)
	}
}
