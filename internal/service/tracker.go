package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"currency-tracker/internal/domain/model"
	"currency-tracker/internal/domain/ports"
	"currency-tracker/internal/metrics"
	"currency-tracker/pkg/logger"
	"currency-tracker/pkg/utils"
)

var ErrRemoteFetchFailure = errors.New("remote rate service failure")

// User-visible message for a selected code missing from the fetched set.
const msgCurrencyNotFound = "Couldn't find the selected currency."

const subscriberBufferSize = 8

// State is the snapshot observed by the presentation layer.
type State struct {
	RateStatus     model.RateStatus
	SourceCurrency model.Result[model.Currency]
	TargetCurrency model.Result[model.Currency]
	LastUpdated    string
}

// Tracker coordinates the rate cache: on start it reads the local snapshot,
// refreshes it from the remote API when empty or stale, and keeps the
// resolved source/target selections in sync with the preferences store.
// It is the single owner of all mutable state; observers read snapshots.
type Tracker struct {
	repo    ports.CurrencyRepository
	prefs   ports.PreferencesStore
	remote  ports.RateService
	log     *logger.Logger
	metrics *metrics.Metrics

	// refreshMu serializes whole refresh cycles so the store only ever
	// holds rows from a single fetch generation.
	refreshMu sync.Mutex

	mu         sync.RWMutex
	currencies []model.Currency
	state      State
	sourceCode string
	targetCode string
	subs       []chan State

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTracker(repo ports.CurrencyRepository, prefs ports.PreferencesStore, remote ports.RateService, log *logger.Logger, m *metrics.Metrics) *Tracker {
	return &Tracker{
		repo:    repo,
		prefs:   prefs,
		remote:  remote,
		log:     log,
		metrics: m,
		state: State{
			RateStatus:     model.RateStatusIdle,
			SourceCurrency: model.Idle[model.Currency](),
			TargetCurrency: model.Idle[model.Currency](),
		},
	}
}

// Start runs the startup protocol once and begins watching the persisted
// currency selections. Background work lives until ctx is cancelled or
// Close is called.
func (t *Tracker) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	cached, err := t.repo.ReadCurrencyData(ctx)
	if err != nil {
		t.log.Error("Failed to read cached currency data", "error", err)
		cached = nil
	}

	if len(cached) > 0 {
		t.setCurrencies(cached)
		fresh, err := t.prefs.IsDataFresh(ctx, time.Now())
		if err != nil {
			t.log.Error("Failed to check data freshness", "error", err)
		}
		if !fresh {
			if err := t.cacheTheData(ctx); err != nil {
				t.log.Error("Failed to refresh stale rates at startup", "error", err)
			}
		}
	} else {
		if err := t.cacheTheData(ctx); err != nil {
			t.log.Error("Failed to fetch rates at startup", "error", err)
		}
	}

	t.publishRateStatus(ctx)

	sourceCh, err := t.prefs.WatchSourceCurrencyCode(watchCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch source currency code: %w", err)
	}
	targetCh, err := t.prefs.WatchTargetCurrencyCode(watchCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch target currency code: %w", err)
	}

	t.wg.Add(2)
	go t.watchSelection(sourceCh, t.resolveSource)
	go t.watchSelection(targetCh, t.resolveTarget)

	return nil
}

// RefreshRates re-runs the fetch-and-cache protocol on demand.
func (t *Tracker) RefreshRates(ctx context.Context) error {
	err := t.cacheTheData(ctx)
	t.publishRateStatus(ctx)
	return err
}

// SwitchCurrencies swaps the displayed source and target selections in
// memory only; the persisted codes are untouched until an explicit save.
func (t *Tracker) SwitchCurrencies() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.SourceCurrency, t.state.TargetCurrency = t.state.TargetCurrency, t.state.SourceCurrency
	t.sourceCode, t.targetCode = t.targetCode, t.sourceCode
	t.publishLocked()
}

func (t *Tracker) SaveSourceCurrencyCode(ctx context.Context, code string) error {
	return t.prefs.SaveSourceCurrencyCode(ctx, code)
}

func (t *Tracker) SaveTargetCurrencyCode(ctx context.Context, code string) error {
	return t.prefs.SaveTargetCurrencyCode(ctx, code)
}

// State returns the current snapshot.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Currencies returns the in-memory rate list in fetch order.
func (t *Tracker) Currencies() []model.Currency {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]model.Currency, len(t.currencies))
	copy(snapshot, t.currencies)
	return snapshot
}

// Subscribe returns a channel that receives the current state immediately
// and a snapshot after every change. Slow subscribers miss intermediate
// snapshots rather than blocking the tracker.
func (t *Tracker) Subscribe() <-chan State {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan State, subscriberBufferSize)
	ch <- t.state
	t.subs = append(t.subs, ch)
	return ch
}

// Close cancels all background work and closes subscriber channels.
func (t *Tracker) Close() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		close(ch)
	}
	t.subs = nil
}

// cacheTheData performs one full refresh: fetch, clear, repopulate, mark
// fresh. A failed fetch leaves all existing state untouched. Refreshes run
// one at a time; an overlapping caller waits for the current cycle to
// finish rather than interleaving its clear/insert sequence with it.
func (t *Tracker) cacheTheData(ctx context.Context) error {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	t.metrics.RefreshesTotal.Inc()

	start := time.Now()
	fetched, err := t.remote.GetLatestExchangeRates(ctx)
	t.metrics.RemoteFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		t.metrics.RefreshFailuresTotal.Inc()
		t.log.Error("Failed to fetch exchange rates", "error", err)
		return fmt.Errorf("%w: %v", ErrRemoteFetchFailure, err)
	}

	currencies := make([]model.Currency, 0, len(fetched))
	for _, c := range fetched {
		if c.Rate <= 0 || math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) {
			t.log.Warn("Discarding invalid rate", "code", c.Code, "rate", c.Rate)
			continue
		}
		currencies = append(currencies, c)
	}

	// The clear must complete before the next generation goes in; when it
	// fails the old generation stays in the store and only the in-memory
	// list advances.
	if err := t.repo.CleanUp(ctx); err != nil {
		t.log.Error("Failed to clear currency cache", "error", err)
	} else {
		for _, c := range currencies {
			if err := t.repo.InsertCurrencyData(ctx, c); err != nil {
				t.log.Error("Failed to cache currency", "code", c.Code, "error", err)
			}
		}
	}

	t.setCurrencies(currencies)
	t.metrics.CachedCurrencies.Set(float64(len(currencies)))

	if err := t.prefs.SaveLastUpdated(ctx, time.Now()); err != nil {
		t.log.Error("Failed to save last-updated timestamp", "error", err)
	}

	t.reResolveSelections()

	t.log.Info("Exchange rates refreshed", "count", len(currencies))
	return nil
}

func (t *Tracker) publishRateStatus(ctx context.Context) {
	fresh, err := t.prefs.IsDataFresh(ctx, time.Now())
	if err != nil {
		t.log.Error("Failed to check data freshness", "error", err)
		return
	}

	status := model.RateStatusStale
	if fresh {
		status = model.RateStatusFresh
	}

	lastUpdated, ok, err := t.prefs.LastUpdated(ctx)
	if err != nil {
		t.log.Error("Failed to read last-updated timestamp", "error", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.RateStatus = status
	if ok {
		t.state.LastUpdated = utils.FormatLastUpdated(lastUpdated)
	}
	t.publishLocked()
}

func (t *Tracker) watchSelection(ch <-chan string, resolve func(string)) {
	defer t.wg.Done()
	for code := range ch {
		resolve(code)
	}
}

func (t *Tracker) resolveSource(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sourceCode = code
	t.state.SourceCurrency = t.lookupLocked(code)
	t.publishLocked()
}

func (t *Tracker) resolveTarget(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.targetCode = code
	t.state.TargetCurrency = t.lookupLocked(code)
	t.publishLocked()
}

func (t *Tracker) reResolveSelections() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sourceCode != "" {
		t.state.SourceCurrency = t.lookupLocked(t.sourceCode)
	}
	if t.targetCode != "" {
		t.state.TargetCurrency = t.lookupLocked(t.targetCode)
	}
	t.publishLocked()
}

func (t *Tracker) lookupLocked(code string) model.Result[model.Currency] {
	for _, c := range t.currencies {
		if c.Code == code {
			return model.Success(c)
		}
	}
	return model.Failure[model.Currency](msgCurrencyNotFound)
}

func (t *Tracker) setCurrencies(currencies []model.Currency) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.currencies = make([]model.Currency, len(currencies))
	copy(t.currencies, currencies)
}

func (t *Tracker) publishLocked() {
	for _, ch := range t.subs {
		select {
		case ch <- t.state:
		default:
		}
	}
}
