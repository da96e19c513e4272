package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-tracker/internal/adapter/repository"
	"currency-tracker/internal/domain/model"
	"currency-tracker/internal/metrics"
	"currency-tracker/internal/service"
	"currency-tracker/pkg/logger"
)

type stubPrefs struct {
	last     time.Time
	hasLast  bool
	sourceCh chan string
	targetCh chan string
}

func newStubPrefs() *stubPrefs {
	return &stubPrefs{
		sourceCh: make(chan string, 4),
		targetCh: make(chan string, 4),
	}
}

func (p *stubPrefs) SaveLastUpdated(ctx context.Context, t time.Time) error {
	p.last, p.hasLast = t, true
	return nil
}

func (p *stubPrefs) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	return p.last, p.hasLast, nil
}

func (p *stubPrefs) IsDataFresh(ctx context.Context, now time.Time) (bool, error) {
	return p.hasLast, nil
}

func (p *stubPrefs) SaveSourceCurrencyCode(ctx context.Context, code string) error {
	p.sourceCh <- code
	return nil
}

func (p *stubPrefs) SaveTargetCurrencyCode(ctx context.Context, code string) error {
	p.targetCh <- code
	return nil
}

func (p *stubPrefs) WatchSourceCurrencyCode(ctx context.Context) (<-chan string, error) {
	return p.watch(ctx, p.sourceCh), nil
}

func (p *stubPrefs) WatchTargetCurrencyCode(ctx context.Context) (<-chan string, error) {
	return p.watch(ctx, p.targetCh), nil
}

func (p *stubPrefs) watch(ctx context.Context, in chan string) <-chan string {
	out := make(chan string, 4)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case code := <-in:
				out <- code
			}
		}
	}()
	return out
}

type stubRemote struct {
	currencies []model.Currency
}

func (s *stubRemote) GetLatestExchangeRates(ctx context.Context) ([]model.Currency, error) {
	return s.currencies, nil
}

func newTestHandler(t *testing.T, resolve bool) (*Handler, *service.Tracker) {
	t.Helper()

	remote := &stubRemote{currencies: []model.Currency{
		{Code: "USD", Name: "US Dollar", Rate: 1.09},
		{Code: "JPY", Name: "Japanese Yen", Rate: 161.2},
	}}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	log := logger.NewLogger("error")

	tracker := service.NewTracker(repository.NewMemoryRepository(), newStubPrefs(), remote, log, m)
	require.NoError(t, tracker.Start(context.Background()))
	t.Cleanup(tracker.Close)

	if resolve {
		require.NoError(t, tracker.SaveSourceCurrencyCode(context.Background(), "USD"))
		require.NoError(t, tracker.SaveTargetCurrencyCode(context.Background(), "JPY"))
		require.Eventually(t, func() bool {
			s := tracker.State()
			return s.SourceCurrency.IsSuccess() && s.TargetCurrency.IsSuccess()
		}, 2*time.Second, 5*time.Millisecond)
	}

	return NewHandler(tracker, log, m), tracker
}

func TestGetStateHandler(t *testing.T) {
	handler, _ := newTestHandler(t, false)

	rec := httptest.NewRecorder()
	handler.GetStateHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "fresh", data["rate_status"])
}

func TestConvertHandler(t *testing.T) {
	handler, _ := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	handler.ConvertHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/convert?amount=100", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "USD", data["from"])
	assert.Equal(t, "JPY", data["to"])
	assert.InDelta(t, 161.2/1.09, data["rate"].(float64), 1e-9)
	assert.InDelta(t, 100*161.2/1.09, data["amount"].(float64), 1e-6)
}

func TestConvertHandler_Unresolved(t *testing.T) {
	handler, _ := newTestHandler(t, false)

	rec := httptest.NewRecorder()
	handler.ConvertHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/convert", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConvertHandler_BadAmount(t *testing.T) {
	handler, _ := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	handler.ConvertHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/convert?amount=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSwitchHandler(t *testing.T) {
	handler, tracker := newTestHandler(t, true)

	rec := httptest.NewRecorder()
	handler.SwitchHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/switch", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	src, _ := tracker.State().SourceCurrency.Value()
	assert.Equal(t, "JPY", src.Code)
}

func TestSelectionHandler_MissingParams(t *testing.T) {
	handler, _ := newTestHandler(t, false)

	rec := httptest.NewRecorder()
	handler.SelectionHandler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/selection", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t, false)

	rec := httptest.NewRecorder()
	handler.RefreshHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/refresh", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
