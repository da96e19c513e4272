package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"currency-tracker/internal/metrics"
	"currency-tracker/internal/rate"
	"currency-tracker/internal/service"
	"currency-tracker/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type stateResponse struct {
	RateStatus     string      `json:"rate_status"`
	SourceCurrency interface{} `json:"source_currency"`
	TargetCurrency interface{} `json:"target_currency"`
	LastUpdated    string      `json:"last_updated,omitempty"`
}

// Handler exposes the tracker state read-only plus the user actions:
// convert, refresh, select, switch.
type Handler struct {
	tracker *service.Tracker
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(tracker *service.Tracker, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		tracker: tracker,
		log:     log,
		metrics: metrics,
	}
}

func (h *Handler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	state := h.tracker.State()
	h.sendSuccessResponse(w, stateResponse{
		RateStatus:     state.RateStatus.String(),
		SourceCurrency: state.SourceCurrency,
		TargetCurrency: state.TargetCurrency,
		LastUpdated:    state.LastUpdated,
	})
}

func (h *Handler) GetCurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.tracker.Currencies())
}

func (h *Handler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ConversionRequestsTotal.Inc()

	amount := 1.0
	if amountStr := r.URL.Query().Get("amount"); amountStr != "" {
		var err error
		amount, err = strconv.ParseFloat(amountStr, 64)
		if err != nil {
			h.sendErrorResponse(w, http.StatusBadRequest, "invalid amount parameter")
			return
		}
	}

	state := h.tracker.State()
	source, okSource := state.SourceCurrency.Value()
	target, okTarget := state.TargetCurrency.Value()
	if !okSource || !okTarget {
		h.sendErrorResponse(w, http.StatusConflict, "source and target currencies are not both resolved")
		return
	}

	exchangeRate, err := rate.CalculateExchangeRate(source.Rate, target.Rate)
	if err != nil {
		if errors.Is(err, rate.ErrZeroRate) {
			h.sendErrorResponse(w, http.StatusUnprocessableEntity, "source currency has a zero rate")
			return
		}
		h.sendErrorResponse(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.sendSuccessResponse(w, map[string]interface{}{
		"from":   source.Code,
		"to":     target.Code,
		"rate":   exchangeRate,
		"amount": rate.Convert(amount, exchangeRate),
	})
}

func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := h.tracker.RefreshRates(r.Context()); err != nil {
		h.log.Error("Manual refresh failed", "error", err)
		h.sendErrorResponse(w, http.StatusServiceUnavailable, "external API failure")
		return
	}
	h.sendSuccessResponse(w, map[string]string{"status": "refreshed"})
}

func (h *Handler) SelectionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	source := r.URL.Query().Get("source")
	target := r.URL.Query().Get("target")
	if source == "" && target == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: source or target")
		return
	}

	ctx := r.Context()
	if source != "" {
		if err := h.tracker.SaveSourceCurrencyCode(ctx, source); err != nil {
			h.log.Error("Failed to save source currency code", "error", err)
			h.sendErrorResponse(w, http.StatusInternalServerError, "failed to save selection")
			return
		}
	}
	if target != "" {
		if err := h.tracker.SaveTargetCurrencyCode(ctx, target); err != nil {
			h.log.Error("Failed to save target currency code", "error", err)
			h.sendErrorResponse(w, http.StatusInternalServerError, "failed to save selection")
			return
		}
	}

	h.sendSuccessResponse(w, map[string]string{"status": "saved"})
}

func (h *Handler) SwitchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.tracker.SwitchCurrencies()
	h.GetStateHandler(w, r)
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}
