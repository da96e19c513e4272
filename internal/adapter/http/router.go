package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"currency-tracker/internal/metrics"
	"currency-tracker/pkg/logger"
)

type Router struct {
	handler *Handler
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics) *Router {
	return &Router{
		handler: handler,
		log:     log,
		metrics: metrics,
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		srw := &statusResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(srw, req)

		duration := time.Since(start)
		r.metrics.HTTPRequestDuration.WithLabelValues(req.URL.Path, req.Method).Observe(duration.Seconds())
		r.metrics.HTTPRequestsTotal.WithLabelValues(req.URL.Path, req.Method, fmt.Sprintf("%dxx", srw.statusCode/100)).Inc()

		r.log.Info("HTTP request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", srw.statusCode,
			"duration", duration,
			"remote_addr", req.RemoteAddr,
		)
	})
}

func (r *Router) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/state", r.handler.GetStateHandler)
	mux.HandleFunc("/api/v1/currencies", r.handler.GetCurrenciesHandler)
	mux.HandleFunc("/api/v1/convert", r.handler.ConvertHandler)
	mux.HandleFunc("/api/v1/refresh", r.handler.RefreshHandler)
	mux.HandleFunc("/api/v1/selection", r.handler.SelectionHandler)
	mux.HandleFunc("/api/v1/switch", r.handler.SwitchHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	root := http.NewServeMux()
	root.Handle("/", r.loggingMiddleware(mux))
	root.Handle("/metrics", promhttp.Handler())

	return root
}
