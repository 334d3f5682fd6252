// Package api serves the analytics features over HTTP.
//
// Every feature endpoint accepts start_date, end_date, single_date, granularity and
// correlation_threshold query parameters, paginates its main list with page and limit,
// and exports the full list as CSV with format=csv.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"holder-flow/internal/analytics"
	"holder-flow/internal/events"
	"holder-flow/internal/logger"
	"holder-flow/internal/observability"
)

// Analytics is the feature surface served by the handler.
type Analytics interface {
	Buyers(ctx context.Context, req analytics.Request) (*events.BuyerReport, error)
	Sellers(ctx context.Context, req analytics.Request) (*events.SellerReport, error)
	NewEntrants(ctx context.Context, req analytics.Request) (*events.EntrantReport, error)
	Behavior(ctx context.Context, req analytics.Request) (*analytics.BehaviorResult, error)
	Timing(ctx context.Context, req analytics.Request) (*analytics.TimingResult, error)
}

// ResultCache stores computed feature results. Implemented by cache.Cache.
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// StatusFunc reports backend state for the /status endpoint.
type StatusFunc func(ctx context.Context) (any, error)

// Options for creating Handler.
type Options struct {
	Service         Analytics // required
	Cache           ResultCache
	Status          StatusFunc
	Logger          *logger.Logger
	Metrics         *observability.Metrics
	DefaultPageSize int
	MaxPageSize     int
	// Timeout bounds each feature computation; zero means no limit.
	Timeout time.Duration
}

// Handler serves the HTTP API.
type Handler struct {
	service  Analytics
	cache    ResultCache
	status   StatusFunc
	log      *logger.Logger
	metrics  *observability.Metrics
	pageSize int
	maxPage  int
	timeout  time.Duration
	started  time.Time
}

// New creates a new Handler.
func New(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 500
	}
	if opts.DefaultPageSize <= 0 || opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = min(50, opts.MaxPageSize)
	}
	return &Handler{
		service:  opts.Service,
		cache:    opts.Cache,
		status:   opts.Status,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		pageSize: opts.DefaultPageSize,
		maxPage:  opts.MaxPageSize,
		timeout:  opts.Timeout,
		started:  time.Now(),
	}
}

// Routes returns the request router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", observability.Handler())

	// Status endpoint
	h.handle(mux, "GET /status", h.handleStatus)

	h.handle(mux, "GET /api/v1/buyers", h.handleBuyers)
	h.handle(mux, "GET /api/v1/sellers", h.handleSellers)
	h.handle(mux, "GET /api/v1/entrants", h.handleEntrants)
	h.handle(mux, "GET /api/v1/behavior", h.handleBehavior)
	h.handle(mux, "GET /api/v1/timing", h.handleTiming)

	return mux
}

type ctxKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// handle registers fn with request id propagation, logging and metrics.
func (h *Handler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		fn(rec, r.WithContext(ctx))

		h.metrics.RecordHTTP(pattern, rec.code)
		h.log.Debugf("%s %s %d %s [%s]", r.Method, r.URL.RequestURI(), rec.code, time.Since(start), id)
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"cache":  h.cache != nil,
	}
	if h.status != nil {
		backend, err := h.status(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp["storage"] = backend
	}
	writeJSON(w, http.StatusOK, resp)
}
