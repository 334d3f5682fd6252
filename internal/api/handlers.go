package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"holder-flow/internal/analytics"
	"holder-flow/internal/cache"
	"holder-flow/internal/events"
	"holder-flow/internal/reporting"
)

// listQuery is a parsed feature request.
type listQuery struct {
	req   analytics.Request
	query analytics.Query
	page  int
	limit int
	csv   bool
}

func (lq listQuery) filename(feature string) string {
	return fmt.Sprintf("%s_%s_%s.csv", feature, lq.query.Start, lq.query.End)
}

func requestFromQuery(r *http.Request) (analytics.Request, error) {
	q := r.URL.Query()
	req := analytics.Request{
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
		Granularity: q.Get("granularity"),
		SingleDate:  q.Get("single_date"),
	}
	if s := q.Get("correlation_threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return req, fmt.Errorf("%w: correlation_threshold must be a number, got %q", analytics.ErrInvalidRequest, s)
		}
		req.CorrelationThreshold = &v
	}
	return req, nil
}

func (h *Handler) parse(r *http.Request) (listQuery, error) {
	var lq listQuery
	var err error

	if lq.req, err = requestFromQuery(r); err != nil {
		return lq, err
	}
	if lq.query, err = lq.req.Validate(); err != nil {
		return lq, err
	}
	if lq.page, lq.limit, err = parsePage(r, h.pageSize, h.maxPage); err != nil {
		return lq, err
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
	case "csv":
		lq.csv = true
	default:
		return lq, fmt.Errorf("%w: format must be json or csv, got %q", analytics.ErrInvalidRequest, format)
	}
	return lq, nil
}

// compute runs fn through the result cache when one is configured. Cache failures are
// logged and the result is computed directly.
func compute[T any](ctx context.Context, h *Handler, feature string, lq listQuery, fn func(context.Context, analytics.Request) (T, error)) (T, error) {
	if h.cache == nil {
		return fn(ctx, lq.req)
	}

	key := cache.Key(feature, lq.query.Key())
	var cached T
	hit, err := h.cache.Get(ctx, key, &cached)
	if err != nil {
		h.log.Warnf("cache get %s: %v", key, err)
	} else {
		h.metrics.RecordCache(feature, hit)
		if hit {
			return cached, nil
		}
	}

	result, err := fn(ctx, lq.req)
	if err != nil {
		return result, err
	}
	if err := h.cache.Set(ctx, key, result); err != nil {
		h.log.Warnf("cache set %s: %v", key, err)
	}
	return result, nil
}

type buyersResponse struct {
	*events.BuyerReport
	Pagination Page `json:"pagination"`
}

func (h *Handler) handleBuyers(w http.ResponseWriter, r *http.Request) {
	lq, err := h.parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := compute(r.Context(), h, analytics.FeatureBuyers, lq, h.service.Buyers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if lq.csv {
		writeCSV(w, lq.filename(analytics.FeatureBuyers), reporting.RenderBuyersCSV(report))
		return
	}

	page := *report
	var p Page
	page.Buyers, p = Paginate(report.Buyers, lq.page, lq.limit)
	writeJSON(w, http.StatusOK, buyersResponse{BuyerReport: &page, Pagination: p})
}

type sellersResponse struct {
	*events.SellerReport
	Pagination Page `json:"pagination"`
}

func (h *Handler) handleSellers(w http.ResponseWriter, r *http.Request) {
	lq, err := h.parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := compute(r.Context(), h, analytics.FeatureSellers, lq, h.service.Sellers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if lq.csv {
		writeCSV(w, lq.filename(analytics.FeatureSellers), reporting.RenderSellersCSV(report))
		return
	}

	page := *report
	var p Page
	page.Sellers, p = Paginate(report.Sellers, lq.page, lq.limit)
	writeJSON(w, http.StatusOK, sellersResponse{SellerReport: &page, Pagination: p})
}

type entrantsResponse struct {
	*events.EntrantReport
	Pagination Page `json:"pagination"`
}

func (h *Handler) handleEntrants(w http.ResponseWriter, r *http.Request) {
	lq, err := h.parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := compute(r.Context(), h, analytics.FeatureEntrants, lq, h.service.NewEntrants)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if lq.csv {
		writeCSV(w, lq.filename(analytics.FeatureEntrants), reporting.RenderEntrantsCSV(report))
		return
	}

	page := *report
	var p Page
	page.Entrants, p = Paginate(report.Entrants, lq.page, lq.limit)
	writeJSON(w, http.StatusOK, entrantsResponse{EntrantReport: &page, Pagination: p})
}

type behaviorResponse struct {
	*analytics.BehaviorResult
	Pagination Page `json:"pagination"`
}

// handleBehavior paginates profiles. Pairs, coordinated activities and suspicious patterns
// are returned in full.
func (h *Handler) handleBehavior(w http.ResponseWriter, r *http.Request) {
	lq, err := h.parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := compute(r.Context(), h, analytics.FeatureBehavior, lq, h.service.Behavior)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if lq.csv {
		writeCSV(w, lq.filename(analytics.FeatureBehavior), reporting.RenderBehaviorCSV(result))
		return
	}

	page := *result
	var p Page
	page.Profiles, p = Paginate(result.Profiles, lq.page, lq.limit)
	writeJSON(w, http.StatusOK, behaviorResponse{BehaviorResult: &page, Pagination: p})
}

type timingResponse struct {
	*analytics.TimingResult
	Pagination Page `json:"pagination"`
}

func (h *Handler) handleTiming(w http.ResponseWriter, r *http.Request) {
	lq, err := h.parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := compute(r.Context(), h, analytics.FeatureTiming, lq, h.service.Timing)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if lq.csv {
		writeCSV(w, lq.filename(analytics.FeatureTiming), reporting.RenderTimingCSV(result))
		return
	}

	page := *result
	var p Page
	page.Profiles, p = Paginate(result.Profiles, lq.page, lq.limit)
	writeJSON(w, http.StatusOK, timingResponse{TimingResult: &page, Pagination: p})
}
