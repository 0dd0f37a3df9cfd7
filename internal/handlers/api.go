package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	apperrors "orders-dashboard/internal/errors"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// query parses the request parameters, writing the error response itself
// when they are invalid.
func (h *APIHandlers) query(w http.ResponseWriter, r *http.Request) (DashboardQuery, bool) {
	q, err := ParseQuery(r.URL.Query(), h.dashboard.Defaults())
	if err != nil {
		h.fail(w, r, err)
		return q, false
	}
	return q, true
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if stderrors.Is(err, services.ErrNotLoaded) {
		err = apperrors.ServiceUnavailable("Dataset is not loaded yet")
	}
	ctx := r.Context()
	apperrors.WriteError(w, observability.LoggerFrom(ctx, logger), err, observability.GetRequestID(ctx))
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	sel, opts, err := h.dashboard.Options(r.Context(), q.Selection())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, map[string]any{
		"selection": sel,
		"scope":     services.ScopeLabel(sel),
		"options":   opts,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	data, err := h.dashboard.KPIs(r.Context(), q.Selection())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	data, err := h.dashboard.Monthly(r.Context(), q.Selection())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleDimensions(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	data, err := h.dashboard.Breakdown(r.Context(), q.Selection(), q.MetricValue(), q.Year)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleRankings(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	if q.SingleRanking() {
		h.handleRank(w, r, q)
		return
	}

	data, err := h.dashboard.Rankings(r.Context(), q.Selection(), q.MetricValue(), q.Year, ClampRankSize(q.N))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) handleRank(w http.ResponseWriter, r *http.Request, q DashboardQuery) {
	entity, dir, err := q.RankTarget()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	n := ClampRankSize(q.N)
	items, err := h.dashboard.Rank(r.Context(), q.Selection(), entity, q.MetricValue(), q.Year, n, dir)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, map[string]any{
		"entity":    entity,
		"direction": dir,
		"metric":    q.MetricValue(),
		"year":      q.Year,
		"size":      n,
		"items":     items,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleTable(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	data, err := h.dashboard.Table(r.Context(), q.Selection(), q.TableFilter(), q.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	view, err := h.dashboard.Render(r.Context(), q.ServiceState())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperrors.WriteSuccessWithHeaders(w, view, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.dashboard.Loaded() {
		status = "loading"
	}

	apperrors.WriteSuccess(w, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, h.dashboard.Stats())
}
