package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/goccy/go-json"
	"github.com/starfederation/datastar-go/datastar"

	apperrors "orders-dashboard/internal/errors"
	"orders-dashboard/internal/services"
	"orders-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// pageSignals mirrors the data-signals declared by the dashboard page.
type pageSignals struct {
	Region       string  `json:"region"`
	State        string  `json:"state"`
	City         string  `json:"city"`
	Metric       string  `json:"metric"`
	Year         flexInt `json:"year"`
	N            flexInt `json:"n"`
	Segment      string  `json:"segment"`
	Category     string  `json:"category"`
	SubCategory  string  `json:"subCategory"`
	ProductQuery string  `json:"productQuery"`
}

// flexInt accepts 2023 as well as "2023", since bound inputs send strings.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*n = flexInt(v)
	return nil
}

// readQuery decodes the page signals over the configured defaults. Plain
// requests without a datastar payload fall back to URL parameters.
func (h *SSEHandlers) readQuery(r *http.Request) (DashboardQuery, error) {
	if r.Method == http.MethodGet && !r.URL.Query().Has("datastar") {
		return ParseQuery(r.URL.Query(), h.dashboard.Defaults())
	}

	q := defaultQuery(h.dashboard.Defaults())
	signals := pageSignals{Metric: q.Metric, Year: flexInt(q.Year), N: flexInt(q.N)}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return q, apperrors.BadRequestWrap(err, "Invalid signals payload")
	}

	q.Region = signals.Region
	q.State = signals.State
	q.City = signals.City
	q.Metric = strings.ToLower(strings.TrimSpace(signals.Metric))
	q.Year = int(signals.Year)
	q.N = int(signals.N)
	q.Segment = signals.Segment
	q.Category = signals.Category
	q.SubCategory = signals.SubCategory
	q.Product = strings.TrimSpace(signals.ProductQuery)
	return q, q.validate()
}

func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := h.readQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	view, err := h.dashboard.Render(r.Context(), q.ServiceState())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	fragments, err := renderFragments(r.Context(), view)
	if err != nil {
		h.logger.Error("render dashboard fragments", "error", err)
		writeError(w, r, h.logger, err)
		return
	}

	signals, err := json.Marshal(chartSignals(view, ClampRankSize(q.N)))
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		writeError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	for _, html := range fragments {
		if err := sse.PatchElements(html); err != nil {
			h.logger.Warn("patch elements", "error", err)
			return
		}
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch signals", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func renderFragments(ctx context.Context, view services.View) ([]string, error) {
	components := []templ.Component{
		templates.FilterBar(view.Selection, view.Options.Regions, view.Options.States, view.Options.Cities),
		templates.ScopeHeader(view.Scope),
		templates.KPICards(view.KPIs),
		templates.ProductInsights(view.Breakdown.MetricLabel, view.Rankings.Year, view.Rankings.Size, view.Rankings.Top, view.Rankings.Bottom),
		templates.TableFilters(view.Table.Filter, view.Table.Options),
		templates.DataTable(view.Table.Rows, view.Table.Total),
	}

	fragments := make([]string, 0, len(components))
	for _, c := range components {
		html, err := templates.RenderString(ctx, c)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, html)
	}
	return fragments, nil
}

// chartSignals writes the resolved selection and table filter back to the
// page along with the series the charts draw from.
func chartSignals(view services.View, n int) map[string]any {
	return map[string]any{
		"region":       view.Selection.Region,
		"state":        view.Selection.State,
		"city":         view.Selection.City,
		"segment":      view.Table.Filter.Segment,
		"category":     view.Table.Filter.Category,
		"subCategory":  view.Table.Filter.SubCategory,
		"n":            n,
		"metricLabel":  view.Breakdown.MetricLabel,
		"chartYear":    view.Breakdown.Year,
		"monthlyData":  view.Monthly,
		"segmentData":  view.Breakdown.Segments,
		"categoryData": view.Breakdown.Categories,
		"topData":      view.Rankings.Top,
		"bottomData":   view.Rankings.Bottom,
	}
}
