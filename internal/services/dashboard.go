package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"orders-dashboard/internal/config"
	"orders-dashboard/internal/loader"
	"orders-dashboard/internal/metrics"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/observability"
	"orders-dashboard/internal/pipeline"
)

var ErrNotLoaded = errors.New("dataset not loaded")

// State is everything the user has chosen on the page.
type State struct {
	Selection  models.Selection
	Metric     pipeline.Metric
	Year       int
	RankSize   int
	Table      models.TableFilter
	TableLimit int
}

type FilterOptions struct {
	Regions []string `json:"regions"`
	States  []string `json:"states"`
	Cities  []string `json:"cities"`
}

type Breakdown struct {
	Metric      pipeline.Metric         `json:"metric"`
	MetricLabel string                  `json:"metric_label"`
	Year        int                     `json:"year"`
	Segments    []models.DimensionTotal `json:"segments"`
	Categories  []models.DimensionTotal `json:"categories"`
}

type Rankings struct {
	Metric pipeline.Metric       `json:"metric"`
	Year   int                   `json:"year"`
	Size   int                   `json:"size"`
	Top    []models.RankedEntity `json:"top"`
	Bottom []models.RankedEntity `json:"bottom"`
}

type Table struct {
	Options models.TableOptions `json:"options"`
	Filter  models.TableFilter  `json:"filter"`
	Rows    []models.TableRow   `json:"rows"`
	Total   int                 `json:"total"`
}

// View is the full description of the page for one State.
type View struct {
	Selection models.Selection      `json:"selection"`
	Scope     string                `json:"scope"`
	Options   FilterOptions         `json:"options"`
	KPIs      models.Comparison     `json:"kpis"`
	Monthly   []models.MonthlyPoint `json:"monthly"`
	Breakdown Breakdown             `json:"breakdown"`
	Rankings  Rankings              `json:"rankings"`
	Table     Table                 `json:"table"`
}

// Dashboard holds the loaded dataset and evaluates views over it. The
// dataset is never modified after it is stored.
type Dashboard struct {
	dataset atomic.Pointer[loader.Dataset]
	cfg     config.DashboardConfig
	logger  *slog.Logger
}

func NewDashboard(cfg config.DashboardConfig, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{cfg: cfg, logger: logger}
}

// Load replaces the dataset with the result of l.
func (d *Dashboard) Load(ctx context.Context, l loader.Loader) error {
	start := time.Now()
	ds, err := l.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	d.dataset.Store(ds)

	duration := time.Since(start)
	metrics.RecordDatasetLoad(len(ds.Orders), ds.Skipped, duration)
	d.logger.Info("dataset ready",
		"source", ds.Source,
		"records", len(ds.Orders),
		"skipped", ds.Skipped,
		"duration", duration,
	)
	return nil
}

// SetData stores orders as the dataset.
func (d *Dashboard) SetData(orders []models.Order) {
	d.dataset.Store(&loader.Dataset{
		Orders:   orders,
		Source:   "memory",
		LoadedAt: time.Now(),
	})
}

// Loaded reports whether a dataset has been stored.
func (d *Dashboard) Loaded() bool {
	return d.dataset.Load() != nil
}

func (d *Dashboard) Defaults() config.DashboardConfig {
	return d.cfg
}

func (d *Dashboard) orders() ([]models.Order, error) {
	ds := d.dataset.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds.Orders, nil
}

// scope resolves sel against the dataset and returns the filtered rows.
func (d *Dashboard) scope(sel models.Selection) ([]models.Order, []models.Order, models.Selection, error) {
	all, err := d.orders()
	if err != nil {
		return nil, nil, sel, err
	}
	sel = pipeline.ResolveSelection(all, sel)
	return all, pipeline.ApplyFilters(all, sel), sel, nil
}

// observe wraps one evaluation in a span and records its metrics.
func (d *Dashboard) observe(ctx context.Context, view string, sel models.Selection, fn func() (int, error)) error {
	_, span := observability.StartSpan(ctx, "dashboard."+view)
	span.SetTag("region", sel.Region)
	span.SetTag("state", sel.State)
	span.SetTag("city", sel.City)

	start := time.Now()
	filtered, err := fn()
	if err != nil {
		span.SetError(err)
	}
	span.SetTag("rows", strconv.Itoa(filtered))
	span.Finish(observability.LoggerFrom(ctx, d.logger))
	metrics.RecordRender(view, filtered, time.Since(start), err)
	return err
}

func (d *Dashboard) Options(ctx context.Context, sel models.Selection) (models.Selection, FilterOptions, error) {
	var opts FilterOptions
	err := d.observe(ctx, "options", sel, func() (int, error) {
		all, filtered, resolved, err := d.scope(sel)
		if err != nil {
			return 0, err
		}
		sel = resolved
		opts = filterOptions(all, sel)
		return len(filtered), nil
	})
	return sel, opts, err
}

func (d *Dashboard) KPIs(ctx context.Context, sel models.Selection) (models.Comparison, error) {
	var cmp models.Comparison
	err := d.observe(ctx, "kpis", sel, func() (int, error) {
		_, filtered, _, err := d.scope(sel)
		if err != nil {
			return 0, err
		}
		cmp = pipeline.YearOverYear(filtered, d.cfg.CurrentYear, d.cfg.PreviousYear)
		return len(filtered), nil
	})
	return cmp, err
}

func (d *Dashboard) Monthly(ctx context.Context, sel models.Selection) ([]models.MonthlyPoint, error) {
	var series []models.MonthlyPoint
	err := d.observe(ctx, "monthly", sel, func() (int, error) {
		_, filtered, _, err := d.scope(sel)
		if err != nil {
			return 0, err
		}
		series = pipeline.MonthlySeries(filtered)
		return len(filtered), nil
	})
	return series, err
}

func (d *Dashboard) Breakdown(ctx context.Context, sel models.Selection, metric pipeline.Metric, year int) (Breakdown, error) {
	var b Breakdown
	err := d.observe(ctx, "breakdown", sel, func() (int, error) {
		_, filtered, _, err := d.scope(sel)
		if err != nil {
			return 0, err
		}
		b = breakdown(pipeline.FilterYear(filtered, year), metric, year)
		return len(filtered), nil
	})
	return b, err
}

func (d *Dashboard) Rankings(ctx context.Context, sel models.Selection, metric pipeline.Metric, year, n int) (Rankings, error) {
	var r Rankings
	err := d.observe(ctx, "rankings", sel, func() (int, error) {
		_, filtered, _, err := d.scope(sel)
		if err != nil {
			return 0, err
		}
		r, err = rankings(pipeline.FilterYear(filtered, year), metric, year, n)
		return len(filtered), err
	})
	return r, err
}

// Rank orders any entity column of one year in a single direction.
func (d *Dashboard) Rank(ctx context.Context, sel models.Selection, entity pipeline.Field, metric pipeline.Metric, year, n int, dir pipeline.Direction) ([]models.RankedEntity, error) {
	var ranked []models.RankedEntity
	err := d.observe(ctx, "rank", sel, func() (int, error) {
		_, filtered, _, err := d.scope(sel)
		if err != nil {
			return 0, err
		}
		ranked, err = pipeline.TopN(pipeline.FilterYear(filtered, year), entity, metric, n, dir)
		return len(filtered), err
	})
	return ranked, err
}

func (d *Dashboard) Table(ctx context.Context, sel models.Selection, filter models.TableFilter, limit int) (Table, error) {
	var t Table
	err := d.observe(ctx, "table", sel, func() (int, error) {
		_, filtered, _, err := d.scope(sel)
		if err != nil {
			return 0, err
		}
		t = table(filtered, filter, limit)
		return len(filtered), nil
	})
	return t, err
}

// Render evaluates the whole page for st.
func (d *Dashboard) Render(ctx context.Context, st State) (View, error) {
	var v View
	err := d.observe(ctx, "render", st.Selection, func() (int, error) {
		all, filtered, sel, err := d.scope(st.Selection)
		if err != nil {
			return 0, err
		}
		yearRows := pipeline.FilterYear(filtered, st.Year)

		ranked, err := rankings(yearRows, st.Metric, st.Year, st.RankSize)
		if err != nil {
			return len(filtered), err
		}

		v = View{
			Selection: sel,
			Scope:     ScopeLabel(sel),
			Options:   filterOptions(all, sel),
			KPIs:      pipeline.YearOverYear(filtered, d.cfg.CurrentYear, d.cfg.PreviousYear),
			Monthly:   pipeline.MonthlySeries(filtered),
			Breakdown: breakdown(yearRows, st.Metric, st.Year),
			Rankings:  ranked,
			Table:     table(filtered, st.Table, st.TableLimit),
		}
		return len(filtered), nil
	})
	return v, err
}

// Stats summarises the loaded dataset for the admin endpoint.
func (d *Dashboard) Stats() map[string]any {
	ds := d.dataset.Load()
	if ds == nil {
		return map[string]any{"loaded": false}
	}

	orders := make(map[string]struct{})
	products := make(map[string]struct{})
	years := make(map[int]struct{})
	for i := range ds.Orders {
		o := &ds.Orders[i]
		if o.OrderID != "" {
			orders[o.OrderID] = struct{}{}
		}
		if o.ProductID != "" {
			products[o.ProductID] = struct{}{}
		}
		years[o.Year] = struct{}{}
	}

	return map[string]any{
		"loaded":       true,
		"source":       ds.Source,
		"record_count": len(ds.Orders),
		"skipped":      ds.Skipped,
		"loaded_at":    ds.LoadedAt,
		"orders":       len(orders),
		"products":     len(products),
		"years":        len(years),
		"regions":      len(pipeline.RegionOptions(ds.Orders)),
		"states":       len(pipeline.StateOptions(ds.Orders, "")),
		"cities":       len(pipeline.CityOptions(ds.Orders, "")),
	}
}

func filterOptions(all []models.Order, sel models.Selection) FilterOptions {
	return FilterOptions{
		Regions: pipeline.RegionOptions(all),
		States:  pipeline.StateOptions(all, sel.Region),
		Cities:  pipeline.CityOptions(all, sel.State),
	}
}

func breakdown(yearRows []models.Order, metric pipeline.Metric, year int) Breakdown {
	return Breakdown{
		Metric:      metric,
		MetricLabel: metric.Label(),
		Year:        year,
		Segments:    pipeline.SortedTotals(pipeline.SumByDimension(yearRows, pipeline.FieldSegment, metric)),
		Categories:  pipeline.SortedTotals(pipeline.SumByDimension(yearRows, pipeline.FieldCategory, metric)),
	}
}

func rankings(yearRows []models.Order, metric pipeline.Metric, year, n int) (Rankings, error) {
	top, err := pipeline.TopN(yearRows, pipeline.FieldProductID, metric, n, pipeline.Top)
	if err != nil {
		return Rankings{}, err
	}
	bottom, err := pipeline.TopN(yearRows, pipeline.FieldProductID, metric, n, pipeline.Bottom)
	if err != nil {
		return Rankings{}, err
	}
	return Rankings{Metric: metric, Year: year, Size: n, Top: top, Bottom: bottom}, nil
}

// table drops filter values that no longer occur under the geography
// selection, the same way stale states and cities are cleared.
func table(filtered []models.Order, filter models.TableFilter, limit int) Table {
	opts := pipeline.TableOptions(filtered)
	if !slices.Contains(opts.Segments, filter.Segment) {
		filter.Segment = ""
	}
	if !slices.Contains(opts.Categories, filter.Category) {
		filter.Category = ""
	}
	if !slices.Contains(opts.SubCategories, filter.SubCategory) {
		filter.SubCategory = ""
	}

	rows := pipeline.TableView(filtered, filter)
	total := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return Table{
		Options: opts,
		Filter:  filter,
		Rows:    rows,
		Total:   total,
	}
}

// ScopeLabel describes the geography in view, e.g. "East → All States → All Cities".
func ScopeLabel(sel models.Selection) string {
	region, state, city := sel.Region, sel.State, sel.City
	if region == "" {
		region = "All Regions"
	}
	if state == "" {
		state = "All States"
	}
	if city == "" {
		city = "All Cities"
	}
	return region + " → " + state + " → " + city
}
