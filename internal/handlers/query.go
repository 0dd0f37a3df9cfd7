package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"orders-dashboard/internal/config"
	apperrors "orders-dashboard/internal/errors"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/pipeline"
	"orders-dashboard/internal/services"
	"orders-dashboard/internal/validation"
)

// wildcard is what the page sends for an unset filter.
const wildcard = "All"

// DashboardQuery is the set of parameters accepted by every dashboard
// endpoint. Endpoints ignore the ones they do not use.
type DashboardQuery struct {
	Region      string `query:"region" validate:"max=100"`
	State       string `query:"state" validate:"max=100"`
	City        string `query:"city" validate:"max=100"`
	Metric      string `query:"metric" validate:"oneof=sales sale_price profit"`
	Year        int    `query:"year" validate:"gte=1900,lte=2100"`
	N           int    `query:"n"`
	Segment     string `query:"segment" validate:"max=100"`
	Category    string `query:"category" validate:"max=100"`
	SubCategory string `query:"sub_category" validate:"max=100"`
	Product     string `query:"q" validate:"max=100"`
	Limit       int    `query:"limit" validate:"gte=1,lte=10000"`
	Entity      string `query:"entity" validate:"omitempty,oneof=product_id order_id segment category sub_category region state city"`
	Direction   string `query:"direction" validate:"omitempty,oneof=top bottom"`
}

func defaultQuery(cfg config.DashboardConfig) DashboardQuery {
	return DashboardQuery{
		Metric: string(pipeline.MetricProfit),
		Year:   cfg.PreviousYear,
		N:      cfg.RankSize,
		Limit:  cfg.TableRows,
	}
}

// ParseQuery reads v over the configured defaults and validates the result.
func ParseQuery(v url.Values, cfg config.DashboardConfig) (DashboardQuery, error) {
	q := defaultQuery(cfg)

	q.Region = v.Get("region")
	q.State = v.Get("state")
	q.City = v.Get("city")
	q.Segment = v.Get("segment")
	q.Category = v.Get("category")
	q.SubCategory = v.Get("sub_category")
	q.Product = strings.TrimSpace(v.Get("q"))
	q.Entity = strings.ToLower(strings.TrimSpace(v.Get("entity")))
	q.Direction = strings.ToLower(strings.TrimSpace(v.Get("direction")))
	if m := v.Get("metric"); m != "" {
		q.Metric = strings.ToLower(strings.TrimSpace(m))
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"year", &q.Year},
		{"n", &q.N},
		{"limit", &q.Limit},
	}
	for _, p := range ints {
		raw := v.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return q, apperrors.BadRequestWrap(err, p.name+" must be an integer").
				WithDetails(map[string]any{"field": p.name, "value": raw})
		}
		*p.dst = n
	}

	return q, q.validate()
}

func (q DashboardQuery) validate() error {
	if verr := validation.ValidateStruct(q); verr != nil {
		return verr.ToAppError()
	}
	return nil
}

// ClampRankSize forces n into the range the ranking charts accept.
func ClampRankSize(n int) int {
	return max(pipeline.MinRankSize, min(n, pipeline.MaxRankSize))
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, wildcard) {
		return ""
	}
	return s
}

func (q DashboardQuery) Selection() models.Selection {
	return models.Selection{
		Region: normalize(q.Region),
		State:  normalize(q.State),
		City:   normalize(q.City),
	}
}

func (q DashboardQuery) TableFilter() models.TableFilter {
	return models.TableFilter{
		Segment:      normalize(q.Segment),
		Category:     normalize(q.Category),
		SubCategory:  normalize(q.SubCategory),
		ProductQuery: q.Product,
	}
}

// MetricValue is only called after validate, so the metric always parses.
func (q DashboardQuery) MetricValue() pipeline.Metric {
	m, err := pipeline.ParseMetric(q.Metric)
	if err != nil {
		return pipeline.MetricProfit
	}
	return m
}

// SingleRanking reports whether the caller asked for one ranked list rather
// than the top and bottom product pair.
func (q DashboardQuery) SingleRanking() bool {
	return q.Entity != "" || q.Direction != ""
}

// RankTarget returns the entity column and direction, defaulting to the
// top products.
func (q DashboardQuery) RankTarget() (pipeline.Field, pipeline.Direction, error) {
	entity, dir := pipeline.FieldProductID, pipeline.Top
	if q.Entity != "" {
		f, err := pipeline.ParseField(q.Entity)
		if err != nil {
			return "", "", apperrors.ValidationWrap(err, err.Error())
		}
		entity = f
	}
	if q.Direction != "" {
		d, err := pipeline.ParseDirection(q.Direction)
		if err != nil {
			return "", "", apperrors.ValidationWrap(err, err.Error())
		}
		dir = d
	}
	return entity, dir, nil
}

func (q DashboardQuery) ServiceState() services.State {
	return services.State{
		Selection:  q.Selection(),
		Metric:     q.MetricValue(),
		Year:       q.Year,
		RankSize:   ClampRankSize(q.N),
		Table:      q.TableFilter(),
		TableLimit: q.Limit,
	}
}
