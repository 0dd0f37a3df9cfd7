// Package pipeline turns the loaded orders into the option lists, KPIs,
// series, breakdowns, rankings and table rows shown on the dashboard.
//
// Every function is pure: inputs are never modified and every result is a
// freshly allocated value.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"orders-dashboard/internal/models"
)

// Field names a categorical column of an Order.
type Field string

const (
	FieldOrderID     Field = "order_id"
	FieldProductID   Field = "product_id"
	FieldRegion      Field = "region"
	FieldState       Field = "state"
	FieldCity        Field = "city"
	FieldCountry     Field = "country"
	FieldPostalCode  Field = "postal_code"
	FieldSegment     Field = "segment"
	FieldCategory    Field = "category"
	FieldSubCategory Field = "sub_category"
)

var ErrUnknownField = errors.New("unknown field")

// Value returns the field value of o, or "" for an unknown field.
func (f Field) Value(o *models.Order) string {
	switch f {
	case FieldOrderID:
		return o.OrderID
	case FieldProductID:
		return o.ProductID
	case FieldRegion:
		return o.Region
	case FieldState:
		return o.State
	case FieldCity:
		return o.City
	case FieldCountry:
		return o.Country
	case FieldPostalCode:
		return o.PostalCode
	case FieldSegment:
		return o.Segment
	case FieldCategory:
		return o.Category
	case FieldSubCategory:
		return o.SubCategory
	default:
		return ""
	}
}

func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldOrderID, FieldProductID, FieldRegion, FieldState, FieldCity,
		FieldCountry, FieldPostalCode, FieldSegment, FieldCategory, FieldSubCategory:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Metric names a numeric column that can be summed.
type Metric string

const (
	MetricSales  Metric = "sale_price"
	MetricProfit Metric = "profit"
)

var ErrUnknownMetric = errors.New("unknown metric")

func (m Metric) Value(o *models.Order) float64 {
	if m == MetricProfit {
		return o.Profit
	}
	return o.SalePrice
}

// Label is the chart axis title for the metric.
func (m Metric) Label() string {
	if m == MetricProfit {
		return "Profit ($)"
	}
	return "Sales ($)"
}

// ParseMetric accepts the column name or the display name of a metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale_price", "sales":
		return MetricSales, nil
	case "profit":
		return MetricProfit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Direction selects the best or the worst performers in a ranking.
type Direction string

const (
	Top    Direction = "top"
	Bottom Direction = "bottom"
)
