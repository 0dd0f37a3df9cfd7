package pipeline

import (
	"slices"
	"strings"

	"orders-dashboard/internal/models"
)

// SumByDimension sums metric per distinct non-empty value of dim.
func SumByDimension(rows []models.Order, dim Field, metric Metric) map[string]float64 {
	totals := make(map[string]float64)
	for i := range rows {
		o := &rows[i]
		key := dim.Value(o)
		if key == "" {
			continue
		}
		totals[key] += metric.Value(o)
	}
	return totals
}

// SortedTotals orders dimension totals by key.
func SortedTotals(totals map[string]float64) []models.DimensionTotal {
	result := make([]models.DimensionTotal, 0, len(totals))
	for k, v := range totals {
		result = append(result, models.DimensionTotal{Key: k, Value: v})
	}
	slices.SortFunc(result, func(a, b models.DimensionTotal) int {
		return strings.Compare(a.Key, b.Key)
	})
	return result
}
