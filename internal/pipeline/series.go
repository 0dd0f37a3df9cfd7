package pipeline

import (
	"cmp"
	"slices"
	"strconv"

	"orders-dashboard/internal/models"
)

type monthKey struct {
	year  int
	month int
}

// MonthlySeries sums sales and profit per (year, month), ordered by year then
// month.
func MonthlySeries(rows []models.Order) []models.MonthlyPoint {
	groups := make(map[monthKey]*models.MonthlyPoint)
	for i := range rows {
		o := &rows[i]
		key := monthKey{year: o.Year, month: o.Month}
		p := groups[key]
		if p == nil {
			p = &models.MonthlyPoint{
				Year:      o.Year,
				YearLabel: strconv.Itoa(o.Year),
				Month:     o.Month,
			}
			groups[key] = p
		}
		p.Sales += o.SalePrice
		p.Profit += o.Profit
	}

	result := make([]models.MonthlyPoint, 0, len(groups))
	for _, p := range groups {
		result = append(result, *p)
	}
	slices.SortFunc(result, func(a, b models.MonthlyPoint) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return result
}
