package pipeline

import (
	"fmt"

	"orders-dashboard/internal/models"
)

// KPIs sums sales and profit and counts distinct orders for one year. Rows
// without an order id still add to the sums but are not counted as orders.
func KPIs(rows []models.Order, year int) models.KPI {
	var kpi models.KPI
	orders := make(map[string]struct{})
	for i := range rows {
		o := &rows[i]
		if o.Year != year {
			continue
		}
		kpi.Sales += o.SalePrice
		kpi.Profit += o.Profit
		if o.OrderID != "" {
			orders[o.OrderID] = struct{}{}
		}
	}
	kpi.Orders = len(orders)
	return kpi
}

// PercentChange formats the change from previous to current as "12.34%", or
// "N/A" when previous is zero.
func PercentChange(current, previous float64) string {
	if previous == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", (current-previous)/previous*100)
}

func YearOverYear(rows []models.Order, current, previous int) models.Comparison {
	cur := KPIs(rows, current)
	prev := KPIs(rows, previous)
	return models.Comparison{
		CurrentYear:  current,
		PreviousYear: previous,
		Current:      cur,
		Previous:     prev,
		SalesChange:  PercentChange(cur.Sales, prev.Sales),
		ProfitChange: PercentChange(cur.Profit, prev.Profit),
		OrdersChange: PercentChange(float64(cur.Orders), float64(prev.Orders)),
	}
}

// FilterYear keeps the rows of one year.
func FilterYear(rows []models.Order, year int) []models.Order {
	result := make([]models.Order, 0, len(rows))
	for _, o := range rows {
		if o.Year == year {
			result = append(result, o)
		}
	}
	return result
}
