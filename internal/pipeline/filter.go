package pipeline

import "orders-dashboard/internal/models"

// ApplyFilters keeps the rows matching every non-empty field of sel.
func ApplyFilters(rows []models.Order, sel models.Selection) []models.Order {
	result := make([]models.Order, 0, len(rows))
	for _, o := range rows {
		if sel.Region != "" && o.Region != sel.Region {
			continue
		}
		if sel.State != "" && o.State != sel.State {
			continue
		}
		if sel.City != "" && o.City != sel.City {
			continue
		}
		result = append(result, o)
	}
	return result
}
