package pipeline

import (
	"maps"
	"strings"

	"orders-dashboard/internal/models"
)

// hiddenColumns never appear in the dataset view.
var hiddenColumns = map[string]struct{}{
	"region":      {},
	"state":       {},
	"city":        {},
	"country":     {},
	"postal_code": {},
	"year":        {},
	"month":       {},
}

// TableView filters rows for the dataset view and strips geography and time
// columns, including any extra attribute carrying one of those names.
func TableView(rows []models.Order, f models.TableFilter) []models.TableRow {
	query := strings.ToLower(f.ProductQuery)

	result := make([]models.TableRow, 0, len(rows))
	for i := range rows {
		o := &rows[i]
		if f.Segment != "" && o.Segment != f.Segment {
			continue
		}
		if f.Category != "" && o.Category != f.Category {
			continue
		}
		if f.SubCategory != "" && o.SubCategory != f.SubCategory {
			continue
		}
		if query != "" && (o.ProductID == "" || !strings.Contains(strings.ToLower(o.ProductID), query)) {
			continue
		}
		result = append(result, models.TableRow{
			OrderID:     o.OrderID,
			ProductID:   o.ProductID,
			SalePrice:   o.SalePrice,
			Profit:      o.Profit,
			Segment:     o.Segment,
			Category:    o.Category,
			SubCategory: o.SubCategory,
			Attributes:  visibleAttributes(o.Attributes),
		})
	}
	return result
}

func visibleAttributes(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := maps.Clone(attrs)
	maps.DeleteFunc(out, func(k, _ string) bool {
		_, hidden := hiddenColumns[strings.ToLower(strings.TrimSpace(k))]
		return hidden
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// TableOptions lists the dropdown choices of the dataset view.
func TableOptions(rows []models.Order) models.TableOptions {
	all := func(*models.Order) bool { return true }
	return models.TableOptions{
		Segments:      distinct(rows, FieldSegment, all),
		Categories:    distinct(rows, FieldCategory, all),
		SubCategories: distinct(rows, FieldSubCategory, all),
	}
}
