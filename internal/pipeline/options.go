package pipeline

import (
	"slices"

	"orders-dashboard/internal/models"
)

func RegionOptions(rows []models.Order) []string {
	return distinct(rows, FieldRegion, func(*models.Order) bool { return true })
}

// StateOptions lists the states of region, or every state when region is "".
func StateOptions(rows []models.Order, region string) []string {
	return distinct(rows, FieldState, func(o *models.Order) bool {
		return region == "" || o.Region == region
	})
}

// CityOptions lists the cities of state, or every city when state is "".
func CityOptions(rows []models.Order, state string) []string {
	return distinct(rows, FieldCity, func(o *models.Order) bool {
		return state == "" || o.State == state
	})
}

// ResolveSelection clears choices that are no longer offered under the
// broader ones. Clearing a choice also clears every narrower choice.
func ResolveSelection(rows []models.Order, sel models.Selection) models.Selection {
	if sel.Region != "" && !slices.Contains(RegionOptions(rows), sel.Region) {
		return models.Selection{}
	}
	if sel.State != "" && !slices.Contains(StateOptions(rows, sel.Region), sel.State) {
		return models.Selection{Region: sel.Region}
	}
	if sel.City != "" && !slices.Contains(CityOptions(rows, sel.State), sel.City) {
		sel.City = ""
	}
	return sel
}

// distinct returns the sorted non-empty values of field among the rows
// accepted by keep.
func distinct(rows []models.Order, field Field, keep func(*models.Order) bool) []string {
	seen := make(map[string]struct{})
	for i := range rows {
		o := &rows[i]
		if !keep(o) {
			continue
		}
		if v := field.Value(o); v != "" {
			seen[v] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for v := range seen {
		result = append(result, v)
	}
	slices.Sort(result)
	return result
}
