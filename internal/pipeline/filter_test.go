package pipeline

import (
	"reflect"
	"testing"

	"orders-dashboard/internal/models"
)

func TestApplyFilters(t *testing.T) {
	rows := sampleOrders()
	tests := []struct {
		name string
		sel  models.Selection
		want int
	}{
		{"all wildcards", models.Selection{}, len(rows)},
		{"region", models.Selection{Region: "East"}, 3},
		{"region and state", models.Selection{Region: "East", State: "New York"}, 2},
		{"full path", models.Selection{Region: "East", State: "New York", City: "Buffalo"}, 1},
		{"state only", models.Selection{State: "California"}, 2},
		{"contradiction", models.Selection{Region: "West", State: "New York"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(rows, tt.sel)
			if len(got) != tt.want {
				t.Errorf("ApplyFilters(%+v) returned %d rows, want %d", tt.sel, len(got), tt.want)
			}
		})
	}
}

func TestApplyFilters_Idempotent(t *testing.T) {
	rows := sampleOrders()
	sel := models.Selection{Region: "East", State: "New York"}
	once := ApplyFilters(rows, sel)
	twice := ApplyFilters(once, sel)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering twice changed the result: %v vs %v", once, twice)
	}
}

func TestApplyFilters_DoesNotAlias(t *testing.T) {
	rows := sampleOrders()
	got := ApplyFilters(rows, models.Selection{})
	got[0].Region = "changed"
	if rows[0].Region != "East" {
		t.Error("ApplyFilters() result aliases the input slice")
	}
}
