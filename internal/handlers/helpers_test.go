package handlers

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"orders-dashboard/internal/config"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/services"
)

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{CurrentYear: 2023, PreviousYear: 2022, RankSize: 10, TableRows: 100}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestDashboard() *services.Dashboard {
	d := services.NewDashboard(testConfig(), testLogger())
	d.SetData([]models.Order{
		{OrderID: "CA-1", ProductID: "TEC-PH-1", SalePrice: 900, Profit: 120, Region: "West", State: "California", City: "Los Angeles", Year: 2023, Month: 1, Segment: "Consumer", Category: "Technology", SubCategory: "Phones"},
		{OrderID: "CA-1", ProductID: "OFF-PA-1", SalePrice: 20, Profit: 4, Region: "West", State: "California", City: "Los Angeles", Year: 2023, Month: 1, Segment: "Consumer", Category: "Office Supplies", SubCategory: "Paper"},
		{OrderID: "CA-2", ProductID: "FUR-CH-1", SalePrice: 300, Profit: -30, Region: "West", State: "Washington", City: "Seattle", Year: 2023, Month: 5, Segment: "Corporate", Category: "Furniture", SubCategory: "Chairs"},
		{OrderID: "CA-3", ProductID: "TEC-PH-1", SalePrice: 600, Profit: 80, Region: "West", State: "California", City: "San Francisco", Year: 2022, Month: 5, Segment: "Consumer", Category: "Technology", SubCategory: "Phones"},
		{OrderID: "US-1", ProductID: "OFF-PA-1", SalePrice: 40, Profit: 8, Region: "East", State: "New York", City: "New York City", Year: 2023, Month: 2, Segment: "Home Office", Category: "Office Supplies", SubCategory: "Paper"},
		{OrderID: "US-2", ProductID: "FUR-CH-1", SalePrice: 250, Profit: 25, Region: "East", State: "New York", City: "New York City", Year: 2022, Month: 11, Segment: "Corporate", Category: "Furniture", SubCategory: "Chairs"},
	})
	return d
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// decode reads the response envelope and unmarshals its data into v.
func decode(t *testing.T, w *httptest.ResponseRecorder, v any) envelope {
	t.Helper()

	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if v != nil && env.Success {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return env
}
