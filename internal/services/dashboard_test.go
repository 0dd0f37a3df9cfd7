package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"orders-dashboard/internal/config"
	"orders-dashboard/internal/loader"
	"orders-dashboard/internal/models"
	"orders-dashboard/internal/pipeline"
)

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{CurrentYear: 2023, PreviousYear: 2022, RankSize: 10, TableRows: 100}
}

func testOrders() []models.Order {
	return []models.Order{
		{OrderID: "CA-1", ProductID: "TEC-PH-1", SalePrice: 900, Profit: 120, Region: "West", State: "California", City: "Los Angeles", Year: 2023, Month: 1, Segment: "Consumer", Category: "Technology", SubCategory: "Phones"},
		{OrderID: "CA-1", ProductID: "OFF-PA-1", SalePrice: 20, Profit: 4, Region: "West", State: "California", City: "Los Angeles", Year: 2023, Month: 1, Segment: "Consumer", Category: "Office Supplies", SubCategory: "Paper"},
		{OrderID: "CA-2", ProductID: "FUR-CH-1", SalePrice: 300, Profit: -30, Region: "West", State: "Washington", City: "Seattle", Year: 2023, Month: 5, Segment: "Corporate", Category: "Furniture", SubCategory: "Chairs"},
		{OrderID: "CA-3", ProductID: "TEC-PH-1", SalePrice: 600, Profit: 80, Region: "West", State: "California", City: "San Francisco", Year: 2022, Month: 5, Segment: "Consumer", Category: "Technology", SubCategory: "Phones"},
		{OrderID: "US-1", ProductID: "OFF-PA-1", SalePrice: 40, Profit: 8, Region: "East", State: "New York", City: "New York City", Year: 2023, Month: 2, Segment: "Home Office", Category: "Office Supplies", SubCategory: "Paper"},
		{OrderID: "US-2", ProductID: "FUR-CH-1", SalePrice: 250, Profit: 25, Region: "East", State: "New York", City: "New York City", Year: 2022, Month: 11, Segment: "Corporate", Category: "Furniture", SubCategory: "Chairs"},
	}
}

func newTestDashboard() *Dashboard {
	d := NewDashboard(testConfig(), nil)
	d.SetData(testOrders())
	return d
}

func TestDashboard_NotLoaded(t *testing.T) {
	d := NewDashboard(testConfig(), nil)

	if _, err := d.KPIs(context.Background(), models.Selection{}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("KPIs() error = %v, want ErrNotLoaded", err)
	}
	if _, err := d.Render(context.Background(), State{RankSize: 10}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Render() error = %v, want ErrNotLoaded", err)
	}
	if loaded := d.Stats()["loaded"]; loaded != false {
		t.Errorf("Stats()[loaded] = %v", loaded)
	}
	if d.Loaded() {
		t.Error("Loaded() = true before any data")
	}

	d.SetData(testOrders())
	if !d.Loaded() {
		t.Error("Loaded() = false after SetData")
	}
}

func TestDashboard_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	content := "order_id,product_id,sale_price,profit,region,state,city,year,month,segment,category,sub_category\n" +
		"A,P1,100,20,East,New York,New York City,2023,1,Consumer,Tech,Phones\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDashboard(testConfig(), nil)
	if err := d.Load(context.Background(), loader.NewCSVLoader(path, nil, nil)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cmp, err := d.KPIs(context.Background(), models.Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Current != (models.KPI{Sales: 100, Profit: 20, Orders: 1}) {
		t.Errorf("Current = %+v", cmp.Current)
	}
	if cmp.SalesChange != "N/A" {
		t.Errorf("SalesChange = %q, want N/A", cmp.SalesChange)
	}
}

func TestDashboard_LoadError(t *testing.T) {
	d := NewDashboard(testConfig(), nil)
	err := d.Load(context.Background(), loader.NewCSVLoader(filepath.Join(t.TempDir(), "none.csv"), nil, nil))
	if err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestDashboard_Options(t *testing.T) {
	d := newTestDashboard()

	sel, opts, err := d.Options(context.Background(), models.Selection{Region: "East", State: "California"})
	if err != nil {
		t.Fatal(err)
	}
	if sel != (models.Selection{Region: "East"}) {
		t.Errorf("resolved selection = %+v", sel)
	}
	if len(opts.Regions) != 2 || len(opts.States) != 1 || opts.States[0] != "New York" {
		t.Errorf("options = %+v", opts)
	}
	if len(opts.Cities) != 4 {
		t.Errorf("cities = %v, want all 4 cities when no state is selected", opts.Cities)
	}
}

func TestDashboard_KPIs(t *testing.T) {
	d := newTestDashboard()

	cmp, err := d.KPIs(context.Background(), models.Selection{Region: "West"})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Current != (models.KPI{Sales: 1220, Profit: 94, Orders: 2}) {
		t.Errorf("Current = %+v", cmp.Current)
	}
	if cmp.Previous != (models.KPI{Sales: 600, Profit: 80, Orders: 1}) {
		t.Errorf("Previous = %+v", cmp.Previous)
	}
	if cmp.OrdersChange != "100.00%" || cmp.ProfitChange != "17.50%" {
		t.Errorf("changes = %q, %q", cmp.OrdersChange, cmp.ProfitChange)
	}
}

func TestDashboard_Rankings(t *testing.T) {
	d := newTestDashboard()

	r, err := d.Rankings(context.Background(), models.Selection{}, pipeline.MetricProfit, 2023, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Top) != 2 || r.Top[0].Entity != "TEC-PH-1" || r.Top[1].Entity != "OFF-PA-1" {
		t.Errorf("Top = %+v", r.Top)
	}
	if len(r.Bottom) != 2 || r.Bottom[0].Entity != "FUR-CH-1" {
		t.Errorf("Bottom = %+v", r.Bottom)
	}

	if _, err := d.Rankings(context.Background(), models.Selection{}, pipeline.MetricProfit, 2023, 0); !errors.Is(err, pipeline.ErrInvalidRankSize) {
		t.Errorf("Rankings(n=0) error = %v, want ErrInvalidRankSize", err)
	}
}

func TestDashboard_Rank(t *testing.T) {
	d := newTestDashboard()

	got, err := d.Rank(context.Background(), models.Selection{}, pipeline.FieldCategory, pipeline.MetricSales, 2023, 2, pipeline.Bottom)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := []models.RankedEntity{{Entity: "Office Supplies", Value: 60}, {Entity: "Furniture", Value: 300}}
	if len(got) != len(want) {
		t.Fatalf("Rank() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rank()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if _, err := d.Rank(context.Background(), models.Selection{}, pipeline.FieldCategory, pipeline.MetricSales, 2023, 0, pipeline.Top); !errors.Is(err, pipeline.ErrInvalidRankSize) {
		t.Errorf("Rank(n=0) error = %v, want ErrInvalidRankSize", err)
	}
}

func TestDashboard_Breakdown(t *testing.T) {
	d := newTestDashboard()

	b, err := d.Breakdown(context.Background(), models.Selection{}, pipeline.MetricSales, 2022)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.DimensionTotal{{Key: "Consumer", Value: 600}, {Key: "Corporate", Value: 250}}
	if len(b.Segments) != len(want) || b.Segments[0] != want[0] || b.Segments[1] != want[1] {
		t.Errorf("Segments = %+v, want %+v", b.Segments, want)
	}
	if b.MetricLabel != "Sales ($)" {
		t.Errorf("MetricLabel = %q", b.MetricLabel)
	}
}

func TestDashboard_Table(t *testing.T) {
	d := newTestDashboard()

	tbl, err := d.Table(context.Background(), models.Selection{Region: "West"}, models.TableFilter{ProductQuery: "tec"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Total != 2 || len(tbl.Rows) != 1 {
		t.Errorf("table total = %d, rows = %d, want 2 and 1", tbl.Total, len(tbl.Rows))
	}
	if len(tbl.Options.Segments) != 2 {
		t.Errorf("segment options = %v", tbl.Options.Segments)
	}
}

func TestDashboard_TableDropsStaleFilter(t *testing.T) {
	d := newTestDashboard()

	// No Consumer orders in the East; Furniture still applies.
	filter := models.TableFilter{Segment: "Consumer", Category: "Furniture", SubCategory: "Phones"}
	tbl, err := d.Table(context.Background(), models.Selection{Region: "East"}, filter, 100)
	if err != nil {
		t.Fatal(err)
	}
	want := models.TableFilter{Category: "Furniture"}
	if tbl.Filter != want {
		t.Errorf("Filter = %+v, want %+v", tbl.Filter, want)
	}
	if tbl.Total != 1 || tbl.Rows[0].OrderID != "US-2" {
		t.Errorf("rows = %+v, want only US-2", tbl.Rows)
	}
}

func TestDashboard_Render(t *testing.T) {
	d := newTestDashboard()

	v, err := d.Render(context.Background(), State{
		Selection:  models.Selection{Region: "West", State: "California"},
		Metric:     pipeline.MetricSales,
		Year:       2023,
		RankSize:   10,
		TableLimit: 50,
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if v.Scope != "West → California → All Cities" {
		t.Errorf("Scope = %q", v.Scope)
	}
	if v.KPIs.Current.Sales != 920 {
		t.Errorf("current sales = %v, want 920", v.KPIs.Current.Sales)
	}
	if len(v.Monthly) != 2 || v.Monthly[0].YearLabel != "2022" {
		t.Errorf("Monthly = %+v", v.Monthly)
	}
	if len(v.Rankings.Top) != 2 || v.Rankings.Top[0].Entity != "TEC-PH-1" {
		t.Errorf("Top = %+v", v.Rankings.Top)
	}
	if len(v.Table.Rows) != 3 {
		t.Errorf("table rows = %d, want 3", len(v.Table.Rows))
	}
	if len(v.Options.Cities) != 2 {
		t.Errorf("cities = %v", v.Options.Cities)
	}
}

func TestDashboard_RenderInvalidRankSize(t *testing.T) {
	d := newTestDashboard()
	_, err := d.Render(context.Background(), State{Metric: pipeline.MetricSales, Year: 2023, RankSize: 51})
	if !errors.Is(err, pipeline.ErrInvalidRankSize) {
		t.Errorf("Render() error = %v, want ErrInvalidRankSize", err)
	}
}

func TestDashboard_Stats(t *testing.T) {
	stats := newTestDashboard().Stats()

	want := map[string]any{
		"record_count": 6,
		"orders":       5,
		"products":     3,
		"regions":      2,
		"states":       3,
		"cities":       4,
		"years":        2,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("Stats()[%q] = %v, want %v", k, stats[k], v)
		}
	}
}

func TestDashboard_StatsSkipsNullIDs(t *testing.T) {
	d := NewDashboard(testConfig(), nil)
	d.SetData(append(testOrders(),
		models.Order{OrderID: "", ProductID: "", SalePrice: 5, Region: "East", State: "New York", City: "New York City", Year: 2023, Month: 3},
	))

	stats := d.Stats()
	if stats["record_count"] != 7 {
		t.Errorf("record_count = %v, want 7", stats["record_count"])
	}
	if stats["orders"] != 5 || stats["products"] != 3 {
		t.Errorf("orders = %v, products = %v, want 5 and 3", stats["orders"], stats["products"])
	}
}

func TestScopeLabel(t *testing.T) {
	tests := []struct {
		sel  models.Selection
		want string
	}{
		{models.Selection{}, "All Regions → All States → All Cities"},
		{models.Selection{Region: "East", State: "New York", City: "Buffalo"}, "East → New York → Buffalo"},
	}
	for _, tt := range tests {
		if got := ScopeLabel(tt.sel); got != tt.want {
			t.Errorf("ScopeLabel(%+v) = %q, want %q", tt.sel, got, tt.want)
		}
	}
}

func TestDashboard_ConcurrentRender(t *testing.T) {
	d := newTestDashboard()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := d.Render(context.Background(), State{Metric: pipeline.MetricProfit, Year: 2023, RankSize: 5})
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Errorf("Render() error = %v", err)
		}
	}
}

func BenchmarkDashboard_Render(b *testing.B) {
	orders := make([]models.Order, 0, 10000)
	regions := []string{"East", "West", "Central", "South"}
	for i := 0; i < 10000; i++ {
		orders = append(orders, models.Order{
			OrderID:   "O" + string(rune('a'+i%26)),
			ProductID: "P" + string(rune('a'+i%50)),
			SalePrice: float64(i % 500),
			Profit:    float64(i%100 - 30),
			Region:    regions[i%4],
			State:     "S" + string(rune('a'+i%12)),
			City:      "C" + string(rune('a'+i%40)),
			Year:      2022 + i%2,
			Month:     i%12 + 1,
			Segment:   "Consumer",
			Category:  "Technology",
		})
	}
	d := NewDashboard(testConfig(), nil)
	d.SetData(orders)
	st := State{Metric: pipeline.MetricSales, Year: 2023, RankSize: 10, TableLimit: 100}

	b.ResetTimer()
	for b.Loop() {
		if _, err := d.Render(context.Background(), st); err != nil {
			b.Fatal(err)
		}
	}
}
