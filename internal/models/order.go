package models

// Order is one line item of the cleaned orders dataset. Several line items can
// share an OrderID. Empty strings stand for missing categorical values.
type Order struct {
	OrderID     string
	ProductID   string
	SalePrice   float64
	Profit      float64
	Region      string
	State       string
	City        string
	Country     string
	PostalCode  string
	Year        int
	Month       int
	Segment     string
	Category    string
	SubCategory string

	// Attributes holds any extra dataset columns by header name.
	Attributes map[string]string
}

// Selection is the cascading geography filter. An empty field means "All".
type Selection struct {
	Region string `json:"region"`
	State  string `json:"state"`
	City   string `json:"city"`
}

// TableFilter narrows the dataset view below the geography filter.
type TableFilter struct {
	Segment      string `json:"segment"`
	Category     string `json:"category"`
	SubCategory  string `json:"sub_category"`
	ProductQuery string `json:"product_query"`
}

type KPI struct {
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
	Orders int     `json:"orders"`
}

// Comparison holds the KPIs of two years and the percent change strings
// between them.
type Comparison struct {
	CurrentYear  int    `json:"current_year"`
	PreviousYear int    `json:"previous_year"`
	Current      KPI    `json:"current"`
	Previous     KPI    `json:"previous"`
	SalesChange  string `json:"sales_change"`
	ProfitChange string `json:"profit_change"`
	OrdersChange string `json:"orders_change"`
}

type MonthlyPoint struct {
	Year      int     `json:"-"`
	YearLabel string  `json:"year"`
	Month     int     `json:"month"`
	Sales     float64 `json:"sale_price"`
	Profit    float64 `json:"profit"`
}

type DimensionTotal struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type RankedEntity struct {
	Entity string  `json:"entity"`
	Value  float64 `json:"value"`
}

// TableRow is an Order as shown in the dataset view, without geography and
// time columns.
type TableRow struct {
	OrderID     string            `json:"order_id"`
	ProductID   string            `json:"product_id"`
	SalePrice   float64           `json:"sale_price"`
	Profit      float64           `json:"profit"`
	Segment     string            `json:"segment"`
	Category    string            `json:"category"`
	SubCategory string            `json:"sub_category"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type TableOptions struct {
	Segments      []string `json:"segments"`
	Categories    []string `json:"categories"`
	SubCategories []string `json:"sub_categories"`
}
