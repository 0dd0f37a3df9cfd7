// Package loader reads the cleaned orders dataset into memory.
package loader

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"orders-dashboard/internal/models"
)

var (
	ErrEmptyDataset  = errors.New("no valid records found")
	ErrMissingColumn = errors.New("missing required column")
)

// Dataset is the immutable result of one load.
type Dataset struct {
	Orders   []models.Order
	Skipped  int64
	Source   string
	LoadedAt time.Time
}

// Loader produces a Dataset from some backing store.
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Column names of the cleaned orders file.
const (
	colOrderID     = "order_id"
	colProductID   = "product_id"
	colSalePrice   = "sale_price"
	colProfit      = "profit"
	colRegion      = "region"
	colState       = "state"
	colCity        = "city"
	colCountry     = "country"
	colPostalCode  = "postal_code"
	colYear        = "year"
	colMonth       = "month"
	colSegment     = "segment"
	colCategory    = "category"
	colSubCategory = "sub_category"
)

var requiredColumns = []string{
	colOrderID, colProductID, colSalePrice, colProfit,
	colRegion, colState, colCity, colYear, colMonth,
}

var knownColumns = map[string]struct{}{
	colOrderID: {}, colProductID: {}, colSalePrice: {}, colProfit: {},
	colRegion: {}, colState: {}, colCity: {}, colCountry: {}, colPostalCode: {},
	colYear: {}, colMonth: {}, colSegment: {}, colCategory: {}, colSubCategory: {},
}

// cleanValue trims v and maps the null spellings pandas writes to "".
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "na", "nan", "null", "none", "<na>":
		return ""
	}
	return v
}

// parseWhole accepts "2023" as well as "2023.0".
func parseWhole(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}
