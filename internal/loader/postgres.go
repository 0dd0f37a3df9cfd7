package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"orders-dashboard/internal/models"
)

// OpenPostgres opens and pings a connection pool for dsn.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresLoader reads the orders from a table with the dataset's column
// names.
type PostgresLoader struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

func NewPostgresLoader(db *sql.DB, table string, logger *slog.Logger) *PostgresLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLoader{db: db, table: table, logger: logger}
}

func selectOrdersQuery(table string) string {
	return `SELECT order_id, product_id, sale_price, profit,
		region, state, city, country, postal_code,
		CAST(year AS INTEGER), CAST(month AS INTEGER),
		segment, category, sub_category
	FROM ` + pq.QuoteIdentifier(table)
}

func (l *PostgresLoader) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	l.logger.Info("loading orders from postgres", "table", l.table)

	rows, err := l.db.QueryContext(ctx, selectOrdersQuery(l.table))
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var (
		orders  []models.Order
		skipped int64
	)
	for rows.Next() {
		var (
			orderID, productID, region, state, city       sql.NullString
			country, postalCode, segment, category, subCat sql.NullString
			salePrice, profit                              sql.NullFloat64
			year, month                                    sql.NullInt64
		)
		if err := rows.Scan(&orderID, &productID, &salePrice, &profit,
			&region, &state, &city, &country, &postalCode,
			&year, &month, &segment, &category, &subCat); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		if !salePrice.Valid || !profit.Valid || !year.Valid || !month.Valid ||
			month.Int64 < 1 || month.Int64 > 12 {
			skipped++
			continue
		}

		orders = append(orders, models.Order{
			OrderID:     cleanValue(orderID.String),
			ProductID:   cleanValue(productID.String),
			SalePrice:   salePrice.Float64,
			Profit:      profit.Float64,
			Region:      cleanValue(region.String),
			State:       cleanValue(state.String),
			City:        cleanValue(city.String),
			Country:     cleanValue(country.String),
			PostalCode:  cleanValue(postalCode.String),
			Year:        int(year.Int64),
			Month:       int(month.Int64),
			Segment:     cleanValue(segment.String),
			Category:    cleanValue(category.String),
			SubCategory: cleanValue(subCat.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orders) == 0 {
		return nil, ErrEmptyDataset
	}

	l.logger.Info("postgres load complete",
		"records", len(orders),
		"skipped", skipped,
		"duration", time.Since(start))

	return &Dataset{
		Orders:   orders,
		Skipped:  skipped,
		Source:   "postgres:" + l.table,
		LoadedAt: time.Now(),
	}, nil
}
