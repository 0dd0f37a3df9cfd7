package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"orders-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

type CSVLoader struct {
	path             string
	cache            *Cache
	logger           *slog.Logger
	recordsProcessed atomic.Int64
}

// NewCSVLoader reads path. A nil cache disables caching.
func NewCSVLoader(path string, cache *Cache, logger *slog.Logger) *CSVLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVLoader{
		path:   path,
		cache:  cache,
		logger: logger,
	}
}

func (l *CSVLoader) Load(ctx context.Context) (*Dataset, error) {
	if l.cache != nil {
		if cached, err := l.cache.Load(l.path); err == nil {
			l.logger.Info("loaded from cache", "records", len(cached.Orders))
			return cached, nil
		}
	}

	start := time.Now()
	l.logger.Info("processing CSV file", "filename", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	ds, err := l.read(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("process csv: %w", err)
	}
	ds.Source = l.path

	if l.cache != nil {
		if err := l.cache.Save(l.path, ds); err != nil {
			l.logger.Warn("failed to save cache", "error", err)
		}
	}

	duration := time.Since(start)
	count := l.recordsProcessed.Load()
	l.logger.Info("csv processing complete",
		"records", count,
		"skipped", ds.Skipped,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return ds, nil
}

// ReadCSV parses an orders CSV stream without caching.
func ReadCSV(ctx context.Context, r io.Reader) (*Dataset, error) {
	l := NewCSVLoader("", nil, nil)
	return l.read(ctx, r)
}

func (l *CSVLoader) read(ctx context.Context, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := newColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		orders  []models.Order
		skipped int64
	)
	batch := make([][]string, 0, batchSize)

	flush := func() error {
		parsed, bad, err := parseBatch(ctx, batch, cols)
		if err != nil {
			return err
		}
		orders = append(orders, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	if len(orders) == 0 {
		return nil, ErrEmptyDataset
	}

	l.recordsProcessed.Store(int64(len(orders)))
	return &Dataset{
		Orders:   orders,
		Skipped:  skipped,
		LoadedAt: time.Now(),
	}, nil
}

// parseBatch parses records concurrently and keeps their file order.
func parseBatch(ctx context.Context, batch [][]string, cols columnIndex) ([]models.Order, int64, error) {
	type slot struct {
		order models.Order
		valid bool
	}
	slots := make([]slot, len(batch))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	chunk := (len(batch) + maxWorkers - 1) / maxWorkers
	for lo := 0; lo < len(batch); lo += chunk {
		hi := min(lo+chunk, len(batch))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				o, err := cols.parse(batch[i])
				if err != nil {
					continue // skip invalid records
				}
				slots[i] = slot{order: o, valid: true}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0, len(batch))
	var skipped int64
	for _, s := range slots {
		if !s.valid {
			skipped++
			continue
		}
		orders = append(orders, s.order)
	}
	return orders, skipped, nil
}

// columnIndex maps header names to record positions.
type columnIndex struct {
	pos    map[string]int
	extras []extraColumn
}

type extraColumn struct {
	name string
	pos  int
}

func newColumnIndex(header []string) (columnIndex, error) {
	idx := columnIndex{pos: make(map[string]int, len(header))}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		key := strings.ToLower(name)
		if _, known := knownColumns[key]; known {
			idx.pos[key] = i
			continue
		}
		// pandas writes the index as an unnamed first column
		if name == "" || strings.HasPrefix(name, "Unnamed:") {
			continue
		}
		idx.extras = append(idx.extras, extraColumn{name: name, pos: i})
	}

	for _, c := range requiredColumns {
		if _, ok := idx.pos[c]; !ok {
			return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return idx, nil
}

func (c columnIndex) get(record []string, col string) string {
	i, ok := c.pos[col]
	if !ok || i >= len(record) {
		return ""
	}
	return cleanValue(record[i])
}

func (c columnIndex) parse(record []string) (models.Order, error) {
	salePrice, err := strconv.ParseFloat(c.get(record, colSalePrice), 64)
	if err != nil {
		return models.Order{}, fmt.Errorf("sale_price: %w", err)
	}
	profit, err := strconv.ParseFloat(c.get(record, colProfit), 64)
	if err != nil {
		return models.Order{}, fmt.Errorf("profit: %w", err)
	}
	year, err := parseWhole(c.get(record, colYear))
	if err != nil {
		return models.Order{}, fmt.Errorf("year: %w", err)
	}
	month, err := parseWhole(c.get(record, colMonth))
	if err != nil {
		return models.Order{}, fmt.Errorf("month: %w", err)
	}
	if month < 1 || month > 12 {
		return models.Order{}, fmt.Errorf("month %d out of range", month)
	}

	o := models.Order{
		OrderID:     c.get(record, colOrderID),
		ProductID:   c.get(record, colProductID),
		SalePrice:   salePrice,
		Profit:      profit,
		Region:      c.get(record, colRegion),
		State:       c.get(record, colState),
		City:        c.get(record, colCity),
		Country:     c.get(record, colCountry),
		PostalCode:  c.get(record, colPostalCode),
		Year:        year,
		Month:       month,
		Segment:     c.get(record, colSegment),
		Category:    c.get(record, colCategory),
		SubCategory: c.get(record, colSubCategory),
	}

	if len(c.extras) > 0 {
		o.Attributes = make(map[string]string, len(c.extras))
		for _, e := range c.extras {
			if e.pos < len(record) {
				o.Attributes[e.name] = cleanValue(record[e.pos])
			}
		}
	}
	return o, nil
}
