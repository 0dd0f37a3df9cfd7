package pipeline

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"orders-dashboard/internal/models"
)

const (
	MinRankSize = 1
	MaxRankSize = 50
)

var (
	ErrInvalidRankSize  = errors.New("rank size out of range")
	ErrInvalidDirection = errors.New("invalid rank direction")
)

// TopN sums metric per entity and returns the n best (Top) or worst (Bottom)
// entities. Equal sums are ordered by entity ascending in both directions.
// Callers clamp n; an n outside [MinRankSize, MaxRankSize] is an error.
func TopN(rows []models.Order, entity Field, metric Metric, n int, dir Direction) ([]models.RankedEntity, error) {
	if n < MinRankSize || n > MaxRankSize {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRankSize, n, MinRankSize, MaxRankSize)
	}

	var order int
	switch dir {
	case Top:
		order = -1
	case Bottom:
		order = 1
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	totals := SumByDimension(rows, entity, metric)
	result := make([]models.RankedEntity, 0, len(totals))
	for k, v := range totals {
		result = append(result, models.RankedEntity{Entity: k, Value: v})
	}
	slices.SortFunc(result, func(a, b models.RankedEntity) int {
		if c := cmp.Compare(a.Value, b.Value); c != 0 {
			return c * order
		}
		return strings.Compare(a.Entity, b.Entity)
	})

	if len(result) > n {
		result = result[:n]
	}
	return result, nil
}

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Top, Bottom:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}
