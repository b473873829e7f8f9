package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// Config holds the matching parameters for an Engine.
type Config struct {
	// DateToleranceDays is how many days apart two records may be and still match.
	DateToleranceDays int
	// AmountTolerance is the largest amount difference treated as equal.
	AmountTolerance decimal.Decimal
	// DescriptionThreshold is advisory only; no phase gates on it.
	DescriptionThreshold float64
	// ConfidenceThreshold is the minimum confidence for phases 2 and 3 to accept a pair.
	ConfidenceThreshold float64
	// Workers > 1 scores fuzzy candidates concurrently.
	Workers int
}

// DefaultConfig returns the standard matching parameters.
func DefaultConfig() Config {
	return Config{
		DateToleranceDays:    3,
		AmountTolerance:      decimal.NewFromFloat(0.01),
		DescriptionThreshold: 0.6,
		ConfidenceThreshold:  0.75,
		Workers:              1,
	}
}

// Validate rejects tolerances and thresholds that cannot produce meaningful scores.
func (c Config) Validate() error {
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("%w: date tolerance must be non-negative, got %d", domain.ErrInvalidConfig, c.DateToleranceDays)
	}
	if c.AmountTolerance.IsNegative() {
		return fmt.Errorf("%w: amount tolerance must be non-negative, got %s", domain.ErrInvalidConfig, c.AmountTolerance)
	}
	if c.DescriptionThreshold < 0 || c.DescriptionThreshold > 1 {
		return fmt.Errorf("%w: description threshold must be within [0,1], got %v", domain.ErrInvalidConfig, c.DescriptionThreshold)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold must be within [0,1], got %v", domain.ErrInvalidConfig, c.ConfidenceThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", domain.ErrInvalidConfig, c.Workers)
	}
	return nil
}
