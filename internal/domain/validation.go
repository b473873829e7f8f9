package domain

import (
	"fmt"
	"strings"
	"time"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxRecordsPerSide    = 50000
	DefaultRunLimit      = 20
	MaxRunLimit          = 100
)

// ValidateAccountName validates the name of the account being reconciled.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateStatementDate checks that the statement date is a YYYY-MM-DD calendar date.
func ValidateStatementDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidStatementDate, date)
	}
	return nil
}

// ValidatePeriod checks that from is not after to.
func ValidatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: both ends are required", ErrInvalidPeriod)
	}
	if from.After(to) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidPeriod, from.Format(DateLayout), to.Format(DateLayout))
	}
	return nil
}

// ValidateRecordCount bounds the size of one side of a reconciliation.
// Matching is quadratic in the number of records.
func ValidateRecordCount(side Source, n int) error {
	if n > MaxRecordsPerSide {
		return fmt.Errorf("%w: %d %s records exceeds limit of %d", ErrTooManyRecords, n, side, MaxRecordsPerSide)
	}
	return nil
}

// ClampRunLimit bounds the number of runs returned by a history listing.
func ClampRunLimit(limit int) int {
	if limit <= 0 {
		return DefaultRunLimit
	}
	if limit > MaxRunLimit {
		return MaxRunLimit
	}
	return limit
}
