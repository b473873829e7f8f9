package domain

import "errors"

var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid reconciliation config")

	// Record errors
	ErrUnparseableDate = errors.New("unparseable date")
	ErrMissingDate     = errors.New("missing date")
	ErrInvalidAmount   = errors.New("invalid amount")

	// Request errors
	ErrInvalidAccountName   = errors.New("invalid account name")
	ErrInvalidStatementDate = errors.New("invalid statement date")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrTooManyRecords       = errors.New("too many records")

	// Run errors
	ErrRunNotFound = errors.New("reconciliation run not found")

	// Ledger source errors
	ErrLedgerSourceUnavailable = errors.New("ledger source not configured")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
