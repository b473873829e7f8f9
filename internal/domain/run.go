package domain

import "time"

// ReconciliationRun is a finished reconciliation identified for later retrieval.
type ReconciliationRun struct {
	CreatedAt time.Time             `json:"created_at"`
	ID        string                `json:"id"`
	Report    *ReconciliationReport `json:"report"`
}
