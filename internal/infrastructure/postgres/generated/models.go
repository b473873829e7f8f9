package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type LedgerTransaction struct {
	Account     string             `json:"account"`
	ExternalID  string             `json:"external_id"`
	TxnDate     pgtype.Date        `json:"txn_date"`
	Amount      pgtype.Numeric     `json:"amount"`
	Description string             `json:"description"`
	Reference   string             `json:"reference"`
	CheckNumber string             `json:"check_number"`
	ImportedAt  pgtype.Timestamptz `json:"imported_at"`
}
