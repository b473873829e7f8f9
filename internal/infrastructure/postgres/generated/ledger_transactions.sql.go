package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countLedgerTransactions = `-- name: CountLedgerTransactions :one
SELECT COUNT(*) FROM ledger_transactions WHERE account = $1
`

func (q *Queries) CountLedgerTransactions(ctx context.Context, account string) (int64, error) {
	row := q.db.QueryRow(ctx, countLedgerTransactions, account)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getLedgerBalances = `-- name: GetLedgerBalances :one
SELECT
    COALESCE(SUM(amount) FILTER (WHERE txn_date < $2::date), 0)::numeric AS beginning_balance,
    COALESCE(SUM(amount) FILTER (WHERE $3::date IS NULL OR txn_date <= $3::date), 0)::numeric AS ending_balance
FROM ledger_transactions
WHERE account = $1
`

type GetLedgerBalancesParams struct {
	Account  string      `json:"account"`
	FromDate pgtype.Date `json:"from_date"`
	ToDate   pgtype.Date `json:"to_date"`
}

type GetLedgerBalancesRow struct {
	BeginningBalance pgtype.Numeric `json:"beginning_balance"`
	EndingBalance    pgtype.Numeric `json:"ending_balance"`
}

func (q *Queries) GetLedgerBalances(ctx context.Context, arg GetLedgerBalancesParams) (GetLedgerBalancesRow, error) {
	row := q.db.QueryRow(ctx, getLedgerBalances, arg.Account, arg.FromDate, arg.ToDate)
	var i GetLedgerBalancesRow
	err := row.Scan(&i.BeginningBalance, &i.EndingBalance)
	return i, err
}

const listLedgerTransactions = `-- name: ListLedgerTransactions :many
SELECT account, external_id, txn_date, amount, description, reference, check_number, imported_at
FROM ledger_transactions
WHERE account = $1
  AND ($2::date IS NULL OR txn_date >= $2::date)
  AND ($3::date IS NULL OR txn_date <= $3::date)
ORDER BY txn_date, external_id
`

type ListLedgerTransactionsParams struct {
	Account  string      `json:"account"`
	FromDate pgtype.Date `json:"from_date"`
	ToDate   pgtype.Date `json:"to_date"`
}

func (q *Queries) ListLedgerTransactions(ctx context.Context, arg ListLedgerTransactionsParams) ([]LedgerTransaction, error) {
	rows, err := q.db.Query(ctx, listLedgerTransactions, arg.Account, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerTransaction
	for rows.Next() {
		var i LedgerTransaction
		if err := rows.Scan(
			&i.Account,
			&i.ExternalID,
			&i.TxnDate,
			&i.Amount,
			&i.Description,
			&i.Reference,
			&i.CheckNumber,
			&i.ImportedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertLedgerTransaction = `-- name: UpsertLedgerTransaction :exec
INSERT INTO ledger_transactions (account, external_id, txn_date, amount, description, reference, check_number)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (account, external_id) DO UPDATE
SET txn_date = EXCLUDED.txn_date,
    amount = EXCLUDED.amount,
    description = EXCLUDED.description,
    reference = EXCLUDED.reference,
    check_number = EXCLUDED.check_number,
    imported_at = now()
`

type UpsertLedgerTransactionParams struct {
	Account     string         `json:"account"`
	ExternalID  string         `json:"external_id"`
	TxnDate     pgtype.Date    `json:"txn_date"`
	Amount      pgtype.Numeric `json:"amount"`
	Description string         `json:"description"`
	Reference   string         `json:"reference"`
	CheckNumber string         `json:"check_number"`
}

func (q *Queries) UpsertLedgerTransaction(ctx context.Context, arg UpsertLedgerTransactionParams) error {
	_, err := q.db.Exec(ctx, upsertLedgerTransaction,
		arg.Account,
		arg.ExternalID,
		arg.TxnDate,
		arg.Amount,
		arg.Description,
		arg.Reference,
		arg.CheckNumber,
	)
	return err
}
