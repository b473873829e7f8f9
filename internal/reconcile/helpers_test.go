package reconcile_test

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ledgerTxn(id, day, amount, desc string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Date:        date(day),
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
		Source:      domain.SourceLedger,
	}
}

func statementTxn(id, day, amount, desc string) domain.Transaction {
	t := ledgerTxn(id, day, amount, desc)
	t.Source = domain.SourceStatement
	return t
}

func withCheck(t domain.Transaction, check string) domain.Transaction {
	t.CheckNumber = check
	return t
}

func near(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
