package record

import "github.com/iho/bankrecon/internal/domain"

// Aliases lists, per canonical field, the source keys to look up in order.
type Aliases struct {
	ID          []string
	Date        []string
	Amount      []string
	Description []string
	Reference   []string
	CheckNumber []string
}

// LedgerAliases matches accounting-system exports (QuickBooks style keys included).
var LedgerAliases = Aliases{
	ID:          []string{"id", "Id"},
	Date:        []string{"date", "TxnDate"},
	Amount:      []string{"amount", "TotalAmt"},
	Description: []string{"vendor", "memo", "PrivateNote", "description"},
	Reference:   []string{"DocNumber", "reference"},
	CheckNumber: []string{"check_number", "CheckNum"},
}

// StatementAliases matches bank statement rows from CSV, OFX and PDF extraction.
var StatementAliases = Aliases{
	ID:          []string{"id", "reference", "fitid"},
	Date:        []string{"date", "posted"},
	Amount:      []string{"amount"},
	Description: []string{"description", "memo", "name"},
	Reference:   []string{"reference"},
	CheckNumber: []string{"check_number", "check"},
}

// AliasesFor returns the alias table of a source side.
func AliasesFor(source domain.Source) Aliases {
	if source == domain.SourceLedger {
		return LedgerAliases
	}
	return StatementAliases
}
