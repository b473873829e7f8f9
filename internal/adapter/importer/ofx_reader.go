package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/adapter/record"
	"github.com/iho/bankrecon/internal/domain"
)

// ErrNoStatements is returned when an OFX document carries no bank or card statement.
var ErrNoStatements = errors.New("ofx document contains no bank or credit card statements")

// Statement is a parsed bank statement.
type Statement struct {
	Records       []record.Record
	EndingBalance *decimal.Decimal
	AsOf          string
}

// ReadOFX reads bank and credit card transactions from an OFX/QFX document.
// The ledger balance of the last statement becomes the ending balance.
func ReadOFX(r io.Reader) (*Statement, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ofx: %w", err)
	}

	messages := make([]ofxgo.Message, 0, len(resp.Bank)+len(resp.CreditCard))
	messages = append(messages, resp.Bank...)
	messages = append(messages, resp.CreditCard...)
	if len(messages) == 0 {
		return nil, ErrNoStatements
	}

	stmt := &Statement{}
	for _, msg := range messages {
		var (
			list   *ofxgo.TransactionList
			balAmt ofxgo.Amount
			asOf   ofxgo.Date
		)

		switch m := msg.(type) {
		case *ofxgo.StatementResponse:
			list, balAmt, asOf = m.BankTranList, m.BalAmt, m.DtAsOf
		case *ofxgo.CCStatementResponse:
			list, balAmt, asOf = m.BankTranList, m.BalAmt, m.DtAsOf
		default:
			return nil, fmt.Errorf("unexpected ofx message type %T", msg)
		}

		if list != nil {
			for _, t := range list.Transactions {
				rec, err := ofxRecord(t)
				if err != nil {
					return nil, err
				}
				stmt.Records = append(stmt.Records, rec)
			}
		}

		if !asOf.IsZero() {
			bal, err := decimal.NewFromString(balAmt.String())
			if err != nil {
				return nil, fmt.Errorf("invalid ofx balance %q: %w", balAmt.String(), err)
			}
			stmt.EndingBalance = &bal
			stmt.AsOf = asOf.Format(domain.DateLayout)
		}
	}

	return stmt, nil
}

func ofxRecord(t ofxgo.Transaction) (record.Record, error) {
	amount, err := decimal.NewFromString(t.TrnAmt.String())
	if err != nil {
		return nil, fmt.Errorf("invalid ofx amount %q for %s: %w", t.TrnAmt.String(), t.FiTID, err)
	}

	description := string(t.Name)
	if description == "" {
		description = string(t.Memo)
	}

	rec := record.Record{
		"id":          string(t.FiTID),
		"date":        t.DtPosted.Time,
		"amount":      amount,
		"description": description,
	}
	setIfPresent(rec, "memo", string(t.Memo))
	setIfPresent(rec, "check_number", string(t.CheckNum))
	setIfPresent(rec, "reference", string(t.RefNum))

	return rec, nil
}
