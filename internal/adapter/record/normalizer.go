// Package record turns source-shaped mappings from the ledger and the bank
// statement into canonical transactions.
package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/iho/bankrecon/internal/domain"
)

// Record is one transaction as supplied by a ledger export or statement reader.
type Record map[string]any

// DatePolicy decides what happens to a record whose date cannot be read.
type DatePolicy string

const (
	// DatePolicyReject excludes the record from matching and reports it.
	DatePolicyReject DatePolicy = "reject"
	// DatePolicyToday substitutes the current date.
	DatePolicyToday DatePolicy = "today"
)

// ParseDatePolicy validates a policy name.
func ParseDatePolicy(s string) (DatePolicy, error) {
	switch p := DatePolicy(s); p {
	case DatePolicyReject, DatePolicyToday:
		return p, nil
	case "":
		return DatePolicyReject, nil
	default:
		return "", fmt.Errorf("%w: unknown date policy %q", domain.ErrInvalidConfig, s)
	}
}

// Normalizer converts records of either side into domain transactions.
type Normalizer struct {
	policy DatePolicy
	now    func() time.Time
}

// NewNormalizer creates a Normalizer. now is only consulted under DatePolicyToday.
func NewNormalizer(policy DatePolicy, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{policy: policy, now: now}
}

// Transaction converts a single record. position is the 1-based input
// position, used to synthesize an id when the record has none.
func (n *Normalizer) Transaction(rec Record, source domain.Source, position int) (domain.Transaction, error) {
	aliases := AliasesFor(source)

	id := text(rec.lookup(aliases.ID))
	if id == "" {
		id = fmt.Sprintf("%s-%d", source, position)
	}

	date, err := rec.date(aliases.Date)
	if err != nil {
		if n.policy != DatePolicyToday {
			return domain.Transaction{ID: id, Source: source}, err
		}
		date = domain.CalendarDate(n.now())
	}

	amount, err := ParseAmount(rec.lookup(aliases.Amount))
	if err != nil {
		return domain.Transaction{ID: id, Source: source}, err
	}

	return domain.Transaction{
		ID:          id,
		Date:        date,
		Amount:      amount,
		Description: text(rec.lookup(aliases.Description)),
		Reference:   text(rec.lookup(aliases.Reference)),
		CheckNumber: text(rec.lookup(aliases.CheckNumber)),
		Source:      source,
	}, nil
}

// Normalize converts every record of one side, keeping input order. Records
// that cannot be converted are returned separately. An id already taken on
// this side gets the record position appended.
func (n *Normalizer) Normalize(records []Record, source domain.Source) ([]domain.Transaction, []domain.RejectedRecord) {
	txns := make([]domain.Transaction, 0, len(records))
	var rejected []domain.RejectedRecord
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		t, err := n.Transaction(rec, source, i+1)
		for _, dup := seen[t.ID]; dup; _, dup = seen[t.ID] {
			t.ID = fmt.Sprintf("%s-%d", t.ID, i+1)
		}
		seen[t.ID] = struct{}{}
		if err != nil {
			rejected = append(rejected, domain.RejectedRecord{
				Source:   source,
				Position: i + 1,
				ID:       t.ID,
				Reason:   err.Error(),
			})
			continue
		}
		txns = append(txns, t)
	}

	return txns, rejected
}

// lookup returns the value of the first alias present with a non-empty value.
func (r Record) lookup(keys []string) any {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v
	}
	return nil
}

// date returns the first parseable value among the date aliases.
func (r Record) date(keys []string) (time.Time, error) {
	firstErr := domain.ErrMissingDate
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		t, err := ParseDate(v)
		if err == nil {
			return t, nil
		}
		if errors.Is(firstErr, domain.ErrMissingDate) {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
