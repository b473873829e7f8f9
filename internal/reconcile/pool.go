package reconcile

import "github.com/iho/bankrecon/internal/domain"

// Pool holds one side's transactions for a single run. Entries are addressed
// by their input position and leave the pool only through Claim.
type Pool struct {
	items   []domain.Transaction
	claimed []bool
	open    int
}

// NewPool creates a pool over txns, preserving their order.
func NewPool(txns []domain.Transaction) *Pool {
	items := make([]domain.Transaction, len(txns))
	copy(items, txns)

	return &Pool{
		items:   items,
		claimed: make([]bool, len(items)),
		open:    len(items),
	}
}

// Len returns the total number of transactions, claimed or not.
func (p *Pool) Len() int {
	return len(p.items)
}

// Open returns the number of unclaimed transactions.
func (p *Pool) Open() int {
	return p.open
}

// At returns the transaction at position i.
func (p *Pool) At(i int) domain.Transaction {
	return p.items[i]
}

// IsClaimed reports whether position i has been matched.
func (p *Pool) IsClaimed(i int) bool {
	return p.claimed[i]
}

// OpenIndexes returns the unclaimed positions in input order.
func (p *Pool) OpenIndexes() []int {
	idx := make([]int, 0, p.open)
	for i, c := range p.claimed {
		if !c {
			idx = append(idx, i)
		}
	}
	return idx
}

// Claim removes position i from the pool. It returns false if i was
// already claimed, so a transaction can never be matched twice.
func (p *Pool) Claim(i int) bool {
	if p.claimed[i] {
		return false
	}
	p.claimed[i] = true
	p.open--
	return true
}

// Unclaimed returns the transactions left in the pool, in input order.
func (p *Pool) Unclaimed() []domain.Transaction {
	out := make([]domain.Transaction, 0, p.open)
	for i, c := range p.claimed {
		if !c {
			out = append(out, p.items[i])
		}
	}
	return out
}
