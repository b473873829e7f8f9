package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/usecase"
)

// FakeLedgerSource is a LedgerSource backed by Func fields and a fixed transaction list.
type FakeLedgerSource struct {
	Transactions []domain.Transaction
	Beginning    decimal.Decimal
	Ending       decimal.Decimal

	ListByAccountFunc func(ctx context.Context, account string, from, to time.Time) ([]domain.Transaction, error)
	BalancesFunc      func(ctx context.Context, account string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error)
}

func (f *FakeLedgerSource) ListByAccount(ctx context.Context, account string, from, to time.Time) ([]domain.Transaction, error) {
	if f.ListByAccountFunc != nil {
		return f.ListByAccountFunc(ctx, account, from, to)
	}
	return f.Transactions, nil
}

func (f *FakeLedgerSource) Balances(ctx context.Context, account string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if f.BalancesFunc != nil {
		return f.BalancesFunc(ctx, account, from, to)
	}
	return f.Beginning, f.Ending, nil
}

// InMemoryReportStore is a ReportStore kept in a map.
type InMemoryReportStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.ReconciliationRun

	SaveFunc func(ctx context.Context, run *domain.ReconciliationRun, ttl time.Duration) error
}

func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{runs: make(map[string]*domain.ReconciliationRun)}
}

func (s *InMemoryReportStore) Save(ctx context.Context, run *domain.ReconciliationRun, ttl time.Duration) error {
	if s.SaveFunc != nil {
		return s.SaveFunc(ctx, run, ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *InMemoryReportStore) Get(_ context.Context, id string) (*domain.ReconciliationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (s *InMemoryReportStore) ListByAccount(_ context.Context, account string, limit int) ([]*domain.ReconciliationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var runs []*domain.ReconciliationRun
	for _, run := range s.runs {
		if run.Report != nil && run.Report.AccountName == account {
			runs = append(runs, run)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// SequentialIDGenerator returns run-1, run-2, ...
type SequentialIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("run-%d", g.counter)
}

// InMemoryIdempotencyStore is an IdempotencyStore kept in a map.
type InMemoryIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *InMemoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte(usecase.IdempotencyPendingMarker)
	}
	return false, nil, nil
}

func (m *InMemoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Get returns the stored value for key.
func (m *InMemoryIdempotencyStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}
