package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/bankrecon/internal/domain"
)

// ReportStore keeps finished runs as JSON documents, plus a per-account
// sorted set of run ids scored by creation time for history listings.
type ReportStore struct {
	client redis.UniversalClient
	prefix string
}

// NewReportStore creates a new ReportStore.
func NewReportStore(client redis.UniversalClient) *ReportStore {
	return &ReportStore{
		client: client,
		prefix: "bankrecon:",
	}
}

func (s *ReportStore) runKey(id string) string {
	return s.prefix + "run:" + id
}

func (s *ReportStore) accountKey(account string) string {
	return s.prefix + "account:" + strings.ToLower(strings.TrimSpace(account)) + ":runs"
}

// Save stores the run under its id for ttl and indexes it by account.
func (s *ReportStore) Save(ctx context.Context, run *domain.ReconciliationRun, ttl time.Duration) error {
	if run == nil || run.Report == nil {
		return fmt.Errorf("cannot store empty run")
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	accountKey := s.accountKey(run.Report.AccountName)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.runKey(run.ID), payload, ttl)
		pipe.ZAdd(ctx, accountKey, redis.Z{
			Score:  float64(run.CreatedAt.UnixMilli()),
			Member: run.ID,
		})
		if ttl > 0 {
			// Index entries older than the newest run's TTL point at expired documents.
			pipe.ZRemRangeByScore(ctx, accountKey, "-inf",
				fmt.Sprintf("(%d", run.CreatedAt.Add(-ttl).UnixMilli()))
			pipe.Expire(ctx, accountKey, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}

	return nil
}

// Get loads a run by id.
func (s *ReportStore) Get(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
	payload, err := s.client.Get(ctx, s.runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	return decodeRun(payload)
}

// ListByAccount returns the account's most recent runs, newest first.
// Runs whose documents have already expired are skipped.
func (s *ReportStore) ListByAccount(ctx context.Context, account string, limit int) ([]*domain.ReconciliationRun, error) {
	ids, err := s.client.ZRevRange(ctx, s.accountKey(account), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", account, err)
	}

	runs := make([]*domain.ReconciliationRun, 0, len(ids))
	if len(ids) == 0 {
		return runs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.runKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load runs for %s: %w", account, err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		run, err := decodeRun([]byte(raw))
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, nil
}

func decodeRun(payload []byte) (*domain.ReconciliationRun, error) {
	var run domain.ReconciliationRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &run, nil
}
