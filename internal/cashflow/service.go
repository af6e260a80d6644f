package cashflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/shared"
)

const (
	cacheVersionKey = "cashflow:ver"
	cacheTTL        = 5 * time.Minute
)

// Repository defines data access for the cash account stream.
type Repository interface {
	LoadEntries(ctx context.Context, from, to time.Time) ([]Entry, error)
	// NetBefore sums credit-debit over cash rows dated before the cutoff.
	NetBefore(ctx context.Context, cutoff time.Time) (decimal.Decimal, error)
	AppendEntry(ctx context.Context, e Entry) (Entry, error)
}

// Service builds cash-flow reports, caching them in Redis until the stream
// changes. The cache client may be nil; reports are then always rebuilt.
type Service struct {
	repo        Repository
	cache       *redis.Client
	openingCash decimal.Decimal
	logger      *slog.Logger
}

// NewService builds a Service. openingCash is the configured cash-in-hand at
// the start of the books.
func NewService(repo Repository, cache *redis.Client, openingCash decimal.Decimal, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, openingCash: openingCash, logger: logger}
}

// Record appends a cash account entry and invalidates cached reports.
func (s *Service) Record(ctx context.Context, e Entry) (Entry, error) {
	if !e.Type.Valid() {
		return Entry{}, shared.NewInvalidInput("type", "unknown entry type")
	}
	if money.IsNegative(e.Debit) || money.IsNegative(e.Credit) {
		return Entry{}, shared.NewInvalidInput("amount", "must not be negative")
	}
	stored, err := s.repo.AppendEntry(ctx, e)
	if err != nil {
		return Entry{}, err
	}
	s.invalidate(ctx)
	return stored, nil
}

// Report returns the cash-flow statement for [from, to]. Opening cash is the
// configured opening plus the net of cash movements before the range.
func (s *Service) Report(ctx context.Context, from, to time.Time) (Report, error) {
	if to.Before(from) {
		return Report{}, shared.NewInvalidInput("to", "must not precede from")
	}

	key, ok := s.cacheKey(ctx, from, to)
	if ok {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var report Report
			if err := json.Unmarshal(cached, &report); err == nil {
				return report, nil
			}
		}
	}

	prior, err := s.repo.NetBefore(ctx, from)
	if err != nil {
		return Report{}, err
	}
	entries, err := s.repo.LoadEntries(ctx, from, to)
	if err != nil {
		return Report{}, err
	}
	report := BuildReport(s.openingCash.Add(prior), entries)

	if ok {
		if data, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, data, cacheTTL).Err(); err != nil {
				s.logger.Warn("cashflow cache set", slog.Any("error", err))
			}
		}
	}
	return report, nil
}

// cacheKey folds the invalidation version into the key, so a bump orphans
// every stale report at once.
func (s *Service) cacheKey(ctx context.Context, from, to time.Time) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	ver, err := s.cache.Get(ctx, cacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", false
	}
	return fmt.Sprintf("cashflow:%d:%s:%s", ver, from.Format("20060102"), to.Format("20060102")), true
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, cacheVersionKey).Err(); err != nil {
		s.logger.Warn("cashflow cache invalidate", slog.Any("error", err))
	}
}
