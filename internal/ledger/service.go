package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/shared"
)

// Repository defines data access for ledger entry streams. Implementations
// return entries ordered by date, then insertion sequence.
type Repository interface {
	WithPartyLock(ctx context.Context, partyID int64, fn func(context.Context) error) error
	LoadEntries(ctx context.Context, partyID int64) ([]Entry, error)
	LatestEntry(ctx context.Context, partyID int64) (*Entry, error)
	AppendEntry(ctx context.Context, e Entry) (Entry, error)
	UpdateBalances(ctx context.Context, entries []Entry) error
	DeleteEntry(ctx context.Context, id int64) (*Entry, error)
}

// OpeningBalances resolves the opening balance configured for a party.
type OpeningBalances interface {
	OpeningBalance(ctx context.Context, partyID int64) (decimal.Decimal, error)
}

// RecomputeQueue schedules a background rebalance of a party's stream.
type RecomputeQueue interface {
	EnqueueLedgerRecompute(ctx context.Context, partyID int64) error
}

// Service appends entries and keeps running balances consistent. Concurrent
// edits to one party's history are serialized by a per-party repository lock
// held across the read of the latest balance and the insert.
type Service struct {
	repo     Repository
	openings OpeningBalances
	queue    RecomputeQueue
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, openings OpeningBalances, queue RecomputeQueue, logger *slog.Logger) *Service {
	return &Service{repo: repo, openings: openings, queue: queue, logger: logger}
}

func validateEntry(e Entry) error {
	if !e.Type.Valid() {
		return shared.NewInvalidInput("type", "unknown entry type")
	}
	if money.IsNegative(e.Debit) {
		return shared.NewInvalidInput("debit", "must not be negative")
	}
	if money.IsNegative(e.Credit) {
		return shared.NewInvalidInput("credit", "must not be negative")
	}
	if !e.Debit.IsZero() && !e.Credit.IsZero() {
		return shared.NewInvalidInput("debit", "entry must post on a single side")
	}
	if e.Date.IsZero() {
		return shared.NewInvalidInput("date", "required")
	}
	return nil
}

// Append stores an entry. An entry dated after the latest applied one
// extends the fold incrementally; a backdated entry invalidates every later
// balance, so the stream is rebalanced through the recompute queue.
func (s *Service) Append(ctx context.Context, e Entry) (Entry, error) {
	if err := validateEntry(e); err != nil {
		return Entry{}, err
	}

	var stored Entry
	var backdated bool
	err := s.repo.WithPartyLock(ctx, e.PartyID, func(ctx context.Context) error {
		latest, err := s.repo.LatestEntry(ctx, e.PartyID)
		if err != nil {
			return err
		}
		backdated = latest != nil && e.Date.Before(latest.Date)
		if !backdated {
			prev, err := s.priorBalance(ctx, e.PartyID, latest)
			if err != nil {
				return err
			}
			e.Balance = Apply(prev, e)
		}
		stored, err = s.repo.AppendEntry(ctx, e)
		return err
	})
	if err != nil {
		return Entry{}, err
	}
	if backdated {
		if err := s.enqueueRecompute(ctx, e.PartyID); err != nil {
			return Entry{}, err
		}
	}
	return stored, nil
}

// Remove deletes an entry and rebalances everything dated at or after it.
func (s *Service) Remove(ctx context.Context, id int64) error {
	removed, err := s.repo.DeleteEntry(ctx, id)
	if err != nil {
		return err
	}
	return s.enqueueRecompute(ctx, removed.PartyID)
}

// Recompute refolds the full stream for a party from its opening balance and
// rewrites the stored balances. This is the worker-side counterpart of a
// backdated Append.
func (s *Service) Recompute(ctx context.Context, partyID int64) error {
	var count int
	err := s.repo.WithPartyLock(ctx, partyID, func(ctx context.Context) error {
		entries, err := s.repo.LoadEntries(ctx, partyID)
		if err != nil {
			return err
		}
		opening, err := s.openings.OpeningBalance(ctx, partyID)
		if err != nil {
			return err
		}
		recomputed, err := RecomputeFrom(opening, entries, 0)
		if err != nil {
			return err
		}
		count = len(recomputed)
		return s.repo.UpdateBalances(ctx, recomputed)
	})
	if err != nil {
		return err
	}
	s.logger.Info("ledger rebalanced",
		slog.Int64("party_id", partyID),
		slog.Int("entries", count))
	return nil
}

// Statement returns the party's entries with running balances, preceded by
// the opening balance.
func (s *Service) Statement(ctx context.Context, partyID int64) (decimal.Decimal, []Entry, error) {
	opening, err := s.openings.OpeningBalance(ctx, partyID)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	entries, err := s.repo.LoadEntries(ctx, partyID)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	return opening, entries, nil
}

func (s *Service) priorBalance(ctx context.Context, partyID int64, latest *Entry) (decimal.Decimal, error) {
	if latest != nil {
		return latest.Balance, nil
	}
	return s.openings.OpeningBalance(ctx, partyID)
}

func (s *Service) enqueueRecompute(ctx context.Context, partyID int64) error {
	if s.queue == nil {
		return s.Recompute(ctx, partyID)
	}
	if err := s.queue.EnqueueLedgerRecompute(ctx, partyID); err != nil {
		return err
	}
	s.logger.Info("ledger recompute scheduled", slog.Int64("party_id", partyID))
	return nil
}
