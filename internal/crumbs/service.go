package crumbs

import (
	"context"
	"fmt"
	"time"

	"github.com/cherseta/chersey/internal/logger"
)

// maxDecayAttempts bounds the compare-and-set loop on a contended balance.
const maxDecayAttempts = 3

// Ledger is the storage backend for balances. Implementations must make
// AddScore an atomic increment that never moves last-active backwards, and
// DecayScore a compare-and-set on the previously read score and last-active.
type Ledger interface {
	// Balance returns nil when the user has no record.
	Balance(ctx context.Context, uid string) (*Balance, error)
	AddScore(ctx context.Context, uid string, amount int, at time.Time) error
	// DecayScore stores score and at only if the balance still equals prev.
	DecayScore(ctx context.Context, uid string, prev Balance, score int, at time.Time) (bool, error)
}

// Clock abstracts time retrieval so decay is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Service reads and awards crumbs.
type Service struct {
	ledger Ledger
	clock  Clock
	log    logger.Logger
}

// NewService creates a Service. A nil clock means wall time.
func NewService(ledger Ledger, clock Clock, log logger.Logger) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	return &Service{ledger: ledger, clock: clock, log: log}
}

// Read returns the decay-adjusted state for uid, consuming any decay owed.
func (s *Service) Read(ctx context.Context, uid string) (State, error) {
	var st State
	for attempt := 0; attempt < maxDecayAttempts; attempt++ {
		bal, err := s.ledger.Balance(ctx, uid)
		if err != nil {
			return State{}, fmt.Errorf("read balance: %w", err)
		}
		if bal == nil {
			return NoRecord(), nil
		}

		now := s.clock.Now()
		st = ComputeState(bal.Score, bal.LastActiveAt, now)
		if st.Decay <= 0 {
			return st, nil
		}

		ok, err := s.ledger.DecayScore(ctx, uid, *bal, st.Score, now)
		if err != nil {
			return State{}, fmt.Errorf("write decay: %w", err)
		}
		if ok {
			s.log.Debug("crumbs decayed",
				logger.String("uid", uid),
				logger.Int("decay", st.Decay),
				logger.Int("score", st.Score))
			return st, nil
		}
		// Another award or read moved last-active; recompute from fresh state.
	}

	s.log.Warn("crumbs decay contended, returning unpersisted state", logger.String("uid", uid))
	return st, nil
}

// Add increments uid's balance and refreshes its last-active time to now.
// Most callers want Awarder.Award, which never fails.
func (s *Service) Add(ctx context.Context, uid string, amount int) error {
	if err := s.ledger.AddScore(ctx, uid, amount, s.clock.Now()); err != nil {
		return fmt.Errorf("add %d crumbs to %s: %w", amount, uid, err)
	}
	return nil
}
