package crumbs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/testutil"
)

func TestAwarderAppliesAwards(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger, testutil.FixedClock(), logger.NewNop())
	a := NewAwarder(svc, logger.NewNop(), 16)

	a.Award("u1", AwardProjectCreated)
	a.Award("u1", AwardTranscriptAdded)
	a.Award("u2", AwardResearchRun)
	a.Award("", 100) // ignored
	a.Close()

	b, _ := ledger.Balance(context.Background(), "u1")
	if b == nil || b.Score != 40 {
		t.Fatalf("u1 balance = %+v, want 40", b)
	}
	b, _ = ledger.Balance(context.Background(), "u2")
	if b == nil || b.Score != 15 {
		t.Fatalf("u2 balance = %+v, want 15", b)
	}
	if len(ledger.balances) != 2 {
		t.Errorf("balances = %d, want 2", len(ledger.balances))
	}
}

func TestAwarderConcurrentAwardsNotLost(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger, testutil.FixedClock(), logger.NewNop())
	a := NewAwarder(svc, logger.NewNop(), 1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Award("u1", 1)
		}()
	}
	wg.Wait()
	a.Close()

	b, _ := ledger.Balance(context.Background(), "u1")
	if b == nil || b.Score != 100 {
		t.Errorf("balance = %+v, want 100", b)
	}
}

func TestAwarderSwallowsLedgerFailure(t *testing.T) {
	ledger := newMemLedger()
	ledger.err = errors.New("store unreachable")
	svc := NewService(ledger, testutil.FixedClock(), logger.NewNop())
	a := NewAwarder(svc, logger.NewNop(), 4)

	// Must neither panic nor block.
	a.Award("u1", 10)
	a.Close()
}

func TestAwarderAfterClose(t *testing.T) {
	svc := NewService(newMemLedger(), testutil.FixedClock(), logger.NewNop())
	a := NewAwarder(svc, logger.NewNop(), 4)
	a.Close()
	a.Close()

	a.Award("u1", 10) // dropped, must not panic
}

// gatedLedger holds every AddScore until gate is closed.
type gatedLedger struct {
	*memLedger
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedLedger) AddScore(ctx context.Context, uid string, amount int, at time.Time) error {
	g.entered <- struct{}{}
	<-g.gate
	return g.memLedger.AddScore(ctx, uid, amount, at)
}

func TestAwarderStampsWhenApplied(t *testing.T) {
	clock := testutil.FixedClock()
	start := clock.Now()
	ledger := &gatedLedger{memLedger: newMemLedger(), entered: make(chan struct{}, 2), gate: make(chan struct{})}
	a := NewAwarder(NewService(ledger, clock, logger.NewNop()), logger.NewNop(), 4)

	a.Award("u1", 1)
	<-ledger.entered // worker is busy applying the first award
	a.Award("u1", 1)
	clock.Advance(time.Hour)
	close(ledger.gate)
	a.Close()

	b, _ := ledger.Balance(context.Background(), "u1")
	if b == nil || b.Score != 2 {
		t.Fatalf("balance = %+v, want 2", b)
	}
	if want := start.Add(time.Hour); !b.LastActiveAt.Equal(want) {
		t.Errorf("LastActiveAt = %v, want %v (time of apply, not of queueing)", b.LastActiveAt, want)
	}
}
