package crumbs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cherseta/chersey/internal/logger"
)

const awardTimeout = 5 * time.Second

type award struct {
	uid    string
	amount int
}

// Awarder applies crumb awards in the background. Award never blocks and never
// reports failure to the caller: scoring is best-effort and must not hold up the
// action that earned it. Failures are logged.
type Awarder struct {
	svc   *Service
	log   logger.Logger
	queue chan award

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAwarder starts a worker draining a queue of the given size.
func NewAwarder(svc *Service, log logger.Logger, size int) *Awarder {
	if size < 1 {
		size = 1
	}
	a := &Awarder{
		svc:   svc,
		log:   log,
		queue: make(chan award, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Award queues amount crumbs for uid. Empty uids are ignored.
func (a *Awarder) Award(uid string, amount int) {
	if uid == "" {
		return
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.log.Warn("crumbs award after shutdown dropped", logger.String("uid", uid), logger.Int("amount", amount))
		return
	}

	select {
	case a.queue <- award{uid: uid, amount: amount}:
	default:
		a.log.Warn("crumbs queue full, award dropped", logger.String("uid", uid), logger.Int("amount", amount))
	}
}

// Close stops accepting awards and waits for queued ones to be applied.
func (a *Awarder) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}

func (a *Awarder) run() {
	defer close(a.done)
	for aw := range a.queue {
		a.apply(aw)
	}
}

func (a *Awarder) apply(aw award) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("crumbs award panicked", logger.String("uid", aw.uid), logger.Error(fmt.Errorf("%v", r)))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), awardTimeout)
	defer cancel()

	// Stamped on apply, not on queue.
	if err := a.svc.Add(ctx, aw.uid, aw.amount); err != nil {
		a.log.Warn("crumbs award failed", logger.String("uid", aw.uid), logger.Error(err))
		return
	}
	a.log.Info("crumbs awarded", logger.String("uid", aw.uid), logger.Int("amount", aw.amount))
}
