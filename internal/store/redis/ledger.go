package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cherseta/chersey/internal/crumbs"
	"github.com/redis/go-redis/v9"
)

// Ledger stores crumbs balances as one hash per user.
type Ledger struct {
	client *redis.Client
}

// NewLedger creates a Redis-backed crumbs ledger
func NewLedger(client *redis.Client) *Ledger {
	return &Ledger{client: client}
}

var _ crumbs.Ledger = (*Ledger)(nil)

// Balance returns the user's balance, or nil if the hash does not exist
func (l *Ledger) Balance(ctx context.Context, uid string) (*crumbs.Balance, error) {
	vals, err := l.client.HGetAll(ctx, UserKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	b := &crumbs.Balance{}
	if s, ok := vals[fieldScore]; ok {
		if b.Score, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("invalid score for %s: %w", uid, err)
		}
	}
	if s, ok := vals[fieldLastActive]; ok {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid last_active_at for %s: %w", uid, err)
		}
		t := time.UnixMilli(ms).UTC()
		b.LastActiveAt = &t
	}
	return b, nil
}

// addScore increments the score and moves last activity forward, never back.
var addScore = redis.NewScript(`
redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[3])
local last = tonumber(redis.call('HGET', KEYS[1], ARGV[2]) or '0')
if tonumber(ARGV[4]) > last then
	redis.call('HSET', KEYS[1], ARGV[2], ARGV[4])
end
return 1
`)

// AddScore increments the score and stamps last activity atomically
func (l *Ledger) AddScore(ctx context.Context, uid string, amount int, at time.Time) error {
	err := addScore.Run(ctx, l.client, []string{UserKey(uid)},
		fieldScore, fieldLastActive, amount, at.UnixMilli()).Err()
	if err != nil {
		return fmt.Errorf("failed to add score: %w", err)
	}
	return nil
}

// DecayScore writes score and at only if score and last activity still equal
// prev. A concurrent write to the hash aborts the transaction and reports false.
func (l *Ledger) DecayScore(ctx context.Context, uid string, prev crumbs.Balance, score int, at time.Time) (bool, error) {
	if prev.LastActiveAt == nil {
		return false, nil
	}
	key := UserKey(uid)
	applied := false

	err := l.client.Watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, key, fieldScore, fieldLastActive).Result()
		if err != nil {
			return err
		}
		curScore, ok1 := vals[0].(string)
		curLast, ok2 := vals[1].(string)
		if !ok1 || !ok2 {
			return nil
		}
		if curScore != strconv.Itoa(prev.Score) ||
			curLast != strconv.FormatInt(prev.LastActiveAt.UnixMilli(), 10) {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldScore, score, fieldLastActive, at.UnixMilli())
			return nil
		})
		if err != nil {
			return err
		}
		applied = true
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to decay score: %w", err)
	}
	return applied, nil
}
