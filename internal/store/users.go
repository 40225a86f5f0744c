package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cherseta/chersey/internal/crumbs"
)

// Balance returns the stored crumbs balance for uid, or nil if the user has
// never earned any.
func (db *DB) Balance(ctx context.Context, uid string) (*crumbs.Balance, error) {
	var score int
	var last sql.NullInt64
	err := db.QueryRowContext(ctx,
		"SELECT score, last_active_at FROM users WHERE uid = ?", uid,
	).Scan(&score, &last)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	b := &crumbs.Balance{Score: score}
	if last.Valid {
		t := fromMillis(last.Int64)
		b.LastActiveAt = &t
	}
	return b, nil
}

// AddScore atomically increments uid's score and advances last-active to at,
// creating the user on first award. An older at never rewinds last-active.
func (db *DB) AddScore(ctx context.Context, uid string, amount int, at time.Time) error {
	ms := millis(at)
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (uid, score, last_active_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			score = score + excluded.score,
			last_active_at = MAX(COALESCE(last_active_at, 0), excluded.last_active_at)
	`, uid, amount, ms, ms)
	if err != nil {
		return fmt.Errorf("add score: %w", err)
	}
	return nil
}

// DecayScore writes a decayed score only if score and last-active still match
// prev. It reports whether the write happened.
func (db *DB) DecayScore(ctx context.Context, uid string, prev crumbs.Balance, score int, at time.Time) (bool, error) {
	if prev.LastActiveAt == nil {
		return false, nil
	}
	result, err := db.ExecContext(ctx, `
		UPDATE users SET score = ?, last_active_at = ?
		WHERE uid = ? AND score = ? AND last_active_at = ?
	`, score, millis(at), uid, prev.Score, millis(*prev.LastActiveAt))
	if err != nil {
		return false, fmt.Errorf("decay score: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decay score: %w", err)
	}
	return n == 1, nil
}

// TopUsers returns up to limit users ordered by stored (undecayed) score.
func (db *DB) TopUsers(ctx context.Context, limit int) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT uid FROM users ORDER BY score DESC, uid LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}

var _ crumbs.Ledger = (*DB)(nil)
