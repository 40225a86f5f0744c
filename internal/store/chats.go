package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chat roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one entry in a project's assistant conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendChat adds a message to the project's chat log with a server
// timestamp. Any role other than user is stored as model.
func (db *DB) AppendChat(ctx context.Context, uid, projectID, role, text string) error {
	if role != RoleUser {
		role = RoleModel
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO chats (id, project_id, role, text, created_at)
		SELECT ?, id, ?, ?, ? FROM projects WHERE id = ? AND uid = ?
	`, uuid.NewString(), role, text, millis(time.Now()), projectID, uid)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListChats returns the project's chat log ordered by timestamp, ties broken
// by insertion order.
func (db *DB) ListChats(ctx context.Context, uid, projectID string) ([]ChatMessage, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.role, c.text, c.created_at
		FROM chats c JOIN projects p ON p.id = c.project_id
		WHERE c.project_id = ? AND p.uid = ?
		ORDER BY c.created_at, c.seq
	`, projectID, uid)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	history := []ChatMessage{}
	for rows.Next() {
		var m ChatMessage
		var created int64
		if err := rows.Scan(&m.Role, &m.Text, &created); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		m.Timestamp = fromMillis(created)
		history = append(history, m)
	}
	return history, rows.Err()
}
