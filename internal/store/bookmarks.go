package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bookmark is a saved link within a project, unique by URL.
type Bookmark struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Title   string    `json:"title"`
	AddedAt time.Time `json:"timestamp"`
}

// Toggle results.
const (
	BookmarkAdded   = "added"
	BookmarkRemoved = "removed"
)

// ToggleBookmark removes the bookmark with url if present, otherwise adds it.
// Returns BookmarkAdded or BookmarkRemoved.
func (db *DB) ToggleBookmark(ctx context.Context, uid, projectID, url, title string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	var owned int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE id = ? AND uid = ?", projectID, uid,
	).Scan(&owned); err != nil {
		return "", fmt.Errorf("check project: %w", err)
	}
	if owned == 0 {
		return "", ErrNotFound
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE project_id = ? AND url = ?", projectID, url)
	if err != nil {
		return "", fmt.Errorf("delete bookmark: %w", err)
	}
	status := BookmarkRemoved
	if n, _ := result.RowsAffected(); n == 0 {
		status = BookmarkAdded
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bookmarks (id, project_id, url, title, created_at) VALUES (?, ?, ?, ?, ?)",
			uuid.NewString(), projectID, url, title, millis(time.Now())); err != nil {
			return "", fmt.Errorf("insert bookmark: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit toggle: %w", err)
	}
	return status, nil
}

// ListBookmarks returns a project's bookmarks, oldest first. A project uid
// does not own yields an empty list.
func (db *DB) ListBookmarks(ctx context.Context, uid, projectID string) ([]Bookmark, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT b.id, b.url, b.title, b.created_at
		FROM bookmarks b JOIN projects p ON p.id = b.project_id
		WHERE b.project_id = ? AND p.uid = ?
		ORDER BY b.created_at, b.rowid
	`, projectID, uid)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []Bookmark{}
	for rows.Next() {
		var b Bookmark
		var title sql.NullString
		var created int64
		if err := rows.Scan(&b.ID, &b.URL, &title, &created); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.Title = title.String
		b.AddedAt = fromMillis(created)
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}
