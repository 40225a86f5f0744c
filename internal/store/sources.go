package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Source is a transcript attached to a project. Older records carry the video
// id in VideoID only; Key resolves either form.
type Source struct {
	ID         string    `json:"id,omitempty"`
	VideoID    string    `json:"video_id,omitempty"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Transcript string    `json:"transcript"`
	AddedAt    time.Time `json:"timestamp"`
}

// Key returns the identifier used for context selection.
func (s Source) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.VideoID
}

const sourceColumns = "s.source_id, s.video_id, s.url, s.title, s.transcript, s.added_at"

func scanSource(row interface{ Scan(...any) error }, prefix ...any) (*Source, error) {
	var s Source
	var id, videoID sql.NullString
	var added int64
	dest := append(prefix, &id, &videoID, &s.URL, &s.Title, &s.Transcript, &added)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.ID = id.String
	s.VideoID = videoID.String
	s.AddedAt = fromMillis(added)
	return &s, nil
}

// AppendSource adds src to the end of the project's sources. Re-adding the
// same video appends a second copy. Returns ErrNotFound if uid does not own
// the project.
func (db *DB) AppendSource(ctx context.Context, uid, projectID string, src Source) error {
	var id, videoID any
	if src.ID != "" {
		id = src.ID
	}
	if src.VideoID != "" {
		videoID = src.VideoID
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO project_sources (project_id, source_id, video_id, url, title, transcript, added_at)
		SELECT id, ?, ?, ?, ?, ?, ? FROM projects WHERE id = ? AND uid = ?
	`, id, videoID, src.URL, src.Title, src.Transcript, millis(src.AddedAt), projectID, uid)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSources returns a project's sources in insertion order.
func (db *DB) ListSources(ctx context.Context, projectID string) ([]Source, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+sourceColumns+" FROM project_sources s WHERE s.project_id = ? ORDER BY s.seq", projectID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	sources := []Source{}
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, *s)
	}
	return sources, rows.Err()
}
