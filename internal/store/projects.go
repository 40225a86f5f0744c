package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project is a user's research project. UID and CreatedAt are never
// serialized; the owner is implied by the request path.
type Project struct {
	ID         string     `json:"id"`
	UID        string     `json:"-"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"-"`
	Sources    []Source   `json:"sources"`
	NotesHTML  *string    `json:"notes_html,omitempty"`
	NotesTitle *string    `json:"notes_title,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// CreateProject inserts a new, empty project for uid.
func (db *DB) CreateProject(ctx context.Context, uid, name string) (*Project, error) {
	p := &Project{
		ID:        uuid.NewString(),
		UID:       uid,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Sources:   []Source{},
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO projects (id, uid, name, created_at) VALUES (?, ?, ?, ?)",
		p.ID, uid, name, millis(p.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

const projectColumns = "id, uid, name, created_at, notes_html, notes_title, notes_updated_at"

func scanProject(row interface{ Scan(...any) error }) (*Project, error) {
	var p Project
	var created int64
	var notesHTML, notesTitle sql.NullString
	var updated sql.NullInt64
	if err := row.Scan(&p.ID, &p.UID, &p.Name, &created, &notesHTML, &notesTitle, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(created)
	if notesHTML.Valid {
		p.NotesHTML = &notesHTML.String
	}
	if notesTitle.Valid {
		p.NotesTitle = &notesTitle.String
	}
	if updated.Valid {
		t := fromMillis(updated.Int64)
		p.UpdatedAt = &t
	}
	p.Sources = []Source{}
	return &p, nil
}

// GetProject returns a project with its sources, or ErrNotFound.
func (db *DB) GetProject(ctx context.Context, uid, id string) (*Project, error) {
	p, err := scanProject(db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ? AND uid = ?", id, uid))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	sources, err := db.ListSources(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Sources = sources
	return p, nil
}

// ListProjects returns all of uid's projects, oldest first, with sources.
func (db *DB) ListProjects(ctx context.Context, uid string) ([]*Project, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE uid = ? ORDER BY created_at, id", uid)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := []*Project{}
	byID := make(map[string]*Project)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
		byID[p.ID] = p
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return projects, nil
	}

	srows, err := db.QueryContext(ctx, `
		SELECT s.project_id, `+sourceColumns+`
		FROM project_sources s JOIN projects p ON p.id = s.project_id
		WHERE p.uid = ?
		ORDER BY s.seq
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var projectID string
		s, err := scanSource(srows, &projectID)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		if p := byID[projectID]; p != nil {
			p.Sources = append(p.Sources, *s)
		}
	}
	return projects, srows.Err()
}

// DeleteProject removes a project and, by cascade, its sources, bookmarks and
// chats. Deleting a missing project is not an error.
func (db *DB) DeleteProject(ctx context.Context, uid, id string) error {
	if _, err := db.ExecContext(ctx,
		"DELETE FROM projects WHERE id = ? AND uid = ?", id, uid); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// UpdateNotes replaces the project's notes and stamps the update time.
func (db *DB) UpdateNotes(ctx context.Context, uid, id, html, title string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE projects SET notes_html = ?, notes_title = ?, notes_updated_at = ?
		WHERE id = ? AND uid = ?
	`, html, title, millis(time.Now()), id, uid)
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ProjectExists reports whether uid owns project id.
func (db *DB) ProjectExists(ctx context.Context, uid, id string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE id = ? AND uid = ?", id, uid).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check project: %w", err)
	}
	return n > 0, nil
}
