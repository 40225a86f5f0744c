package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCreateAndGetProject(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, err := db.CreateProject(ctx, "u1", "Thesis")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := db.GetProject(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Name != "Thesis" {
		t.Errorf("Name = %q, want Thesis", got.Name)
	}
	if got.Sources == nil || len(got.Sources) != 0 {
		t.Errorf("Sources = %v, want empty slice", got.Sources)
	}
}

func TestGetProjectOtherUser(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "Private")
	if _, err := db.GetProject(ctx, "u2", p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject as other user: err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetProject(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject missing: err = %v, want ErrNotFound", err)
	}
}

func TestListProjectsWithSources(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	a, _ := db.CreateProject(ctx, "u1", "A")
	b, _ := db.CreateProject(ctx, "u1", "B")
	db.CreateProject(ctx, "u2", "Other")

	db.AppendSource(ctx, "u1", b.ID, Source{ID: "vid00000001", URL: "https://youtu.be/vid00000001", Title: "One", Transcript: "hello"})
	db.AppendSource(ctx, "u1", b.ID, Source{ID: "vid00000002", URL: "https://youtu.be/vid00000002", Title: "Two", Transcript: "world"})

	projects, err := db.ListProjects(ctx, "u1")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("len = %d, want 2", len(projects))
	}

	byID := map[string]*Project{}
	for _, p := range projects {
		byID[p.ID] = p
	}
	if len(byID[a.ID].Sources) != 0 {
		t.Errorf("A sources = %d, want 0", len(byID[a.ID].Sources))
	}
	srcs := byID[b.ID].Sources
	if len(srcs) != 2 || srcs[0].ID != "vid00000001" || srcs[1].ID != "vid00000002" {
		t.Errorf("B sources = %+v, want ordered vid00000001, vid00000002", srcs)
	}
}

func TestListProjectsEmpty(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	projects, err := db.ListProjects(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if projects == nil || len(projects) != 0 {
		t.Errorf("projects = %v, want empty non-nil slice", projects)
	}
}

func TestProjectJSONOmitsOwnerAndCreatedAt(t *testing.T) {
	p := Project{ID: "p1", UID: "u1", Name: "N", CreatedAt: time.Now(), Sources: []Source{}}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, banned := range []string{"createdAt", "CreatedAt", "u1", "uid"} {
		if strings.Contains(s, banned) {
			t.Errorf("JSON %s contains %q", s, banned)
		}
	}
	if !strings.Contains(s, `"sources":[]`) {
		t.Errorf("JSON %s missing empty sources", s)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "Doomed")
	db.AppendSource(ctx, "u1", p.ID, Source{ID: "vid00000001", URL: "u", Title: "t", Transcript: "x"})
	db.ToggleBookmark(ctx, "u1", p.ID, "https://a", "A")
	db.AppendChat(ctx, "u1", p.ID, RoleUser, "hi")

	if err := db.DeleteProject(ctx, "u1", p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := db.GetProject(ctx, "u1", p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("project still present: %v", err)
	}

	for _, table := range []string{"project_sources", "bookmarks", "chats"} {
		var n int
		db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE project_id = ?", p.ID).Scan(&n)
		if n != 0 {
			t.Errorf("%s rows = %d after delete, want 0", table, n)
		}
	}

	// Idempotent.
	if err := db.DeleteProject(ctx, "u1", p.ID); err != nil {
		t.Errorf("second DeleteProject: %v", err)
	}
}

func TestDeleteProjectOtherUser(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "Mine")
	db.DeleteProject(ctx, "u2", p.ID)
	if _, err := db.GetProject(ctx, "u1", p.ID); err != nil {
		t.Errorf("project deleted by another user: %v", err)
	}
}

func TestUpdateNotes(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "Notes")
	if err := db.UpdateNotes(ctx, "u1", p.ID, "<p>hi</p>", "Draft"); err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}

	got, _ := db.GetProject(ctx, "u1", p.ID)
	if got.NotesHTML == nil || *got.NotesHTML != "<p>hi</p>" {
		t.Errorf("NotesHTML = %v", got.NotesHTML)
	}
	if got.NotesTitle == nil || *got.NotesTitle != "Draft" {
		t.Errorf("NotesTitle = %v", got.NotesTitle)
	}
	if got.UpdatedAt == nil {
		t.Error("UpdatedAt not set")
	}

	if err := db.UpdateNotes(ctx, "u2", p.ID, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateNotes other user: err = %v, want ErrNotFound", err)
	}
}
