package store

import (
	"context"
	"errors"
	"testing"
)

func TestToggleBookmark(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "P")

	status, err := db.ToggleBookmark(ctx, "u1", p.ID, "https://go.dev", "Go")
	if err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if status != BookmarkAdded {
		t.Errorf("first toggle = %q, want added", status)
	}

	list, _ := db.ListBookmarks(ctx, "u1", p.ID)
	if len(list) != 1 || list[0].URL != "https://go.dev" || list[0].Title != "Go" {
		t.Errorf("bookmarks = %+v", list)
	}

	status, err = db.ToggleBookmark(ctx, "u1", p.ID, "https://go.dev", "Go")
	if err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if status != BookmarkRemoved {
		t.Errorf("second toggle = %q, want removed", status)
	}

	list, _ = db.ListBookmarks(ctx, "u1", p.ID)
	if len(list) != 0 {
		t.Errorf("bookmarks after removal = %d, want 0", len(list))
	}
}

func TestToggleBookmarkScopedToProject(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	a, _ := db.CreateProject(ctx, "u1", "A")
	b, _ := db.CreateProject(ctx, "u1", "B")

	db.ToggleBookmark(ctx, "u1", a.ID, "https://x", "X")
	status, _ := db.ToggleBookmark(ctx, "u1", b.ID, "https://x", "X")
	if status != BookmarkAdded {
		t.Errorf("same url in another project = %q, want added", status)
	}
}

func TestToggleBookmarkUnknownProject(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "P")
	if _, err := db.ToggleBookmark(ctx, "u2", p.ID, "https://x", "X"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	list, _ := db.ListBookmarks(ctx, "u2", p.ID)
	if len(list) != 0 {
		t.Errorf("other user sees %d bookmarks", len(list))
	}
}
