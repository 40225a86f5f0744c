package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAppendSourceKeepsDuplicates(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "P")
	src := Source{ID: "dQw4w9WgXcQ", URL: "https://youtu.be/dQw4w9WgXcQ", Title: "Song", Transcript: "never gonna", AddedAt: base}
	for i := 0; i < 2; i++ {
		if err := db.AppendSource(ctx, "u1", p.ID, src); err != nil {
			t.Fatalf("AppendSource: %v", err)
		}
	}

	sources, err := db.ListSources(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("len = %d, want 2", len(sources))
	}
	if !sources[0].AddedAt.Equal(base) {
		t.Errorf("AddedAt = %v, want %v", sources[0].AddedAt, base)
	}
}

func TestAppendSourceUnknownProject(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "P")
	src := Source{ID: "dQw4w9WgXcQ", URL: "u", Title: "t", Transcript: "x", AddedAt: time.Now()}

	if err := db.AppendSource(ctx, "u1", "missing", src); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing project: err = %v, want ErrNotFound", err)
	}
	if err := db.AppendSource(ctx, "u2", p.ID, src); !errors.Is(err, ErrNotFound) {
		t.Errorf("other user: err = %v, want ErrNotFound", err)
	}
}

func TestSourceKey(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{Source{ID: "a", VideoID: "b"}, "a"},
		{Source{VideoID: "b"}, "b"},
		{Source{}, ""},
	}
	for _, tt := range tests {
		if got := tt.src.Key(); got != tt.want {
			t.Errorf("Key(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestLegacyVideoIDRoundTrip(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, _ := db.CreateProject(ctx, "u1", "P")
	db.AppendSource(ctx, "u1", p.ID, Source{VideoID: "legacy00001", URL: "u", Title: "t", Transcript: "x"})

	sources, _ := db.ListSources(ctx, p.ID)
	if len(sources) != 1 || sources[0].ID != "" || sources[0].Key() != "legacy00001" {
		t.Errorf("sources = %+v, want legacy key only", sources)
	}
}
