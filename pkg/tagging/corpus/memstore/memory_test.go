package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/internalerr"
)

func TestMemstoreRecordAndGetTags(t *testing.T) {
	ctx := context.Background()
	st := New()

	bookmarks := []corpus.Bookmark{
		{TeamID: "T1", URL: "https://example.com/1", Tags: []string{"golang", "concurrency"}},
		{TeamID: "T1", URL: "https://example.com/2", Tags: []string{"golang", "testing"}},
		{TeamID: "T2", URL: "https://example.com/3", Tags: []string{"python"}},
	}
	for _, b := range bookmarks {
		if _, err := st.RecordBookmark(ctx, b); err != nil {
			t.Fatalf("RecordBookmark: %v", err)
		}
	}

	tags, err := st.GetExistingTags(ctx, "T1")
	if err != nil {
		t.Fatalf("GetExistingTags: %v", err)
	}
	want := []string{"golang", "concurrency", "testing"}
	if len(tags) != len(want) {
		t.Fatalf("GetExistingTags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("GetExistingTags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}

	// Teams are isolated
	other, _ := st.GetExistingTags(ctx, "T2")
	if len(other) != 1 || other[0] != "python" {
		t.Errorf("T2 tags = %v, want [python]", other)
	}
}

func TestMemstoreGeneratesULIDs(t *testing.T) {
	ctx := context.Background()
	st := New()

	id1, err := st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", Tags: []string{"golang"}})
	if err != nil {
		t.Fatalf("RecordBookmark: %v", err)
	}
	id2, err := st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", Tags: []string{"golang"}})
	if err != nil {
		t.Fatalf("RecordBookmark: %v", err)
	}

	if id1 == "" || id2 == "" {
		t.Fatal("RecordBookmark should assign ids")
	}
	if id1 == id2 {
		t.Error("Generated ids should be unique")
	}
}

func TestMemstoreRelatedTags(t *testing.T) {
	ctx := context.Background()
	st := New()

	record := func(tags ...string) {
		t.Helper()
		if _, err := st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", Tags: tags}); err != nil {
			t.Fatalf("RecordBookmark %v: %v", tags, err)
		}
	}
	record("golang", "concurrency")
	record("golang", "concurrency")
	record("golang", "concurrency")
	record("golang", "testing")
	record("golang", "testing")
	record("python", "django")
	record("python", "django")

	neighbors, err := st.RelatedTags(ctx, "T1", "golang", 10)
	if err != nil {
		t.Fatalf("RelatedTags: %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("Expected 2 neighbors, got %v", neighbors)
	}
	if neighbors[0].Tag != "concurrency" {
		t.Errorf("Top neighbor = %q, want concurrency", neighbors[0].Tag)
	}
	if neighbors[0].Score < neighbors[1].Score {
		t.Error("Neighbors should be ordered by score (highest first)")
	}

	// The k limit truncates
	one, err := st.RelatedTags(ctx, "T1", "golang", 1)
	if err != nil {
		t.Fatalf("RelatedTags k=1: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("Expected 1 neighbor with k=1, got %v", one)
	}
}

func TestMemstoreSeedTags(t *testing.T) {
	ctx := context.Background()
	st := New()

	if err := st.AddSeedTags(ctx, "U1", "", []string{"golang"}); err != nil {
		t.Fatalf("AddSeedTags: %v", err)
	}
	if err := st.AddSeedTags(ctx, "U1", "T1", []string{"react", "Golang"}); err != nil {
		t.Fatalf("AddSeedTags: %v", err)
	}

	seeds, err := st.GetSeedTags(ctx, "U1", "T1", 10)
	if err != nil {
		t.Fatalf("GetSeedTags: %v", err)
	}
	// "Golang" normalizes into the existing "golang"
	want := []string{"golang", "react"}
	if len(seeds) != len(want) {
		t.Fatalf("GetSeedTags = %v, want %v", seeds, want)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("GetSeedTags[%d] = %q, want %q", i, seeds[i], want[i])
		}
	}
}

func TestMemstoreStats(t *testing.T) {
	ctx := context.Background()
	st := New()

	st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", Tags: []string{"golang", "testing"}})
	st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", Tags: []string{"golang"}})

	stats, err := st.Stats(ctx, "T1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Bookmarks != 2 || stats.Tags != 2 || stats.Pairs != 1 {
		t.Errorf("Stats = %+v, want {2 2 1}", stats)
	}
}

func TestMemstoreValidation(t *testing.T) {
	ctx := context.Background()
	st := New()

	if _, err := st.RecordBookmark(ctx, corpus.Bookmark{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("RecordBookmark without team should be ErrInvalidInput, got %v", err)
	}
	if _, err := st.RelatedTags(ctx, "T1", "", 5); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("RelatedTags without tag should be ErrInvalidInput, got %v", err)
	}
	if err := st.AddSeedTags(ctx, "", "", []string{"x"}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("AddSeedTags without user should be ErrInvalidInput, got %v", err)
	}
}
