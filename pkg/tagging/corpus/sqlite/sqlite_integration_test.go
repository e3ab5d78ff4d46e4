package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/internalerr"
)

func openTestStore(t *testing.T) corpus.Store {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corpus.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSQLiteIntegrationRecordAndGetTags tests bookmark recording and
// usage-ordered tag retrieval
func TestSQLiteIntegrationRecordAndGetTags(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	bookmarks := []corpus.Bookmark{
		{TeamID: "T1", UserID: "U1", URL: "https://example.com/1", Title: "Go Concurrency", Tags: []string{"golang", "concurrency"}},
		{TeamID: "T1", UserID: "U1", URL: "https://example.com/2", Title: "Go Testing", Tags: []string{"golang", "testing"}},
		{TeamID: "T1", UserID: "U2", URL: "https://example.com/3", Title: "Go Modules", Tags: []string{"golang"}},
	}
	for _, b := range bookmarks {
		id, err := st.RecordBookmark(ctx, b)
		if err != nil {
			t.Fatalf("RecordBookmark %s: %v", b.URL, err)
		}
		if id == "" {
			t.Error("RecordBookmark should return a generated id")
		}
	}

	tags, err := st.GetExistingTags(ctx, "T1")
	if err != nil {
		t.Fatalf("GetExistingTags: %v", err)
	}

	// "golang" used 3 times, the rest once; ties break alphabetically
	want := []string{"golang", "concurrency", "testing"}
	if len(tags) != len(want) {
		t.Fatalf("GetExistingTags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("GetExistingTags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}

	// Unknown team has no corpus
	other, err := st.GetExistingTags(ctx, "T2")
	if err != nil {
		t.Fatalf("GetExistingTags T2: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Unknown team should have no tags, got %v", other)
	}
}

// TestSQLiteIntegrationTagNormalization tests that tags are stored
// lowercase and trimmed
func TestSQLiteIntegrationTagNormalization(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.RecordBookmark(ctx, corpus.Bookmark{
		TeamID: "T1",
		URL:    "https://example.com",
		Tags:   []string{" React ", "TYPESCRIPT", "react"},
	})
	if err != nil {
		t.Fatalf("RecordBookmark: %v", err)
	}

	tags, err := st.GetExistingTags(ctx, "T1")
	if err != nil {
		t.Fatalf("GetExistingTags: %v", err)
	}

	want := []string{"react", "typescript"}
	if len(tags) != len(want) {
		t.Fatalf("GetExistingTags = %v, want %v", tags, want)
	}
}

// TestSQLiteIntegrationSeedTags tests seed tag scoping and limits
func TestSQLiteIntegrationSeedTags(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if err := st.AddSeedTags(ctx, "U1", "", []string{"golang", "devops"}); err != nil {
		t.Fatalf("AddSeedTags unscoped: %v", err)
	}
	if err := st.AddSeedTags(ctx, "U1", "T1", []string{"react"}); err != nil {
		t.Fatalf("AddSeedTags scoped: %v", err)
	}
	if err := st.AddSeedTags(ctx, "U1", "T2", []string{"terraform"}); err != nil {
		t.Fatalf("AddSeedTags other team: %v", err)
	}

	// Team lookup includes that team's seeds plus the unscoped ones
	seeds, err := st.GetSeedTags(ctx, "U1", "T1", 10)
	if err != nil {
		t.Fatalf("GetSeedTags: %v", err)
	}
	want := []string{"devops", "golang", "react"}
	if len(seeds) != len(want) {
		t.Fatalf("GetSeedTags = %v, want %v", seeds, want)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("GetSeedTags[%d] = %q, want %q", i, seeds[i], want[i])
		}
	}

	// Empty team matches everything
	all, err := st.GetSeedTags(ctx, "U1", "", 10)
	if err != nil {
		t.Fatalf("GetSeedTags any team: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 seeds across all teams, got %v", all)
	}

	// Limit applies
	limited, err := st.GetSeedTags(ctx, "U1", "", 2)
	if err != nil {
		t.Fatalf("GetSeedTags limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 seeds with limit=2, got %v", limited)
	}

	// Unknown user has none
	none, err := st.GetSeedTags(ctx, "U9", "T1", 10)
	if err != nil {
		t.Fatalf("GetSeedTags unknown user: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Unknown user should have no seeds, got %v", none)
	}
}

// TestSQLiteIntegrationRelatedTags tests co-occurrence ranking
func TestSQLiteIntegrationRelatedTags(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	record := func(tags ...string) {
		t.Helper()
		_, err := st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", URL: "https://example.com", Tags: tags})
		if err != nil {
			t.Fatalf("RecordBookmark %v: %v", tags, err)
		}
	}

	record("golang", "concurrency")
	record("golang", "concurrency")
	record("golang", "concurrency")
	record("python", "django")
	record("python", "flask")
	record("golang", "testing")
	record("golang", "testing")

	neighbors, err := st.RelatedTags(ctx, "T1", "golang", 10)
	if err != nil {
		t.Fatalf("RelatedTags: %v", err)
	}

	// "concurrency" co-occurs more tightly than "testing"; single-use tags
	// fall under the MinDF gate
	if len(neighbors) != 2 {
		t.Fatalf("Expected 2 neighbors, got %v", neighbors)
	}
	if neighbors[0].Tag != "concurrency" || neighbors[1].Tag != "testing" {
		t.Errorf("Neighbor order = [%s %s], want [concurrency testing]", neighbors[0].Tag, neighbors[1].Tag)
	}
	if neighbors[0].Score < neighbors[1].Score {
		t.Error("Neighbors should be ordered by score (highest first)")
	}
	if neighbors[0].Count != 3 {
		t.Errorf("concurrency co-occurrence count = %d, want 3", neighbors[0].Count)
	}

	// "django" and "flask" are each used once, below the MinDF gate
	pyNeighbors, err := st.RelatedTags(ctx, "T1", "python", 10)
	if err != nil {
		t.Fatalf("RelatedTags python: %v", err)
	}
	if len(pyNeighbors) != 0 {
		t.Errorf("Rare neighbors should be skipped, got %v", pyNeighbors)
	}

	// Unknown tag yields nothing
	unknown, err := st.RelatedTags(ctx, "T1", "rust", 10)
	if err != nil {
		t.Fatalf("RelatedTags unknown: %v", err)
	}
	if len(unknown) != 0 {
		t.Errorf("Unknown tag should have no neighbors, got %v", unknown)
	}
}

// TestSQLiteIntegrationStats tests corpus summarization
func TestSQLiteIntegrationStats(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", Tags: []string{"golang", "testing"}})
	if err != nil {
		t.Fatalf("RecordBookmark: %v", err)
	}
	_, err = st.RecordBookmark(ctx, corpus.Bookmark{TeamID: "T1", Tags: []string{"golang"}})
	if err != nil {
		t.Fatalf("RecordBookmark: %v", err)
	}

	stats, err := st.Stats(ctx, "T1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Bookmarks != 2 {
		t.Errorf("Bookmarks = %d, want 2", stats.Bookmarks)
	}
	if stats.Tags != 2 {
		t.Errorf("Tags = %d, want 2", stats.Tags)
	}
	if stats.Pairs != 1 {
		t.Errorf("Pairs = %d, want 1", stats.Pairs)
	}

	empty, err := st.Stats(ctx, "T2")
	if err != nil {
		t.Fatalf("Stats empty team: %v", err)
	}
	if empty.Bookmarks != 0 || empty.Tags != 0 || empty.Pairs != 0 {
		t.Errorf("Empty team stats should be zero, got %+v", empty)
	}
}

// TestSQLiteIntegrationValidation tests input validation sentinels
func TestSQLiteIntegrationValidation(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if _, err := st.RecordBookmark(ctx, corpus.Bookmark{Tags: []string{"golang"}}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("RecordBookmark without team should be ErrInvalidInput, got %v", err)
	}
	if _, err := st.RelatedTags(ctx, "T1", "  ", 5); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("RelatedTags without tag should be ErrInvalidInput, got %v", err)
	}
	if err := st.AddSeedTags(ctx, "", "T1", []string{"golang"}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("AddSeedTags without user should be ErrInvalidInput, got %v", err)
	}
}

// TestSQLiteIntegrationSchemaExists verifies the expected tables
func TestSQLiteIntegrationSchemaExists(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	sqliteStore := st.(*sqliteStore)
	rows, err := sqliteStore.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("Query sqlite_master: %v", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("Scan table name: %v", err)
		}
		tables = append(tables, name)
	}

	expectedTables := []string{"bookmark_tags", "bookmarks", "seed_tags", "tag_pairs", "team_tags"}
	if len(tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d: %v", len(expectedTables), len(tables), tables)
	}
	for i, expected := range expectedTables {
		if i < len(tables) && tables[i] != expected {
			t.Errorf("Table %d = %q, want %q", i, tables[i], expected)
		}
	}
}
