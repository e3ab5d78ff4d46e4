// Command corpus-admin inspects and maintains a team's bookmark corpus:
// list tags, query co-occurrence neighbors, manage seed tags, and bulk
// import bookmarks from JSONL.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus/sqlite"
)

func main() {
	var (
		dbPath = flag.String("db", "", "Path to SQLite corpus database (required)")
		cmd    = flag.String("cmd", "stats", "Command: stats | tags | related | seed | seeds | import")
		team   = flag.String("team", "", "Team ID")
		user   = flag.String("user", "", "User ID (seed commands)")
		tag    = flag.String("tag", "", "Tag to query (related)")
		tags   = flag.String("tags", "", "Comma-separated tags (seed)")
		k      = flag.Int("k", 5, "Number of neighbors (related)")
		limit  = flag.Int("limit", 10, "Maximum seed tags to list (seeds)")
		input  = flag.String("input", "", "JSONL file of bookmarks (import)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db is required")
	}

	ctx := context.Background()

	store, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open corpus: %v", err)
	}
	defer store.Close()

	switch *cmd {
	case "stats":
		runStats(ctx, store, *team)
	case "tags":
		runTags(ctx, store, *team)
	case "related":
		runRelated(ctx, store, *team, *tag, *k)
	case "seed":
		runSeed(ctx, store, *user, *team, *tags)
	case "seeds":
		runSeeds(ctx, store, *user, *team, *limit)
	case "import":
		runImport(ctx, store, *input)
	default:
		log.Fatalf("unknown command %q", *cmd)
	}
}

func runStats(ctx context.Context, store corpus.Store, team string) {
	if team == "" {
		log.Fatal("--team is required")
	}
	stats, err := store.Stats(ctx, team)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	printJSON(struct {
		Team      string `json:"team"`
		Bookmarks int64  `json:"bookmarks"`
		Tags      int64  `json:"tags"`
		Pairs     int64  `json:"pairs"`
	}{Team: team, Bookmarks: stats.Bookmarks, Tags: stats.Tags, Pairs: stats.Pairs})
}

func runTags(ctx context.Context, store corpus.Store, team string) {
	if team == "" {
		log.Fatal("--team is required")
	}
	list, err := store.GetExistingTags(ctx, team)
	if err != nil {
		log.Fatalf("tags: %v", err)
	}
	printJSON(struct {
		Team string   `json:"team"`
		Tags []string `json:"tags"`
	}{Team: team, Tags: list})
}

func runRelated(ctx context.Context, store corpus.Store, team, tag string, k int) {
	if team == "" || tag == "" {
		log.Fatal("--team and --tag are required")
	}
	neighbors, err := store.RelatedTags(ctx, team, tag, k)
	if err != nil {
		log.Fatalf("related: %v", err)
	}

	type neighborRow struct {
		Tag   string  `json:"tag"`
		Score float64 `json:"score"`
		Count int64   `json:"count"`
	}
	rows := make([]neighborRow, 0, len(neighbors))
	for _, n := range neighbors {
		rows = append(rows, neighborRow{Tag: n.Tag, Score: n.Score, Count: n.Count})
	}
	printJSON(struct {
		Team      string        `json:"team"`
		Tag       string        `json:"tag"`
		Neighbors []neighborRow `json:"neighbors"`
	}{Team: team, Tag: tag, Neighbors: rows})
}

func runSeed(ctx context.Context, store corpus.Store, user, team, tags string) {
	if user == "" || tags == "" {
		log.Fatal("--user and --tags are required")
	}
	list := splitTags(tags)
	if err := store.AddSeedTags(ctx, user, team, list); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("stored %d seed tags for user %s", len(list), user)
}

func runSeeds(ctx context.Context, store corpus.Store, user, team string, limit int) {
	if user == "" {
		log.Fatal("--user is required")
	}
	list, err := store.GetSeedTags(ctx, user, team, limit)
	if err != nil {
		log.Fatalf("seeds: %v", err)
	}
	printJSON(struct {
		User string   `json:"user"`
		Team string   `json:"team,omitempty"`
		Tags []string `json:"tags"`
	}{User: user, Team: team, Tags: list})
}

// bookmarkLine is one JSONL record for bulk import.
type bookmarkLine struct {
	TeamID      string   `json:"team_id"`
	UserID      string   `json:"user_id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func runImport(ctx context.Context, store corpus.Store, input string) {
	if input == "" {
		log.Fatal("--input is required")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		log.Fatalf("read file %s: %v", input, err)
	}

	var imported int
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var b bookmarkLine
		if err := json.Unmarshal([]byte(line), &b); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, input, err)
			continue
		}
		if b.TeamID == "" {
			log.Printf("Warning: skipping line %d in %s: missing team_id", i+1, input)
			continue
		}

		if _, err := store.RecordBookmark(ctx, corpus.Bookmark{
			TeamID:      b.TeamID,
			UserID:      b.UserID,
			URL:         b.URL,
			Title:       b.Title,
			Description: b.Description,
			Tags:        b.Tags,
		}); err != nil {
			log.Fatalf("record line %d: %v", i+1, err)
		}
		imported++
	}

	if imported == 0 {
		log.Fatalf("no valid bookmarks found in %s", input)
	}
	fmt.Printf("Imported %d bookmarks from %s\n", imported, input)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	fmt.Println(string(data))
}

// splitTags splits a comma-separated flag value, dropping empty entries.
func splitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
