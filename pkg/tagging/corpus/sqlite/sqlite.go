package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/internalerr"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/pmi"
)

// maxCorpusTags bounds GetExistingTags so the keyword × tag scoring cross
// product stays small even for tag-heavy teams.
const maxCorpusTags = 200

// sqliteStore implements the corpus.Store interface using SQLite
type sqliteStore struct {
	db     *sql.DB
	pmiCfg pmi.Config
	calc   *pmi.Calculator
}

// OpenSQLite opens a SQLite-backed corpus store with WAL mode enabled.
// An optional pmi.Config controls related-tag scoring; if omitted,
// pmi.DefaultConfig() is used.
func OpenSQLite(ctx context.Context, path string, cfg ...pmi.Config) (corpus.Store, error) {
	c := pmi.DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:     db,
		pmiCfg: c,
		calc:   pmi.NewCalculatorFromConfig(c),
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS bookmarks (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmark_tags (
	bookmark_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	UNIQUE(bookmark_id, tag),
	FOREIGN KEY(bookmark_id) REFERENCES bookmarks(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS team_tags (
	team_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(team_id, tag)
);

CREATE TABLE IF NOT EXISTS seed_tags (
	user_id TEXT NOT NULL,
	team_id TEXT NOT NULL DEFAULT '',
	tag TEXT NOT NULL,
	PRIMARY KEY(user_id, team_id, tag)
);

CREATE TABLE IF NOT EXISTS tag_pairs (
	team_id TEXT NOT NULL,
	t1 TEXT NOT NULL,
	t2 TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(team_id, t1, t2)
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_team ON bookmarks(team_id);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// RecordBookmark stores a bookmark and its final tags, bumping per-team tag
// usage and tag-pair co-occurrence counts in the same transaction. Tags are
// stored lowercase. Returns the bookmark id (a fresh ULID when b.ID is empty).
func (s *sqliteStore) RecordBookmark(ctx context.Context, b corpus.Bookmark) (string, error) {
	if b.TeamID == "" {
		return "", fmt.Errorf("corpus: bookmark team id required: %w", internalerr.ErrInvalidInput)
	}

	id := b.ID
	if id == "" {
		id = ulid.Make().String()
	}
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	tags := normalizeTags(b.Tags)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO bookmarks (id, team_id, user_id, url, title, description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, id, b.TeamID, b.UserID, b.URL, b.Title, b.Description, created.UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}

	if err := insertBookmarkTags(ctx, tx, id, tags); err != nil {
		return "", err
	}
	if err := bumpTeamTags(ctx, tx, b.TeamID, tags); err != nil {
		return "", err
	}
	if err := bumpTagPairs(ctx, tx, b.TeamID, tags); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func insertBookmarkTags(ctx context.Context, tx *sql.Tx, bookmarkID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bookmark_tags (bookmark_id, tag) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tag := range tags {
		if _, err := stmt.ExecContext(ctx, bookmarkID, tag); err != nil {
			return err
		}
	}
	return nil
}

func bumpTeamTags(ctx context.Context, tx *sql.Tx, teamID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO team_tags (team_id, tag, usage_count) VALUES (?, ?, 1)
ON CONFLICT(team_id, tag) DO UPDATE SET usage_count=usage_count+1;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tag := range tags {
		if _, err := stmt.ExecContext(ctx, teamID, tag); err != nil {
			return err
		}
	}
	return nil
}

func bumpTagPairs(ctx context.Context, tx *sql.Tx, teamID string, tags []string) error {
	if len(tags) < 2 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO tag_pairs (team_id, t1, t2, count) VALUES (?, ?, ?, 1)
ON CONFLICT(team_id, t1, t2) DO UPDATE SET count=count+1;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			t1, t2 := tags[i], tags[j]
			if t1 == t2 {
				continue
			}
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if _, err := stmt.ExecContext(ctx, teamID, t1, t2); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetExistingTags returns a team's tags ordered by usage count descending,
// ties broken alphabetically.
func (s *sqliteStore) GetExistingTags(ctx context.Context, teamID string) ([]string, error) {
	return s.loadStringColumn(ctx, `
SELECT tag FROM team_tags
WHERE team_id = ?
ORDER BY usage_count DESC, tag ASC
LIMIT ?;
`, teamID, maxCorpusTags)
}

// RelatedTags returns the top K tags that co-occur with the given tag for a
// team, ranked by PMI score.
func (s *sqliteStore) RelatedTags(ctx context.Context, teamID, tag string, k int) ([]corpus.Neighbor, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil, fmt.Errorf("corpus: related tags need a tag: %w", internalerr.ErrInvalidInput)
	}
	if k <= 0 {
		k = 10
	}

	total, err := s.totalBookmarks(ctx, teamID)
	if err != nil || total == 0 {
		return nil, err
	}

	dfTag, err := s.tagUsage(ctx, teamID, tag)
	if err != nil || dfTag == 0 {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT
	CASE WHEN t1 = ? THEN t2 ELSE t1 END AS neighbor,
	count
FROM tag_pairs
WHERE team_id = ? AND (t1 = ? OR t2 = ?);
`, tag, teamID, tag, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type raw struct {
		tag   string
		count int64
	}
	var pairs []raw
	for rows.Next() {
		var r raw
		if err := rows.Scan(&r.tag, &r.count); err != nil {
			return nil, err
		}
		pairs = append(pairs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var neighbors []corpus.Neighbor
	for _, r := range pairs {
		dfOther, err := s.tagUsage(ctx, teamID, r.tag)
		if err != nil || dfOther < s.pmiCfg.MinDF {
			continue // PMI over-rewards rare tags
		}
		score := s.calc.Score(r.count, dfTag, dfOther, total, s.pmiCfg.UseNPMI)
		neighbors = append(neighbors, corpus.Neighbor{Tag: r.tag, Score: score, Count: r.count})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].Score > neighbors[j].Score
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// Stats summarizes a team's corpus
func (s *sqliteStore) Stats(ctx context.Context, teamID string) (corpus.Stats, error) {
	var st corpus.Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks WHERE team_id=?`, teamID).Scan(&st.Bookmarks); err != nil {
		return corpus.Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM team_tags WHERE team_id=?`, teamID).Scan(&st.Tags); err != nil {
		return corpus.Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tag_pairs WHERE team_id=?`, teamID).Scan(&st.Pairs); err != nil {
		return corpus.Stats{}, err
	}
	return st, nil
}

// AddSeedTags stores starter tags for a user. A non-empty teamID scopes them
// to that team; an empty teamID makes them available everywhere.
func (s *sqliteStore) AddSeedTags(ctx context.Context, userID, teamID string, tags []string) error {
	if userID == "" {
		return fmt.Errorf("corpus: seed tags need a user id: %w", internalerr.ErrInvalidInput)
	}
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO seed_tags (user_id, team_id, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tag := range tags {
		if _, err := stmt.ExecContext(ctx, userID, teamID, tag); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSeedTags returns a user's seed tags. An empty teamID matches seeds from
// any team; a non-empty teamID also includes the user's unscoped seeds.
func (s *sqliteStore) GetSeedTags(ctx context.Context, userID, teamID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	if teamID == "" {
		return s.loadStringColumn(ctx, `
SELECT DISTINCT tag FROM seed_tags
WHERE user_id = ?
ORDER BY tag
LIMIT ?;
`, userID, limit)
	}
	return s.loadStringColumn(ctx, `
SELECT DISTINCT tag FROM seed_tags
WHERE user_id = ? AND (team_id = ? OR team_id = '')
ORDER BY tag
LIMIT ?;
`, userID, teamID, limit)
}

func (s *sqliteStore) tagUsage(ctx context.Context, teamID, tag string) (int64, error) {
	var df int64
	err := s.db.QueryRowContext(ctx, `SELECT usage_count FROM team_tags WHERE team_id=? AND tag=?`, teamID, tag).Scan(&df)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return df, err
}

func (s *sqliteStore) totalBookmarks(ctx context.Context, teamID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks WHERE team_id=?`, teamID).Scan(&total)
	return total, err
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}

// normalizeTags lowercases, trims, and dedupes, dropping empties.
func normalizeTags(in []string) []string {
	set := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		tag := strings.ToLower(strings.TrimSpace(v))
		if tag == "" {
			continue
		}
		if _, ok := set[tag]; ok {
			continue
		}
		set[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
