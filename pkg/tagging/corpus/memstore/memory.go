package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/internalerr"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/pmi"
)

// Store is an in-memory implementation of corpus.Store for tests and examples.
type Store struct {
	mu        sync.RWMutex
	pmiCfg    pmi.Config
	calc      *pmi.Calculator
	bookmarks map[string]corpus.Bookmark
	teamDocs  map[string]int64            // teamID -> bookmark count
	teamTags  map[string]map[string]int64 // teamID -> tag -> usage count
	pairs     map[string]map[string]int64 // teamID -> pairKey -> count
	seeds     map[string][]string         // userID|teamID -> tags
}

// New creates a new in-memory store. An optional pmi.Config controls
// related-tag scoring, matching the SQLite store's behavior.
func New(cfg ...pmi.Config) *Store {
	c := pmi.DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &Store{
		pmiCfg:    c,
		calc:      pmi.NewCalculatorFromConfig(c),
		bookmarks: make(map[string]corpus.Bookmark),
		teamDocs:  make(map[string]int64),
		teamTags:  make(map[string]map[string]int64),
		pairs:     make(map[string]map[string]int64),
		seeds:     make(map[string][]string),
	}
}

// Close implements corpus.Store.
func (s *Store) Close() error { return nil }

// RecordBookmark stores a bookmark and bumps tag usage and pair counts.
func (s *Store) RecordBookmark(ctx context.Context, b corpus.Bookmark) (string, error) {
	if b.TeamID == "" {
		return "", fmt.Errorf("corpus: bookmark team id required: %w", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.Tags = normalizeTags(b.Tags)

	s.bookmarks[b.ID] = copyBookmark(b)
	s.teamDocs[b.TeamID]++

	tags := s.teamTags[b.TeamID]
	if tags == nil {
		tags = make(map[string]int64)
		s.teamTags[b.TeamID] = tags
	}
	for _, tag := range b.Tags {
		tags[tag]++
	}

	teamPairs := s.pairs[b.TeamID]
	if teamPairs == nil {
		teamPairs = make(map[string]int64)
		s.pairs[b.TeamID] = teamPairs
	}
	for i := 0; i < len(b.Tags); i++ {
		for j := i + 1; j < len(b.Tags); j++ {
			if key := pairKey(b.Tags[i], b.Tags[j]); key != "" {
				teamPairs[key]++
			}
		}
	}

	return b.ID, nil
}

// GetExistingTags returns a team's tags ordered by usage count descending,
// ties broken alphabetically.
func (s *Store) GetExistingTags(ctx context.Context, teamID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usage := s.teamTags[teamID]
	if len(usage) == 0 {
		return nil, nil
	}

	tags := make([]string, 0, len(usage))
	for tag := range usage {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if usage[tags[i]] != usage[tags[j]] {
			return usage[tags[i]] > usage[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return tags, nil
}

// RelatedTags returns the top K co-occurring tags ranked by PMI score.
func (s *Store) RelatedTags(ctx context.Context, teamID, tag string, k int) ([]corpus.Neighbor, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil, fmt.Errorf("corpus: related tags need a tag: %w", internalerr.ErrInvalidInput)
	}
	if k <= 0 {
		k = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.teamDocs[teamID]
	dfTag := s.teamTags[teamID][tag]
	if total == 0 || dfTag == 0 {
		return nil, nil
	}

	var neighbors []corpus.Neighbor
	for key, count := range s.pairs[teamID] {
		parts := strings.Split(key, "|")
		if len(parts) != 2 {
			continue
		}
		var other string
		switch tag {
		case parts[0]:
			other = parts[1]
		case parts[1]:
			other = parts[0]
		default:
			continue
		}
		dfOther := s.teamTags[teamID][other]
		if dfOther < s.pmiCfg.MinDF {
			continue // PMI over-rewards rare tags
		}
		score := s.calc.Score(count, dfTag, dfOther, total, s.pmiCfg.UseNPMI)
		neighbors = append(neighbors, corpus.Neighbor{Tag: other, Score: score, Count: count})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].Tag < neighbors[j].Tag
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// Stats summarizes a team's corpus.
func (s *Store) Stats(ctx context.Context, teamID string) (corpus.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return corpus.Stats{
		Bookmarks: s.teamDocs[teamID],
		Tags:      int64(len(s.teamTags[teamID])),
		Pairs:     int64(len(s.pairs[teamID])),
	}, nil
}

// AddSeedTags stores starter tags for a user.
func (s *Store) AddSeedTags(ctx context.Context, userID, teamID string, tags []string) error {
	if userID == "" {
		return fmt.Errorf("corpus: seed tags need a user id: %w", internalerr.ErrInvalidInput)
	}
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "|" + teamID
	existing := make(map[string]struct{}, len(s.seeds[key]))
	for _, t := range s.seeds[key] {
		existing[t] = struct{}{}
	}
	for _, tag := range tags {
		if _, ok := existing[tag]; ok {
			continue
		}
		existing[tag] = struct{}{}
		s.seeds[key] = append(s.seeds[key], tag)
	}
	return nil
}

// GetSeedTags returns a user's seed tags sorted alphabetically. An empty
// teamID matches seeds from any team; a non-empty teamID also includes the
// user's unscoped seeds.
func (s *Store) GetSeedTags(ctx context.Context, userID, teamID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]struct{})
	for key, tags := range s.seeds {
		parts := strings.SplitN(key, "|", 2)
		if len(parts) != 2 || parts[0] != userID {
			continue
		}
		if teamID != "" && parts[1] != teamID && parts[1] != "" {
			continue
		}
		for _, t := range tags {
			set[t] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func copyBookmark(b corpus.Bookmark) corpus.Bookmark {
	tags := make([]string, len(b.Tags))
	copy(tags, b.Tags)
	b.Tags = tags
	return b
}

func pairKey(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	if a == b {
		return ""
	}
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
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
