// Package reconcile folds high-confidence corpus matches back into a
// generated tag set. The generative pass can drop a tag the team already
// uses heavily; reconciliation puts it back as long as the set has room.
package reconcile

import (
	"sort"
	"strings"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/lexical"
)

// Reconcile appends corpus tags whose score meets minScore and which are
// not already in current, best score first, never growing the result past
// limit. The input slice is not modified.
func Reconcile(current []string, scored []lexical.ScoredTag, minScore float64, limit int) []string {
	if limit <= 0 || len(current) >= limit {
		return current
	}

	present := make(map[string]struct{}, len(current))
	for _, tag := range current {
		present[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	candidates := make([]lexical.ScoredTag, 0, len(scored))
	for _, s := range scored {
		if s.Score >= minScore {
			candidates = append(candidates, s)
		}
	}
	// Stable. Matcher output is already ranked; equal scores keep its order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	out := append([]string(nil), current...)
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		tag := strings.ToLower(strings.TrimSpace(c.Tag))
		if tag == "" {
			continue
		}
		if _, ok := present[tag]; ok {
			continue
		}
		present[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
