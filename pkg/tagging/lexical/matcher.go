package lexical

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/keywords"
)

// TopMatches is how many scored tags ScoreExistingTags returns.
const TopMatches = 6

// MatchType identifies which strategy matched a keyword to a corpus tag.
type MatchType string

const (
	MatchPerfect      MatchType = "perfect"
	MatchVariation    MatchType = "variation"
	MatchKeywordInTag MatchType = "keyword-in-tag"
	MatchTagInKeyword MatchType = "tag-in-keyword"
	MatchFuzzy        MatchType = "fuzzy"
)

// ScoredTag is a corpus tag with its accumulated match score.
type ScoredTag struct {
	Tag   string
	Score float64
	Match MatchType
}

// Weights defines the scoring weights
type Weights struct {
	Perfect        float64 // exact keyword == tag
	Variation      float64 // shared lemma (running/run)
	KeywordInTag   float64 // keyword is a substring of the tag
	TagInKeyword   float64 // tag is a substring of the keyword
	HighConfidence float64 // score at which a match is forced in during reconciliation
	FuzzyMin       int     // minimum token-set ratio for a fuzzy match; 0 disables fuzzy
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Perfect:        15,
		Variation:      12,
		KeywordInTag:   8,
		TagInKeyword:   5,
		HighConfidence: 15,
		FuzzyMin:       80,
	}
}

// Corpus is the matcher's view of the tag corpus store.
type Corpus interface {
	GetExistingTags(ctx context.Context, teamID string) ([]string, error)
}

// Matcher scores a team's existing tags against keywords extracted from
// bookmark text. It holds no per-request state and is safe for concurrent use.
type Matcher struct {
	corpus    Corpus
	extractor *keywords.Extractor
	lemmas    *golem.Lemmatizer
	weights   Weights
	logger    *log.Logger
}

// NewMatcher creates a matcher. The corpus may be nil, in which case every
// lookup sees an empty corpus. A nil extractor selects the default stopword
// list; a nil logger selects log.Default().
func NewMatcher(c Corpus, extractor *keywords.Extractor, w Weights, logger *log.Logger) (*Matcher, error) {
	lemmas, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("lexical: load lemmatizer: %w", err)
	}
	if extractor == nil {
		extractor = keywords.NewExtractor(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Matcher{
		corpus:    c,
		extractor: extractor,
		lemmas:    lemmas,
		weights:   w,
		logger:    logger,
	}, nil
}

// corpusResult carries the corpus fetch across the join.
type corpusResult struct {
	tags []string
	err  error
}

// ScoreExistingTags scores a team's existing tags against the keywords in
// title and description, returning the top matches by score descending with
// ties broken by encounter order. An empty teamID, a nil corpus, or a corpus
// failure yields an empty result; the failure is logged, never propagated.
func (m *Matcher) ScoreExistingTags(ctx context.Context, title, description, teamID string) []ScoredTag {
	// The corpus fetch and keyword extraction are independent; overlap them.
	fetch := make(chan corpusResult, 1)
	go func() {
		tags, err := m.fetchCorpus(ctx, teamID)
		fetch <- corpusResult{tags: tags, err: err}
	}()

	kws := m.extractor.Extract(title + " " + description)

	res := <-fetch
	if res.err != nil {
		m.logger.Printf("lexical: corpus unavailable for team %q: %v", teamID, res.err)
		res.tags = nil
	}
	if len(kws) == 0 || len(res.tags) == 0 {
		return nil
	}

	return m.score(kws, res.tags)
}

func (m *Matcher) fetchCorpus(ctx context.Context, teamID string) ([]string, error) {
	if m.corpus == nil || teamID == "" {
		return nil, nil
	}
	return m.corpus.GetExistingTags(ctx, teamID)
}

// tagScore is one accumulator entry.
type tagScore struct {
	score float64
	match MatchType
	order int // first-encounter position, used to break score ties
}

// score runs every keyword × tag pair through the match strategies. The
// first strategy that applies wins for that pair and its increment
// accumulates on the tag. Fuzzy similarity is a fallback: it is assigned at
// most once per tag and only while no other strategy has scored that tag.
func (m *Matcher) score(kws, corpusTags []string) []ScoredTag {
	tags := normalizeUnique(corpusTags)
	acc := make(map[string]*tagScore)
	next := 0

	add := func(tag string, points float64, match MatchType) {
		entry := acc[tag]
		if entry == nil {
			entry = &tagScore{match: match, order: next}
			next++
			acc[tag] = entry
		} else if entry.match == MatchFuzzy {
			// a real match supersedes an earlier fuzzy assignment
			entry.match = match
		}
		entry.score += points
	}

	for _, kw := range kws {
		for _, tag := range tags {
			switch {
			case kw == tag:
				add(tag, m.weights.Perfect, MatchPerfect)
			case m.sharesLemma(kw, tag):
				add(tag, m.weights.Variation, MatchVariation)
			case len(kw) > 2 && strings.Contains(tag, kw):
				add(tag, m.weights.KeywordInTag, MatchKeywordInTag)
			case len(tag) > 2 && strings.Contains(kw, tag):
				add(tag, m.weights.TagInKeyword, MatchTagInKeyword)
			default:
				if _, scored := acc[tag]; scored {
					continue
				}
				if m.weights.FuzzyMin <= 0 {
					continue
				}
				if sim := fuzzy.TokenSetRatio(kw, tag); sim >= m.weights.FuzzyMin {
					acc[tag] = &tagScore{score: float64(sim) / 10.0, match: MatchFuzzy, order: next}
					next++
				}
			}
		}
	}

	type row struct {
		ScoredTag
		order int
	}
	rows := make([]row, 0, len(acc))
	for tag, e := range acc {
		rows = append(rows, row{ScoredTag{Tag: tag, Score: e.score, Match: e.match}, e.order})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].order < rows[j].order
	})
	if len(rows) > TopMatches {
		rows = rows[:TopMatches]
	}

	out := make([]ScoredTag, len(rows))
	for i, r := range rows {
		out[i] = r.ScoredTag
	}
	return out
}

// sharesLemma reports whether two words reduce to a common base form under
// any of the lemmatizer's interpretations.
func (m *Matcher) sharesLemma(a, b string) bool {
	for _, la := range m.lemmaSet(a) {
		for _, lb := range m.lemmaSet(b) {
			if la == lb {
				return true
			}
		}
	}
	return false
}

// lemmaSet returns every candidate lemma for a word. Words the dictionary
// does not know fall back to themselves.
func (m *Matcher) lemmaSet(word string) []string {
	lemmas := m.lemmas.Lemmas(word)
	if len(lemmas) == 0 {
		return []string{word}
	}
	return lemmas
}

// Tags extracts just the tag strings from a scored set, in rank order.
func Tags(scored []ScoredTag) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Tag
	}
	return out
}

// normalizeUnique lowercases and trims corpus tags, dropping empties and
// duplicates while preserving order.
func normalizeUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		tag := strings.ToLower(strings.TrimSpace(v))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
