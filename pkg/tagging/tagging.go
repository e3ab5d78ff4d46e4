package tagging

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/internalerr"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/keywords"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/lexical"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/prompt"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/reconcile"
)

// Tag set limits.
const (
	// MaxTags caps a generated tag set.
	MaxTags = 6
	// MaxTagsWithManual caps the set when the user supplied their own
	// tags; manual tags should not crowd out every generated one.
	MaxTagsWithManual = 8
	// DefaultSeedLimit caps how many seed tags feed the drafting prompt
	// when the team corpus has nothing for a bookmark.
	DefaultSeedLimit = 5
)

// Engine is the main tag generation facade
type Engine struct {
	corpus    corpus.Store
	matcher   *lexical.Matcher
	drafter   *prompt.Drafter
	filter    *prompt.Filter
	weights   lexical.Weights
	seedLimit int
	logger    *log.Logger
}

// Options configures an Engine instance
type Options struct {
	// Corpus is the team tag corpus. May be nil; every lookup then sees
	// an empty corpus.
	Corpus corpus.Store
	// Completer serves the drafting and filtering prompts. Required.
	Completer prompt.Completer
	// Weights overrides the lexical match weights.
	Weights *lexical.Weights
	// Stopwords replaces the default keyword stopword list.
	Stopwords []string
	// SeedLimit overrides DefaultSeedLimit.
	SeedLimit int
	// Logger receives pipeline warnings. Defaults to log.Default().
	Logger *log.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	if opts.Completer == nil {
		return nil, fmt.Errorf("tagging: completer is required: %w", internalerr.ErrInvalidConfig)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	weights := lexical.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	var extractor *keywords.Extractor
	if opts.Stopwords != nil {
		extractor = keywords.NewExtractor(opts.Stopwords)
	}

	matcher, err := lexical.NewMatcher(opts.Corpus, extractor, weights, logger)
	if err != nil {
		return nil, err
	}

	seedLimit := opts.SeedLimit
	if seedLimit <= 0 {
		seedLimit = DefaultSeedLimit
	}

	return &Engine{
		corpus:    opts.Corpus,
		matcher:   matcher,
		drafter:   prompt.NewDrafter(opts.Completer, logger),
		filter:    prompt.NewFilter(opts.Completer, logger),
		weights:   weights,
		seedLimit: seedLimit,
		logger:    logger,
	}, nil
}

// Close cleanly shuts down the engine
func (e *Engine) Close() error {
	if e.corpus == nil {
		return nil
	}
	return e.corpus.Close()
}

// Request describes one bookmark to tag
type Request struct {
	URL         string
	Title       string
	Description string
	// Content is page text for the drafting prompt; it never feeds
	// keyword matching.
	Content string
	TeamID  string
	UserID  string
	// Hint tags ride along as drafting context only; they are neither
	// scored nor protected.
	Hint []string
	// ManualTags are user-chosen tags that are always kept.
	ManualTags []string
}

// GenerateTags runs the full pipeline: score the team's existing tags
// against the bookmark text, draft a tag set with the model, filter the
// draft, reconcile high-confidence corpus matches back in, and merge the
// user's manual tags on top. Only a failed drafting call is fatal; every
// other stage degrades and the pipeline continues.
func (e *Engine) GenerateTags(ctx context.Context, req Request) ([]string, error) {
	scored := e.matcher.ScoreExistingTags(ctx, req.Title, req.Description, req.TeamID)

	draft, err := e.drafter.Draft(ctx, prompt.DraftRequest{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Preferred:   e.preferredTags(ctx, scored, req),
	})
	if err != nil {
		return nil, err
	}

	// Only corpus-matched tags are protected from the filter.
	protected := intersect(draft, lexical.Tags(scored))
	refined := e.filter.Refine(ctx, draft, protected)

	generated := reconcile.Reconcile(refined, scored, e.weights.HighConfidence, MaxTags)

	return mergeFinal(req.ManualTags, generated), nil
}

// SeedTags stores starter tags for a user so their first bookmarks have
// something to draft against.
func (e *Engine) SeedTags(ctx context.Context, userID, teamID string, tags []string) error {
	if e.corpus == nil {
		return fmt.Errorf("tagging: no corpus configured: %w", internalerr.ErrInvalidConfig)
	}
	return e.corpus.AddSeedTags(ctx, userID, teamID, tags)
}

// preferredTags assembles the drafting nudge: the matched corpus tags, the
// user's seed tags when the corpus had nothing, and any caller hints.
func (e *Engine) preferredTags(ctx context.Context, scored []lexical.ScoredTag, req Request) []string {
	preferred := lexical.Tags(scored)
	if len(preferred) == 0 && e.corpus != nil && req.UserID != "" {
		seeds, err := e.corpus.GetSeedTags(ctx, req.UserID, req.TeamID, e.seedLimit)
		if err != nil {
			e.logger.Printf("tagging: seed tags unavailable for user %q: %v", req.UserID, err)
		} else {
			preferred = seeds
		}
	}
	preferred = append(preferred, req.Hint...)
	return normalizeUnique(preferred)
}

// mergeFinal merges manual tags ahead of generated ones, deduplicates
// case-insensitively keeping the first occurrence, and caps the set.
func mergeFinal(manual, generated []string) []string {
	limit := MaxTags
	if len(manual) > 0 {
		limit = MaxTagsWithManual
	}

	merged := normalizeUnique(append(append([]string(nil), manual...), generated...))
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// intersect returns the draft tags that appear in corpusTags, in draft order.
func intersect(draft, corpusTags []string) []string {
	set := make(map[string]struct{}, len(corpusTags))
	for _, tag := range corpusTags {
		set[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	var out []string
	for _, tag := range draft {
		if _, ok := set[strings.ToLower(strings.TrimSpace(tag))]; ok {
			out = append(out, tag)
		}
	}
	return out
}

func normalizeUnique(in []string) []string {
	set := make(map[string]struct{}, len(in))
	var out []string
	for _, val := range in {
		tag := strings.ToLower(strings.TrimSpace(val))
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
