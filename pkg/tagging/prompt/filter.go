package prompt

import (
	"context"
	"encoding/json"
	"log"
	"strings"
)

const (
	filterMaxTokens   = 256
	filterTemperature = 0.1
)

const filterSystem = `You review a proposed set of bookmark tags and remove the weak ones. Keep tags a teammate would realistically search for; drop subjective, vague, or redundant ones. Reply with ONLY a JSON array containing the tags to keep.`

// Filter trims low-value tags from a draft. It only ever removes: protected
// tags are never shown to the model and never dropped, and a failed or empty
// reply leaves the draft as it was.
type Filter struct {
	completer Completer
	logger    *log.Logger
}

// NewFilter creates a filter. A nil logger selects log.Default().
func NewFilter(completer Completer, logger *log.Logger) *Filter {
	if logger == nil {
		logger = log.Default()
	}
	return &Filter{completer: completer, logger: logger}
}

// Refine asks the model which of the draft's unprotected tags to keep and
// reassembles the set as protected tags followed by the survivors, both in
// draft order. The model call is skipped when every tag is protected.
// Refine never empties a non-empty draft.
func (f *Filter) Refine(ctx context.Context, draft, protected []string) []string {
	if len(draft) == 0 {
		return draft
	}

	protectedSet := make(map[string]struct{}, len(protected))
	for _, p := range protected {
		protectedSet[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}

	var kept, candidates []string
	for _, tag := range draft {
		if _, ok := protectedSet[strings.ToLower(strings.TrimSpace(tag))]; ok {
			kept = append(kept, tag)
		} else {
			candidates = append(candidates, tag)
		}
	}
	if len(candidates) == 0 {
		return draft
	}

	out, err := f.completer.Complete(ctx, CompleteRequest{
		System:      filterSystem,
		User:        filterPrompt(candidates),
		MaxTokens:   filterMaxTokens,
		Temperature: filterTemperature,
	})
	if err != nil {
		f.logger.Printf("prompt: filter call failed, keeping draft: %v", err)
		return draft
	}

	surviving, ok := ParseTagArray(out)
	if !ok || len(surviving) == 0 {
		f.logger.Printf("prompt: filter reply unusable, keeping draft: %.80q", out)
		return draft
	}

	allowed := make(map[string]struct{}, len(surviving))
	for _, tag := range surviving {
		allowed[tag] = struct{}{}
	}

	result := append([]string(nil), kept...)
	for _, tag := range candidates {
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(tag))]; ok {
			result = append(result, tag)
		}
	}
	if len(result) == 0 {
		return draft
	}
	return result
}

func filterPrompt(candidates []string) string {
	// json.Marshal cannot fail on a []string
	encoded, _ := json.Marshal(candidates)
	var b strings.Builder
	b.WriteString("Candidate tags:\n")
	b.Write(encoded)
	b.WriteString("\n\nReturn the tags worth keeping.")
	return b.String()
}
