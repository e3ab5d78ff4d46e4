package prompt

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Limits applied to parsed model output.
const (
	// MaxDraftTags caps how many tags a single reply can contribute.
	MaxDraftTags = 10
	// MaxTagLength drops degenerate tags the model sometimes emits when it
	// stuffs a sentence into an array element. Counted in runes.
	MaxTagLength = 50
)

// ParseTagArray extracts the first JSON array from raw model output and
// returns its string elements, lowercased and trimmed. Models wrap arrays
// in prose, code fences, or apologies; everything around the first [...]
// region is ignored. The second return is false when no region is present
// or no candidate region is valid JSON. Non-string elements, empties, and
// over-long tags are dropped.
func ParseTagArray(raw string) ([]string, bool) {
	items, ok := firstJSONArray(raw)
	if !ok {
		return nil, false
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || utf8.RuneCountInString(s) > MaxTagLength {
			continue
		}
		tags = append(tags, s)
		if len(tags) == MaxDraftTags {
			break
		}
	}
	return tags, true
}

// firstJSONArray locates the first decodable bracketed region. Candidates
// run from the first '[' to each following ']' in turn and the first one
// that decodes wins, so a ']' inside an element does not cut the array
// short.
func firstJSONArray(raw string) ([]any, bool) {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return nil, false
	}
	search := start + 1
	for {
		off := strings.IndexByte(raw[search:], ']')
		if off < 0 {
			return nil, false
		}
		end := search + off
		var items []any
		if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err == nil {
			return items, true
		}
		search = end + 1
	}
}
