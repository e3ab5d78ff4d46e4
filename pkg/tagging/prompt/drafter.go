package prompt

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const (
	draftMaxTokens   = 256
	draftTemperature = 0.1

	// draftContentLimit bounds the page-content excerpt in the prompt.
	draftContentLimit = 2000
)

const draftSystem = `You are a bookmark tagging assistant. Given a bookmark, reply with a JSON array of 3-5 concise lowercase tags that a teammate would search for later. Prefer concrete technology, domain, and platform terms. Avoid subjective words like "clean" or "awesome". Return ONLY the JSON array, no prose.`

// DraftRequest describes the bookmark being tagged. Empty fields are left
// out of the prompt.
type DraftRequest struct {
	URL         string
	Title       string
	Description string
	Content     string

	// Preferred lists tags the team already uses; the model is nudged
	// toward them but free to ignore them.
	Preferred []string
}

// Drafter asks the model for an initial tag set.
type Drafter struct {
	completer Completer
	logger    *log.Logger
}

// NewDrafter creates a drafter. A nil logger selects log.Default().
func NewDrafter(completer Completer, logger *log.Logger) *Drafter {
	if logger == nil {
		logger = log.Default()
	}
	return &Drafter{completer: completer, logger: logger}
}

// Draft requests tags for a bookmark. A transport failure is returned as an
// error and should abort the pipeline; a reply with no parsable tag array is
// downgraded to an empty draft with a warning.
func (d *Drafter) Draft(ctx context.Context, req DraftRequest) ([]string, error) {
	out, err := d.completer.Complete(ctx, CompleteRequest{
		System:      draftSystem,
		User:        d.userPrompt(req),
		MaxTokens:   draftMaxTokens,
		Temperature: draftTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("prompt: draft completion: %w", err)
	}

	tags, ok := ParseTagArray(out)
	if !ok {
		d.logger.Printf("prompt: draft reply had no tag array: %.80q", out)
		return nil, nil
	}
	return tags, nil
}

func (d *Drafter) userPrompt(req DraftRequest) string {
	var b strings.Builder
	b.WriteString("Bookmark:\n")
	writeField(&b, "Title", req.Title)
	writeField(&b, "URL", req.URL)
	writeField(&b, "Description", req.Description)
	if content := truncateRunes(req.Content, draftContentLimit); content != "" {
		b.WriteString("Content excerpt:\n")
		b.WriteString(content)
		b.WriteString("\n")
	}
	if len(req.Preferred) > 0 {
		b.WriteString("\nThe team already uses these tags; prefer them when they fit: ")
		b.WriteString(strings.Join(req.Preferred, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\nReply with a JSON array of 3-5 tags.")
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
