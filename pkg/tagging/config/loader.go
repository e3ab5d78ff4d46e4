package config

import (
	"fmt"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/keywords"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/lexical"
)

// Loader loads the tuning files and constructs pipeline components
type Loader struct {
	StoplistPath string
	ScoringPath  string
}

// Components holds the loaded tuning components
type Components struct {
	// Stopwords is the full stopword list, or nil when no stoplist file
	// was given so callers keep the built-in defaults.
	Stopwords []string
	Weights   lexical.Weights
}

// Load reads the tuning files and returns initialized components.
// Empty paths fall back to the built-in defaults.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Weights: lexical.DefaultWeights()}

	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		// Extra terms extend the built-in list rather than replacing it.
		comp.Stopwords = append(keywords.DefaultStopwords(), sl.Terms...)
	}

	if l.ScoringPath != "" {
		sc, err := LoadScoring(l.ScoringPath)
		if err != nil {
			return nil, fmt.Errorf("load scoring: %w", err)
		}
		comp.Weights = mergeWeights(comp.Weights, *sc)
	}

	return comp, nil
}

// mergeWeights overlays the non-zero scoring fields onto base.
func mergeWeights(base lexical.Weights, sc Scoring) lexical.Weights {
	if sc.Perfect != 0 {
		base.Perfect = sc.Perfect
	}
	if sc.Variation != 0 {
		base.Variation = sc.Variation
	}
	if sc.KeywordInTag != 0 {
		base.KeywordInTag = sc.KeywordInTag
	}
	if sc.TagInKeyword != 0 {
		base.TagInKeyword = sc.TagInKeyword
	}
	if sc.HighConfidence != 0 {
		base.HighConfidence = sc.HighConfidence
	}
	if sc.FuzzyMin != 0 {
		base.FuzzyMin = sc.FuzzyMin
	}
	return base
}
