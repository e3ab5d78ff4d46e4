package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Stoplist represents the extra stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Scoring represents the lexical match weight configuration. Zero-valued
// fields mean "keep the default"; callers merge it over lexical.DefaultWeights.
type Scoring struct {
	Perfect        float64 `yaml:"perfect"`
	Variation      float64 `yaml:"variation"`
	KeywordInTag   float64 `yaml:"keyword_in_tag"`
	TagInKeyword   float64 `yaml:"tag_in_keyword"`
	HighConfidence float64 `yaml:"high_confidence"`
	FuzzyMin       int     `yaml:"fuzzy_min"`
}

// LoadScoring loads match weights from a YAML file
func LoadScoring(path string) (*Scoring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scoring
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}

	return &sc, nil
}
