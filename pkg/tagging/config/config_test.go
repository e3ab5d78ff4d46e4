package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/lexical"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadStoplist(t *testing.T) {
	path := writeFile(t, "stoplist.yaml", "terms:\n  - misc\n  - stuff\n  - things\n")

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("LoadStoplist: %v", err)
	}

	want := []string{"misc", "stuff", "things"}
	if len(sl.Terms) != len(want) {
		t.Fatalf("LoadStoplist terms = %v, want %v", sl.Terms, want)
	}
	for i, term := range want {
		if sl.Terms[i] != term {
			t.Errorf("term[%d] = %q, want %q", i, sl.Terms[i], term)
		}
	}
}

func TestLoadScoring(t *testing.T) {
	path := writeFile(t, "scoring.yaml",
		"perfect: 20\nvariation: 10\nkeyword_in_tag: 6\ntag_in_keyword: 4\nhigh_confidence: 18\nfuzzy_min: 85\n")

	sc, err := LoadScoring(path)
	if err != nil {
		t.Fatalf("LoadScoring: %v", err)
	}

	if sc.Perfect != 20 || sc.Variation != 10 || sc.KeywordInTag != 6 ||
		sc.TagInKeyword != 4 || sc.HighConfidence != 18 || sc.FuzzyMin != 85 {
		t.Errorf("LoadScoring = %+v, want the values from the file", sc)
	}
}

func TestLoadScoringPartial(t *testing.T) {
	path := writeFile(t, "scoring.yaml", "perfect: 30\n")

	sc, err := LoadScoring(path)
	if err != nil {
		t.Fatalf("LoadScoring: %v", err)
	}

	if sc.Perfect != 30 {
		t.Errorf("Perfect = %v, want 30", sc.Perfect)
	}
	if sc.Variation != 0 || sc.FuzzyMin != 0 {
		t.Errorf("unset fields = %+v, want zero values", sc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadStoplist(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadStoplist on a missing file returned nil error")
	}
	if _, err := LoadScoring(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadScoring on a missing file returned nil error")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "terms: [unclosed\n")

	if _, err := LoadStoplist(path); err == nil {
		t.Error("LoadStoplist on malformed YAML returned nil error")
	}
}

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("empty loader should succeed: %v", err)
	}

	if comp.Stopwords != nil {
		t.Errorf("Stopwords = %v, want nil so callers keep the defaults", comp.Stopwords)
	}
	if comp.Weights != lexical.DefaultWeights() {
		t.Errorf("Weights = %+v, want defaults", comp.Weights)
	}
}

func TestLoaderExtendsStopwords(t *testing.T) {
	loader := Loader{
		StoplistPath: writeFile(t, "stoplist.yaml", "terms:\n  - misc\n"),
	}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	set := make(map[string]bool, len(comp.Stopwords))
	for _, w := range comp.Stopwords {
		set[w] = true
	}
	if !set["misc"] {
		t.Error("loaded list is missing the extra term")
	}
	if !set["the"] {
		t.Error("loaded list is missing the built-in defaults")
	}
}

func TestLoaderMergesScoring(t *testing.T) {
	loader := Loader{
		ScoringPath: writeFile(t, "scoring.yaml", "perfect: 30\nfuzzy_min: 90\n"),
	}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	defaults := lexical.DefaultWeights()
	if comp.Weights.Perfect != 30 {
		t.Errorf("Perfect = %v, want 30", comp.Weights.Perfect)
	}
	if comp.Weights.FuzzyMin != 90 {
		t.Errorf("FuzzyMin = %v, want 90", comp.Weights.FuzzyMin)
	}
	if comp.Weights.Variation != defaults.Variation {
		t.Errorf("Variation = %v, want the default %v", comp.Weights.Variation, defaults.Variation)
	}
}

func TestLoaderNonExistentFiles(t *testing.T) {
	loader := Loader{StoplistPath: filepath.Join(t.TempDir(), "absent.yaml")}
	if _, err := loader.Load(); err == nil {
		t.Error("Load with a missing stoplist returned nil error")
	}

	loader = Loader{ScoringPath: filepath.Join(t.TempDir(), "absent.yaml")}
	if _, err := loader.Load(); err == nil {
		t.Error("Load with a missing scoring file returned nil error")
	}
}
