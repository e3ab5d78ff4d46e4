// Command taggen generates tags for a single bookmark from the command
// line. Point it at a YAML config describing the model backend and the
// team corpus, give it a URL or a title, and it prints the final tag set.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skapadia/bookmark-slack-bot/internal/genai"
	"github.com/skapadia/bookmark-slack-bot/internal/webpage"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/config"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/corpus/sqlite"
	"github.com/skapadia/bookmark-slack-bot/pkg/tagging/prompt"
)

// appConfig mirrors the taggen YAML config file.
type appConfig struct {
	DBPath         string `yaml:"db_path"`
	Stoplist       string `yaml:"stoplist"`
	Scoring        string `yaml:"scoring"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 means no deadline
	LLM            struct {
		Provider string `yaml:"provider"` // "openai" (default) or "anthropic"
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"llm"`
}

func loadConfig(path string) (appConfig, error) {
	var conf appConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, err
	}
	return conf, nil
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config (required)")
		pageURL     = flag.String("url", "", "Bookmark URL; fetched to fill missing title/description")
		title       = flag.String("title", "", "Bookmark title")
		description = flag.String("description", "", "Bookmark description")
		team        = flag.String("team", "", "Team ID for corpus lookups")
		user        = flag.String("user", "", "User ID for seed tag lookups")
		manual      = flag.String("manual", "", "Comma-separated tags to always keep")
		hint        = flag.String("hint", "", "Comma-separated hint tags for the drafting prompt")
		save        = flag.Bool("save", false, "Record the bookmark and its tags in the corpus")
		asJSON      = flag.Bool("json", false, "Print the result as JSON")
	)
	flag.Parse()

	if *configPath == "" {
		log.Fatal("--config is required")
	}
	if *pageURL == "" && *title == "" {
		log.Fatal("--url or --title is required")
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	if conf.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(conf.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	engine, store, cleanup, err := buildEngine(ctx, conf)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}
	defer cleanup()

	req := tagging.Request{
		URL:         *pageURL,
		Title:       *title,
		Description: *description,
		TeamID:      *team,
		UserID:      *user,
		Hint:        splitTags(*hint),
		ManualTags:  splitTags(*manual),
	}

	// Fill missing fields from the live page. A fetch failure is not
	// fatal; tagging proceeds with whatever the caller supplied.
	if *pageURL != "" {
		page, err := webpage.NewFetcher(nil).Fetch(ctx, *pageURL)
		if err != nil {
			log.Printf("WARNING: fetch %s: %v", *pageURL, err)
		} else {
			if req.Title == "" {
				req.Title = page.Title
			}
			if req.Description == "" {
				req.Description = page.Description
			}
			req.Content = page.Content
		}
	}

	tags, err := engine.GenerateTags(ctx, req)
	if err != nil {
		log.Fatalf("generate tags: %v", err)
	}

	if *save {
		if store == nil {
			log.Fatal("--save requires db_path in the config")
		}
		id, err := store.RecordBookmark(ctx, corpus.Bookmark{
			TeamID:      req.TeamID,
			UserID:      req.UserID,
			URL:         req.URL,
			Title:       req.Title,
			Description: req.Description,
			Tags:        tags,
		})
		if err != nil {
			log.Fatalf("record bookmark: %v", err)
		}
		log.Printf("saved bookmark %s", id)
	}

	if *asJSON {
		printJSON(req, tags)
		return
	}
	fmt.Println(strings.Join(tags, ", "))
}

// buildEngine wires the completer, corpus store, and tuning files from
// the config into a tagging engine. The returned cleanup closes the store.
func buildEngine(ctx context.Context, conf appConfig) (*tagging.Engine, corpus.Store, func(), error) {
	completer, err := buildCompleter(conf)
	if err != nil {
		return nil, nil, nil, err
	}

	var store corpus.Store
	if conf.DBPath != "" {
		store, err = sqlite.OpenSQLite(ctx, conf.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open corpus %s: %w", conf.DBPath, err)
		}
	}

	closeStore := func() {
		if store != nil {
			store.Close()
		}
	}

	loader := config.Loader{StoplistPath: conf.Stoplist, ScoringPath: conf.Scoring}
	comp, err := loader.Load()
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}

	engine, err := tagging.New(tagging.Options{
		Corpus:    store,
		Completer: completer,
		Weights:   &comp.Weights,
		Stopwords: comp.Stopwords,
	})
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := engine.Close(); err != nil {
			log.Printf("close engine: %v", err)
		}
	}
	return engine, store, cleanup, nil
}

// buildCompleter picks the completion backend named by the config.
func buildCompleter(conf appConfig) (prompt.Completer, error) {
	switch conf.LLM.Provider {
	case "anthropic":
		return genai.NewAnthropicClient(conf.LLM.APIKey, conf.LLM.Model)
	case "", "openai":
		if conf.LLM.BaseURL == "" || conf.LLM.Model == "" {
			return nil, errors.New("llm base_url and model are required")
		}
		return &genai.Client{BaseURL: conf.LLM.BaseURL, APIKey: conf.LLM.APIKey, Model: conf.LLM.Model}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", conf.LLM.Provider)
	}
}

func printJSON(req tagging.Request, tags []string) {
	result := struct {
		URL   string   `json:"url,omitempty"`
		Title string   `json:"title,omitempty"`
		Team  string   `json:"team,omitempty"`
		Tags  []string `json:"tags"`
	}{URL: req.URL, Title: req.Title, Team: req.TeamID, Tags: tags}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshal result: %v", err)
	}
	fmt.Println(string(data))
}

// splitTags splits a comma-separated flag value, dropping empty entries.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
