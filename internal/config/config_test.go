package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("expected defaults\n%+v\ngot\n%+v", want, cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serpkeep.yaml")
	content := `
query: "golang jobs"
timeout: 5s
storage:
  backend: json
  dsn: results.ndjson
snippet:
  classes: [abc]
  min_len: 10
  max_len: 100
selectors:
  card: div.result
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Query != "golang jobs" {
		t.Errorf("expected query override, got %q", cfg.Query)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.Timeout)
	}
	if cfg.Storage.Backend != "json" || cfg.Storage.DSN != "results.ndjson" {
		t.Errorf("unexpected storage: %+v", cfg.Storage)
	}
	if !reflect.DeepEqual(cfg.Snippet.Classes, []string{"abc"}) || cfg.Snippet.MinLen != 10 || cfg.Snippet.MaxLen != 100 {
		t.Errorf("unexpected snippet config: %+v", cfg.Snippet)
	}
	if cfg.Selectors.Card != "div.result" || cfg.Selectors.Heading != "h3" {
		t.Errorf("unexpected selectors: %+v", cfg.Selectors)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("expected default user agent to survive, got %q", cfg.UserAgent)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SERPKEEP_STORAGE_DSN", "/tmp/other.sqlite")
	t.Setenv("SERPKEEP_RESPECT_ROBOTS", "true")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.DSN != "/tmp/other.sqlite" {
		t.Errorf("expected env DSN, got %q", cfg.Storage.DSN)
	}
	if !cfg.RespectRobots {
		t.Error("expected respect_robots from env")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty query", func(c *Config) { c.Query = "  " }},
		{"empty base", func(c *Config) { c.BaseURL = "" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"inverted bounds", func(c *Config) { c.Snippet.MinLen, c.Snippet.MaxLen = 50, 10 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSearchParams(t *testing.T) {
	cfg := Default()
	cfg.Params["q"] = "stray"

	params := cfg.SearchParams()
	if _, ok := params["q"]; ok {
		t.Error("expected q to be dropped")
	}
	params["hl"] = "de"
	if cfg.Params["hl"] != "en" {
		t.Error("expected SearchParams to return a copy")
	}
}

func TestHeader(t *testing.T) {
	h := Default().Header()
	if h.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("unexpected User-Agent %q", h.Get("User-Agent"))
	}
	if h.Get("Accept-Language") != DefaultAcceptLanguage {
		t.Errorf("unexpected Accept-Language %q", h.Get("Accept-Language"))
	}
}
