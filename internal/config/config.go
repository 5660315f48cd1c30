// Package config loads serpkeep settings from defaults, an optional config
// file and SERPKEEP_* environment variables.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SERPKEEP_STORAGE_DSN.
const EnvPrefix = "SERPKEEP"

const (
	DefaultQuery          = `site:https://jobs.lever.co "Remote" AND ("Fulltime" OR "Full Time" OR "Full-Time") AND ("Customer support specialist" OR "Customer Support")`
	DefaultBaseURL        = "https://www.google.com/search"
	DefaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultTimeout        = 30 * time.Second
	DefaultBackend        = "sqlite"
	DefaultDSN            = "data.sqlite"
)

// Config is the full runtime configuration.
type Config struct {
	Query           string            `mapstructure:"query"`
	BaseURL         string            `mapstructure:"base_url"`
	Params          map[string]string `mapstructure:"params"`
	UserAgent       string            `mapstructure:"user_agent"`
	AcceptLanguage  string            `mapstructure:"accept_language"`
	Timeout         time.Duration     `mapstructure:"timeout"`
	MaxRedirects    int               `mapstructure:"max_redirects"`
	UseCookieJar    bool              `mapstructure:"use_cookie_jar"`
	Fingerprint     string            `mapstructure:"fingerprint"`
	RespectRobots   bool              `mapstructure:"respect_robots"`
	Storage         StorageConfig     `mapstructure:"storage"`
	Snippet         SnippetConfig     `mapstructure:"snippet"`
	Selectors       SelectorConfig    `mapstructure:"selectors"`
	MetricsTextfile string            `mapstructure:"metrics_textfile"`
	LogLevel        string            `mapstructure:"log_level"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"` // sqlite, postgres, json, csv
	DSN     string `mapstructure:"dsn"`
}

type SnippetConfig struct {
	Classes []string `mapstructure:"classes"`
	MinLen  int      `mapstructure:"min_len"`
	MaxLen  int      `mapstructure:"max_len"`
}

type SelectorConfig struct {
	Card         string `mapstructure:"card"`
	FallbackCard string `mapstructure:"fallback_card"`
	Heading      string `mapstructure:"heading"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Query:   DefaultQuery,
		BaseURL: DefaultBaseURL,
		Params: map[string]string{
			"hl":     "en",
			"num":    "10",
			"start":  "0",
			"filter": "0",
		},
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: DefaultAcceptLanguage,
		Timeout:        DefaultTimeout,
		MaxRedirects:   10,
		Fingerprint:    "go",
		Storage: StorageConfig{
			Backend: DefaultBackend,
			DSN:     DefaultDSN,
		},
		Snippet: SnippetConfig{
			Classes: []string{"VwiC3b", "aCOpRe", "IsZvec"},
			MinLen:  30,
			MaxLen:  500,
		},
		Selectors: SelectorConfig{
			Card:         "div.g",
			FallbackCard: "a:has(h3)",
			Heading:      "h3",
		},
		LogLevel: "info",
	}
}

// SetDefaults registers every key of Default on v so that env overrides and
// Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("query", d.Query)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("params", d.Params)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("accept_language", d.AcceptLanguage)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("max_redirects", d.MaxRedirects)
	v.SetDefault("use_cookie_jar", d.UseCookieJar)
	v.SetDefault("fingerprint", d.Fingerprint)
	v.SetDefault("respect_robots", d.RespectRobots)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("snippet.classes", d.Snippet.Classes)
	v.SetDefault("snippet.min_len", d.Snippet.MinLen)
	v.SetDefault("snippet.max_len", d.Snippet.MaxLen)
	v.SetDefault("selectors.card", d.Selectors.Card)
	v.SetDefault("selectors.fallback_card", d.Selectors.FallbackCard)
	v.SetDefault("selectors.heading", d.Selectors.Heading)
	v.SetDefault("metrics_textfile", d.MetricsTextfile)
	v.SetDefault("log_level", d.LogLevel)
}

// Load resolves the configuration from v. A nil v gets a fresh instance.
// When path is set the file is read and must exist; its format follows the
// extension (yaml, toml or json).
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Snippet.MinLen < 0 || c.Snippet.MaxLen < c.Snippet.MinLen {
		return fmt.Errorf("invalid snippet bounds [%d, %d]", c.Snippet.MinLen, c.Snippet.MaxLen)
	}
	switch c.Storage.Backend {
	case "sqlite", "postgres", "json", "csv":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// SearchParams returns a copy of the fixed query parameters, without "q".
func (c Config) SearchParams() map[string]string {
	params := make(map[string]string, len(c.Params))
	for k, v := range c.Params {
		if k == "q" {
			continue
		}
		params[k] = v
	}
	return params
}

// Header returns the fixed request headers.
func (c Config) Header() http.Header {
	h := make(http.Header)
	if c.UserAgent != "" {
		h.Set("User-Agent", c.UserAgent)
	}
	if c.AcceptLanguage != "" {
		h.Set("Accept-Language", c.AcceptLanguage)
	}
	return h
}
