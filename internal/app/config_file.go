package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/searchdash/internal/report"
	"github.com/hyperifyio/searchdash/internal/variant"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
	Query string `yaml:"query" json:"query"`

	Variants struct {
		Module      string `yaml:"module" json:"module"`
		Placeholder string `yaml:"placeholder" json:"placeholder"`
		Alphabet    string `yaml:"alphabet" json:"alphabet"`
		Max         int    `yaml:"max" json:"max"`
	} `yaml:"variants" json:"variants"`

	Providers []string `yaml:"providers" json:"providers"`
	UserAgent string   `yaml:"userAgent" json:"userAgent"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
	} `yaml:"searx" json:"searx"`

	Endpoints struct {
		DuckDuckGo string `yaml:"duckduckgo" json:"duckduckgo"`
		StartPage  string `yaml:"startpage" json:"startpage"`
	} `yaml:"endpoints" json:"endpoints"`

	Pipeline struct {
		MaxResults     *int          `yaml:"maxResults" json:"maxResults"`
		RateLimit      fileDuration `yaml:"rateLimit" json:"rateLimit"`
		ConnectTimeout fileDuration `yaml:"connectTimeout" json:"connectTimeout"`
		OverallTimeout fileDuration `yaml:"overallTimeout" json:"overallTimeout"`
		Sequential     bool          `yaml:"sequential" json:"sequential"`
		MaxAttempts    int           `yaml:"maxAttempts" json:"maxAttempts"`
	} `yaml:"pipeline" json:"pipeline"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Output struct {
		Format string `yaml:"format" json:"format"`
		Path   string `yaml:"path" json:"path"`
	} `yaml:"output" json:"output"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// fileDuration accepts "2s"-style duration strings or integer nanoseconds
// in both YAML and JSON files.
type fileDuration time.Duration

func (d *fileDuration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = fileDuration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = fileDuration(v)
	return nil
}

func (d *fileDuration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.set(s)
	}
	return d.set(string(b))
}

func (d *fileDuration) UnmarshalYAML(n *yaml.Node) error { return d.set(n.Value) }

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their defaults. Flags should already have
// been parsed; this lets the file supply defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	if cfg.Query == "" && fc.Query != "" {
		cfg.Query = fc.Query
	}
	if (cfg.Module == "" || cfg.Module == def.Module) && fc.Variants.Module != "" {
		cfg.Module = fc.Variants.Module
	}
	if (cfg.Placeholder == "" || cfg.Placeholder == def.Placeholder) && fc.Variants.Placeholder != "" {
		cfg.Placeholder = fc.Variants.Placeholder
	}
	if cfg.Alphabet == "" && fc.Variants.Alphabet != "" {
		cfg.Alphabet = fc.Variants.Alphabet
	}
	if cfg.MaxVariants == 0 && fc.Variants.Max > 0 {
		cfg.MaxVariants = fc.Variants.Max
	}

	if (len(cfg.Providers) == 0 || slices.Equal(cfg.Providers, def.Providers)) && len(fc.Providers) > 0 {
		cfg.Providers = append([]string(nil), fc.Providers...)
	}
	if cfg.UserAgent == "" && fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if cfg.SearxURL == "" && fc.Searx.URL != "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if cfg.SearxKey == "" && fc.Searx.Key != "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if cfg.DuckDuckGoURL == "" && fc.Endpoints.DuckDuckGo != "" {
		cfg.DuckDuckGoURL = fc.Endpoints.DuckDuckGo
	}
	if cfg.StartPageURL == "" && fc.Endpoints.StartPage != "" {
		cfg.StartPageURL = fc.Endpoints.StartPage
	}

	// maxResults is a pointer so that an explicit 0 in the file is honoured.
	if cfg.MaxResults == def.MaxResults && fc.Pipeline.MaxResults != nil {
		cfg.MaxResults = *fc.Pipeline.MaxResults
	}
	if (cfg.RateLimit == 0 || cfg.RateLimit == def.RateLimit) && fc.Pipeline.RateLimit != 0 {
		cfg.RateLimit = time.Duration(fc.Pipeline.RateLimit)
	}
	if (cfg.ConnectTimeout == 0 || cfg.ConnectTimeout == def.ConnectTimeout) && fc.Pipeline.ConnectTimeout > 0 {
		cfg.ConnectTimeout = time.Duration(fc.Pipeline.ConnectTimeout)
	}
	if (cfg.OverallTimeout == 0 || cfg.OverallTimeout == def.OverallTimeout) && fc.Pipeline.OverallTimeout > 0 {
		cfg.OverallTimeout = time.Duration(fc.Pipeline.OverallTimeout)
	}
	if !cfg.Sequential && fc.Pipeline.Sequential {
		cfg.Sequential = true
	}
	if (cfg.MaxAttempts == 0 || cfg.MaxAttempts == def.MaxAttempts) && fc.Pipeline.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Pipeline.MaxAttempts
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if (cfg.Format == "" || cfg.Format == def.Format) && fc.Output.Format != "" {
		cfg.Format = fc.Output.Format
	}
	if cfg.OutputPath == "" && fc.Output.Path != "" {
		cfg.OutputPath = fc.Output.Path
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Query) == "" {
		return errors.New("config: search string cannot be empty")
	}
	if cfg.MaxResults < 0 || cfg.MaxVariants < 0 || cfg.MaxAttempts < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.ConnectTimeout < 0 || cfg.OverallTimeout < 0 {
		return errors.New("config: negative timeouts are not allowed")
	}
	if _, err := variant.Lookup(cfg.Module); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Module), "llm") && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required for the llm module (or set LLM_MODEL)")
	}
	if len(cfg.Providers) == 0 {
		return errors.New("config: at least one provider is required")
	}
	for _, p := range cfg.Providers {
		switch normalizeProvider(p) {
		case "duckduckgo", "startpage":
		case "searxng":
			if strings.TrimSpace(cfg.SearxURL) == "" {
				return errors.New("config: searxng provider requires searx.url (or set SEARX_URL)")
			}
		default:
			return fmt.Errorf("config: unknown provider %q", p)
		}
	}
	if !report.ValidFormat(cfg.Format) {
		return fmt.Errorf("config: unknown format %q", cfg.Format)
	}
	if strings.EqualFold(cfg.Format, "pdf") && strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: pdf format requires an output path")
	}
	return nil
}

func normalizeProvider(p string) string {
	switch s := strings.ToLower(strings.TrimSpace(p)); s {
	case "ddg":
		return "duckduckgo"
	case "searx":
		return "searxng"
	default:
		return s
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	return list
}
