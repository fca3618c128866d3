package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding variables are set. It runs after the config file is applied
// and before explicit flags, so env sits between the two in precedence.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
			}
		}
	}
	setString(&cfg.Module, "SEARCHDASH_MODULE")
	setString(&cfg.Placeholder, "SEARCHDASH_PLACEHOLDER")
	setString(&cfg.Alphabet, "SEARCHDASH_ALPHABET")
	setString(&cfg.UserAgent, "SEARCHDASH_USER_AGENT")
	setString(&cfg.Format, "SEARCHDASH_FORMAT")
	setString(&cfg.OutputPath, "SEARCHDASH_OUTPUT")
	// Support both SEARX_URL and SEARXNG_URL; the later key wins when both are set
	setString(&cfg.SearxURL, "SEARX_URL", "SEARXNG_URL")
	setString(&cfg.SearxKey, "SEARX_KEY", "SEARXNG_KEY")
	setString(&cfg.DuckDuckGoURL, "SEARCHDASH_DUCKDUCKGO_URL")
	setString(&cfg.StartPageURL, "SEARCHDASH_STARTPAGE_URL")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")

	if v := strings.TrimSpace(os.Getenv("SEARCHDASH_PROVIDERS")); v != "" {
		if list := splitList(v); len(list) > 0 {
			cfg.Providers = list
		}
	}

	setInt := func(dst *int, key string) {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n >= 0 {
			*dst = n
		}
	}
	setInt(&cfg.MaxResults, "SEARCHDASH_MAX_RESULTS")
	setInt(&cfg.MaxVariants, "SEARCHDASH_MAX_VARIANTS")
	setInt(&cfg.MaxAttempts, "SEARCHDASH_MAX_ATTEMPTS")

	setDuration := func(dst *time.Duration, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setDuration(&cfg.RateLimit, "SEARCHDASH_RATE_LIMIT")
	setDuration(&cfg.ConnectTimeout, "SEARCHDASH_CONNECT_TIMEOUT")
	setDuration(&cfg.OverallTimeout, "SEARCHDASH_OVERALL_TIMEOUT")

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.Sequential, "SEARCHDASH_SEQUENTIAL")
	setBool(&cfg.Verbose, "VERBOSE")
}
