// Package config loads prreview settings from defaults, an optional config
// file and the environment using viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/prreview"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override config keys,
// e.g. PRREVIEW_MODEL or PRREVIEW_BUDGET_MAX_INPUT_TOKENS.
const EnvPrefix = "PRREVIEW"

// Config is the complete prreview configuration.
type Config struct {
	Model               string        `mapstructure:"model"`
	GeminiAPIKey        string        `mapstructure:"gemini_api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRetries          int           `mapstructure:"max_retries"`
	Concurrency         int           `mapstructure:"concurrency"`
	LogLevel            string        `mapstructure:"log_level"`
	Port                int           `mapstructure:"port"`
	SummaryMaxChars     int           `mapstructure:"summary_max_chars"`
	LocalReviewMaxChars int           `mapstructure:"local_review_max_chars"`
	CacheDir            string        `mapstructure:"cache_dir"`

	Budget  BudgetConfig            `mapstructure:"budget"`
	Prompts map[string]PromptConfig `mapstructure:"prompts"`
	GitHub  GitHubConfig            `mapstructure:"github"`
}

// BudgetConfig mirrors prreview.Budget.
type BudgetConfig struct {
	MaxInputTokens          int     `mapstructure:"max_input_tokens"`
	ReservedForPromptTokens int     `mapstructure:"reserved_for_prompt_tokens"`
	BufferTokens            int     `mapstructure:"buffer_tokens"`
	TokensPerChar           float64 `mapstructure:"tokens_per_char"`
	SummaryLines            int     `mapstructure:"summary_lines"`
}

// PromptConfig holds the generation settings of one prompt kind.
type PromptConfig struct {
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	Temperature     float32 `mapstructure:"temperature"`
}

// GitHubConfig holds the webhook integration settings.
type GitHubConfig struct {
	Token         string `mapstructure:"token"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	APIURL        string `mapstructure:"api_url"`
}

// defaultPrompts matches prompt.DefaultSettings.
var defaultPrompts = map[prreview.PromptKind]PromptConfig{
	prreview.PromptSummary:     {MaxOutputTokens: 200, Temperature: 0.7},
	prreview.PromptBugs:        {MaxOutputTokens: 500, Temperature: 0.5},
	prreview.PromptPerformance: {MaxOutputTokens: 400, Temperature: 0.6},
	prreview.PromptSecurity:    {MaxOutputTokens: 400, Temperature: 0.5},
}

func setDefaults(v *viper.Viper) {
	b := prreview.DefaultBudget()

	v.SetDefault("model", "gemini-2.0-flash")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("max_retries", 2)
	v.SetDefault("concurrency", 3)
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8000)
	v.SetDefault("summary_max_chars", 1000)
	v.SetDefault("local_review_max_chars", 3000)
	v.SetDefault("cache_dir", "")
	v.SetDefault("budget.max_input_tokens", b.MaxInputTokens)
	v.SetDefault("budget.reserved_for_prompt_tokens", b.ReservedForPromptTokens)
	v.SetDefault("budget.buffer_tokens", b.BufferTokens)
	v.SetDefault("budget.tokens_per_char", b.TokensPerChar)
	v.SetDefault("budget.summary_lines", b.SummaryLines)
	for kind, p := range defaultPrompts {
		key := "prompts." + strings.ToLower(string(kind))
		v.SetDefault(key+".max_output_tokens", p.MaxOutputTokens)
		v.SetDefault(key+".temperature", p.Temperature)
	}
	v.SetDefault("github.token", "")
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.api_url", "https://api.github.com")
}

// conventional environment variables accepted besides the PRREVIEW_ ones.
var envAliases = map[string]string{
	"gemini_api_key":        "GEMINI_API_KEY",
	"github.token":          "GITHUB_TOKEN",
	"github.webhook_secret": "GITHUB_WEBHOOK_SECRET",
	"github.api_url":        "GITHUB_API_URL",
	"port":                  "PORT",
}

// Load reads the configuration. When path is empty a prreview.{yaml,json,toml}
// in the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("prreview")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Model == "":
		return &prreview.ConfigError{Field: "model", Message: "must not be empty"}
	case c.Timeout <= 0:
		return &prreview.ConfigError{Field: "timeout", Message: "must be positive"}
	case c.MaxRetries < 0:
		return &prreview.ConfigError{Field: "max_retries", Message: "must not be negative"}
	case c.Concurrency < 1:
		return &prreview.ConfigError{Field: "concurrency", Message: "must be at least 1"}
	case c.Port < 1 || c.Port > 65535:
		return &prreview.ConfigError{Field: "port", Message: fmt.Sprintf("%d is not a valid port", c.Port)}
	case c.SummaryMaxChars < 1:
		return &prreview.ConfigError{Field: "summary_max_chars", Message: "must be positive"}
	case c.LocalReviewMaxChars < 1:
		return &prreview.ConfigError{Field: "local_review_max_chars", Message: "must be positive"}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return &prreview.ConfigError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}

	b := c.Budget
	if b.TokensPerChar <= 0 {
		return &prreview.ConfigError{Field: "budget.tokens_per_char", Message: "must be positive"}
	}
	if b.MaxInputTokens-b.ReservedForPromptTokens-b.BufferTokens <= 0 {
		return &prreview.ConfigError{Field: "budget.max_input_tokens", Message: "leaves no room for the diff"}
	}
	for name, p := range c.Prompts {
		if p.MaxOutputTokens < 1 {
			return &prreview.ConfigError{Field: "prompts." + name + ".max_output_tokens", Message: "must be positive"}
		}
		if p.Temperature < 0 || p.Temperature > 2 {
			return &prreview.ConfigError{Field: "prompts." + name + ".temperature", Message: "must be within [0, 2]"}
		}
	}
	return nil
}

// RequireGeminiKey reports a missing API key for commands that call the model.
func (c *Config) RequireGeminiKey() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return &prreview.ConfigError{Field: "gemini_api_key", Message: "set GEMINI_API_KEY or gemini_api_key"}
	}
	return nil
}

// ReviewBudget returns the configured prreview.Budget.
func (c *Config) ReviewBudget() prreview.Budget {
	return prreview.Budget{
		MaxInputTokens:          c.Budget.MaxInputTokens,
		ReservedForPromptTokens: c.Budget.ReservedForPromptTokens,
		BufferTokens:            c.Budget.BufferTokens,
		TokensPerChar:           c.Budget.TokensPerChar,
		SummaryLines:            c.Budget.SummaryLines,
	}
}

// PromptSettings returns the configured generation settings keyed by prompt kind.
func (c *Config) PromptSettings() map[prreview.PromptKind]prreview.GenerateOptions {
	out := make(map[prreview.PromptKind]prreview.GenerateOptions, len(c.Prompts))
	for name, p := range c.Prompts {
		out[prreview.PromptKind(strings.ToUpper(name))] = prreview.GenerateOptions{
			MaxOutputTokens: p.MaxOutputTokens,
			Temperature:     p.Temperature,
		}
	}
	return out
}
