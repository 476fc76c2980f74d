package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for a gatherer run. It is loaded once in
// the command layer and passed into the pipeline by value; no component
// reads ambient state.
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Sources  []SourceConfig `mapstructure:"sources"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// LLMConfig contains the generative-model collaborator settings. The base
// URL may point at any OpenAI-compatible endpoint; the default targets a
// local Ollama server.
type LLMConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxContextChars int           `mapstructure:"max_context_chars"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.BaseURL) == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// FetchConfig contains headless-rendering settings.
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	MaxChars  int           `mapstructure:"max_chars"`
}

// YouTubeConfig contains metadata-API collaborator settings.
type YouTubeConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// PipelineConfig contains batch-run settings.
type PipelineConfig struct {
	WindowDays   int           `mapstructure:"window_days"`
	ArticleLimit int           `mapstructure:"article_limit"`
	PacingDelay  time.Duration `mapstructure:"pacing_delay"`
	OutputPath   string        `mapstructure:"output_path"`
	Schedule     string        `mapstructure:"schedule"`
}

// SourceConfig describes one configured source. Kind selects the fetch
// path; Category is carried through to output records untouched.
type SourceConfig struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Kind     string `mapstructure:"kind"`
	Category string `mapstructure:"category"`
}

const (
	KindWebpage = "webpage"
	KindYouTube = "youtube"
)

func (s SourceConfig) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("source name is required")
	}
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("source %q: url is required", s.Name)
	}
	switch s.Kind {
	case KindWebpage, KindYouTube:
	default:
		return fmt.Errorf("source %q: unsupported kind %q", s.Name, s.Kind)
	}
	return nil
}

// LoadConfig loads config from file, with GATHERER_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("llm.base_url", "http://localhost:11434/v1")
	viper.SetDefault("llm.model", "llama3.1")
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.timeout", 120*time.Second)
	viper.SetDefault("llm.max_context_chars", 15000)
	viper.SetDefault("fetch.timeout", 20*time.Second)
	viper.SetDefault("fetch.max_chars", 20000)
	viper.SetDefault("youtube.max_results", 50)
	viper.SetDefault("youtube.timeout", 15*time.Second)
	viper.SetDefault("pipeline.window_days", 7)
	viper.SetDefault("pipeline.article_limit", 10)
	viper.SetDefault("pipeline.pacing_delay", 2*time.Second)
	viper.SetDefault("pipeline.output_path", "articles.jsonl")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("GATHERER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := config.LLM.Validate(); err != nil {
		return nil, err
	}
	for _, src := range config.Sources {
		if err := src.Validate(); err != nil {
			return nil, err
		}
	}
	return &config, nil
}
