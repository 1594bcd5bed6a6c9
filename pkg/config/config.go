package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Reddit RedditConfig `yaml:"reddit" json:"reddit" jsonschema:"description=Reddit fetching configuration"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for persona generation"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Link-post content extraction configuration"`

	Report struct {
		OutputDir string `yaml:"output_dir" json:"output_dir" jsonschema:"default=output,description=Directory for generated persona reports"`
	} `yaml:"report" json:"report" jsonschema:"description=Report output configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:personascope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Persona archive database configuration"`

	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Read-only persona server configuration"`
}

// RedditConfig holds settings for fetching profile content
type RedditConfig struct {
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for reddit requests"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP timeout per listing request"`
	Delay     time.Duration `yaml:"delay" json:"delay" jsonschema:"default=2s,description=Pause between category fetches"`
	MaxPosts  int           `yaml:"max_posts" json:"max_posts" jsonschema:"default=50,description=Maximum posts and comments per profile"`
}

// LLMConfig holds LLM configuration for persona generation
type LLMConfig struct {
	Endpoint       string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey         string        `yaml:"api_key" json:"api_key" jsonschema:"required,description=API key (can use environment variable)"`
	Model          string        `yaml:"model" json:"model" jsonschema:"required,description=Model name (e.g. gpt-4o-mini or llama-3.3-70b-versatile)"`
	Temperature    float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.1,description=Temperature for response generation"`
	MaxTokens      int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=4096,description=Maximum tokens in response"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Request timeout"`
	Retries        int           `yaml:"retries" json:"retries" jsonschema:"default=3,description=Transport-level retries on transient failure"`
	MaxPromptChars int           `yaml:"max_prompt_chars" json:"max_prompt_chars" jsonschema:"default=48000,description=Upper bound on the formatted content block"`
	SystemPrompt   string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override (optional)"`
}

// ExtractionConfig holds link-post content extraction settings
type ExtractionConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Extract text of link posts with empty bodies"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout per link"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Personascope/1.0,description=User agent for extraction requests"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=100,description=Minimum extracted text length to consider valid"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for reddit
	if cfg.Reddit.UserAgent == "" {
		cfg.Reddit.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Reddit.Timeout == 0 {
		cfg.Reddit.Timeout = 30 * time.Second
	}
	if cfg.Reddit.Delay == 0 {
		cfg.Reddit.Delay = 2 * time.Second
	}
	if cfg.Reddit.MaxPosts == 0 {
		cfg.Reddit.MaxPosts = 50
	}

	// set defaults for LLM
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 4096
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.LLM.Retries == 0 {
		cfg.LLM.Retries = 3
	}
	if cfg.LLM.MaxPromptChars == 0 {
		cfg.LLM.MaxPromptChars = 48000
	}

	// set defaults for extraction
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 30 * time.Second
	}
	if cfg.Extraction.UserAgent == "" {
		cfg.Extraction.UserAgent = "Personascope/1.0"
	}
	if cfg.Extraction.MinTextLength == 0 {
		cfg.Extraction.MinTextLength = 100
	}

	// set defaults for report
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "output"
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:personascope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// api key must be present before any network activity happens
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.Retries < 1 {
		return fmt.Errorf("llm.retries must be at least 1")
	}

	// validate reddit config
	if cfg.Reddit.MaxPosts < 2 {
		return fmt.Errorf("reddit.max_posts must be at least 2")
	}
	if cfg.Reddit.Timeout < time.Second {
		return fmt.Errorf("reddit.timeout must be at least 1 second")
	}

	// validate extraction config
	if cfg.Extraction.Enabled {
		if cfg.Extraction.Timeout < time.Second {
			return fmt.Errorf("extraction timeout must be at least 1 second")
		}
		if cfg.Extraction.MinTextLength < 0 {
			return fmt.Errorf("extraction min_text_length must be non-negative")
		}
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetRedditConfig returns reddit fetching configuration
func (c *Config) GetRedditConfig() RedditConfig {
	return c.Reddit
}

// GetExtractionConfig returns link-post extraction configuration
func (c *Config) GetExtractionConfig() ExtractionConfig {
	return c.Extraction
}

// GetLLMConfig returns LLM configuration
func (c *Config) GetLLMConfig() LLMConfig {
	return c.LLM
}
