package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the searchd configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Rules     []RuleConfig    `yaml:"rules"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// EmbeddingConfig holds query embedding settings. An empty APIKey disables vector recall.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"`
}

// Enabled reports whether a provider is configured.
func (e EmbeddingConfig) Enabled() bool { return e.APIKey != "" }

// SearchConfig holds the search pipeline settings.
type SearchConfig struct {
	IndexPrefix  string             `yaml:"index_prefix"`
	Keyword      KeywordConfig      `yaml:"keyword"`
	Vector       VectorConfig       `yaml:"vector"`
	Hot          HotConfig          `yaml:"hot"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Fusion       FusionConfig       `yaml:"fusion"`
}

// FieldWeight is a text field and its relevance weight.
type FieldWeight struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// KeywordConfig configures keyword recall.
type KeywordConfig struct {
	Fields []FieldWeight `yaml:"fields"`
	TopK   int           `yaml:"top_k"`
}

// VectorConfig configures vector recall.
type VectorConfig struct {
	Field string `yaml:"field"`
}

// HotConfig configures hot recall.
type HotConfig struct {
	Field string `yaml:"field"`
	TopK  int    `yaml:"top_k"`
}

// OrchestratorConfig bounds the recall fan-out.
type OrchestratorConfig struct {
	PoolSize      int `yaml:"pool_size"`
	PathTimeoutMs int `yaml:"path_timeout_ms"`
}

// FusionConfig configures candidate fusion.
type FusionConfig struct {
	KeywordWeight float64 `yaml:"keyword_weight"`
	HotWeight     float64 `yaml:"hot_weight"`
	TopK          int     `yaml:"top_k"`
	RRFK          int     `yaml:"rrf_k"`
	RRFTopK       int     `yaml:"rrf_top_k"` // 0 = no truncation
}

// RuleConfig seeds a tenant sort rule.
type RuleConfig struct {
	ID      string         `yaml:"id"`
	AppKey  string         `yaml:"app_key"`
	Enabled *bool          `yaml:"enabled"` // default true
	Factors []FactorConfig `yaml:"factors"`
}

// IsEnabled reports the rule's enabled flag, defaulting to true.
func (r RuleConfig) IsEnabled() bool { return r.Enabled == nil || *r.Enabled }

// FactorConfig is one scoring factor of a seeded rule.
type FactorConfig struct {
	Field  string            `yaml:"field"`
	Weight float64           `yaml:"weight"`
	Mode   string            `yaml:"mode"`
	Params map[string]string `yaml:"params"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "searchd:"
	}

	c.applyEmbeddingDefaults()
	c.applySearchDefaults()
}

func (c *Config) applyEmbeddingDefaults() {
	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = "openai"
	}
	if e.Model == "" {
		e.Model = "text-embedding-3-small"
	}
	if e.TimeoutMs <= 0 {
		e.TimeoutMs = 500
	}
	if e.CacheTTLSec <= 0 {
		e.CacheTTLSec = 86400
	}
}

func (c *Config) applySearchDefaults() {
	s := &c.Search
	if s.IndexPrefix == "" {
		s.IndexPrefix = "products"
	}
	if len(s.Keyword.Fields) == 0 {
		s.Keyword.Fields = []FieldWeight{
			{Name: "title", Weight: 2},
			{Name: "description", Weight: 1},
			{Name: "content", Weight: 1},
		}
	}
	if s.Keyword.TopK <= 0 {
		s.Keyword.TopK = 100
	}
	if s.Vector.Field == "" {
		s.Vector.Field = "embedding"
	}
	if s.Hot.Field == "" {
		s.Hot.Field = "sales"
	}
	if s.Hot.TopK <= 0 {
		s.Hot.TopK = 50
	}
	if s.Orchestrator.PoolSize == 0 {
		s.Orchestrator.PoolSize = 3
	}
	if s.Orchestrator.PathTimeoutMs <= 0 {
		s.Orchestrator.PathTimeoutMs = 800
	}
	if s.Fusion.KeywordWeight == 0 {
		s.Fusion.KeywordWeight = 0.5
	}
	if s.Fusion.HotWeight == 0 {
		s.Fusion.HotWeight = 0.2
	}
	if s.Fusion.TopK <= 0 {
		s.Fusion.TopK = 100
	}
	if s.Fusion.RRFK <= 0 {
		s.Fusion.RRFK = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.Orchestrator.PoolSize < 1 {
		return fmt.Errorf("search.orchestrator.pool_size must be at least 1, got %d", c.Search.Orchestrator.PoolSize)
	}
	if c.Search.Fusion.KeywordWeight < 0 || c.Search.Fusion.HotWeight < 0 {
		return fmt.Errorf("search.fusion weights must be non-negative")
	}
	for i, f := range c.Search.Keyword.Fields {
		if f.Name == "" {
			return fmt.Errorf("search.keyword.fields[%d].name is required", i)
		}
	}
	for i, r := range c.Rules {
		if r.AppKey == "" {
			return fmt.Errorf("rules[%d].app_key is required", i)
		}
		for j, f := range r.Factors {
			switch f.Mode {
			case "", "linear", "log":
				// ok
			default:
				return fmt.Errorf("rules[%d].factors[%d].mode must be \"linear\" or \"log\", got %q", i, j, f.Mode)
			}
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
