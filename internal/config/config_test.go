package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Search.Orchestrator.PoolSize != 3 || cfg.Search.Orchestrator.PathTimeoutMs != 800 {
		t.Errorf("orchestrator defaults: %+v", cfg.Search.Orchestrator)
	}
	if cfg.Search.Fusion.KeywordWeight != 0.5 || cfg.Search.Fusion.HotWeight != 0.2 {
		t.Errorf("fusion weight defaults: %+v", cfg.Search.Fusion)
	}
	if cfg.Search.Fusion.TopK != 100 || cfg.Search.Fusion.RRFK != 60 || cfg.Search.Fusion.RRFTopK != 0 {
		t.Errorf("fusion defaults: %+v", cfg.Search.Fusion)
	}
	if len(cfg.Search.Keyword.Fields) != 3 || cfg.Search.Keyword.Fields[0].Name != "title" {
		t.Errorf("keyword field defaults: %+v", cfg.Search.Keyword.Fields)
	}
	if cfg.Database.KeyPrefix != "searchd:" {
		t.Errorf("key prefix = %q", cfg.Database.KeyPrefix)
	}
	if cfg.Embedding.Enabled() {
		t.Error("expected embedding disabled without api key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"bad pool", func(c *Config) { c.Search.Orchestrator.PoolSize = -1 }, "pool_size"},
		{"negative weight", func(c *Config) { c.Search.Fusion.HotWeight = -0.1 }, "weights"},
		{"rule without app key", func(c *Config) {
			c.Rules = []RuleConfig{{ID: "r1"}}
		}, "rules[0].app_key"},
		{"bad factor mode", func(c *Config) {
			c.Rules = []RuleConfig{{ID: "r1", AppKey: "shop", Factors: []FactorConfig{{Field: "sales", Mode: "sqrt"}}}}
		}, `rules[0].factors[0].mode must be "linear" or "log", got "sqrt"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("SEARCHD_TEST_REDIS", "redis:6380")

	cfg, err := Parse([]byte(`
http:
  port: 9000
database:
  addrs: ["${SEARCHD_TEST_REDIS}"]
embedding:
  api_key: "${SEARCHD_TEST_MISSING:-}"
  model: "${SEARCHD_TEST_MODEL:-bge-m3}"
rules:
  - id: ecommerce-default
    app_key: shop
    factors:
      - field: sales
        weight: 0.4
        mode: log
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Addrs[0] != "redis:6380" {
		t.Errorf("addr = %q", cfg.Database.Addrs[0])
	}
	if cfg.Embedding.Model != "bge-m3" || cfg.Embedding.Enabled() {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if len(cfg.Rules) != 1 || !cfg.Rules[0].IsEnabled() || cfg.Rules[0].Factors[0].Mode != "log" {
		t.Errorf("rules = %+v", cfg.Rules)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http:\n  port: 0\n")); err == nil {
		t.Fatal("expected validation error")
	}
}
