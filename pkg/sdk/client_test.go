package searchd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestToDomainEmbedder(t *testing.T) {
	called := false
	mock := &mockEmbedder{
		fn: func(_ context.Context, text string) (EmbeddingResult, error) {
			called = true
			return EmbeddingResult{
				Embedding:    []float32{1, 2, 3},
				PromptTokens: 5,
				TotalTokens:  10,
			}, nil
		},
	}

	adapter := toDomainEmbedder(mock)
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 {
		t.Errorf("embedding len = %d, want 3", len(result.Embedding))
	}
	if result.TotalTokens != 10 {
		t.Errorf("total tokens = %d, want 10", result.TotalTokens)
	}
}

func TestToDomainEmbedder_Error(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	adapter := toDomainEmbedder(mock)
	_, err := adapter.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis("localhost:6379", "secret").apply(cfg)
	if cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q, want localhost:6379", cfg.addrs[0])
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	WithIndexPrefix("catalog").apply(cfg)
	WithKeyPrefix("shop:").apply(cfg)
	WithKeywordField("name", 3).apply(cfg)
	WithKeywordField("brand", 1).apply(cfg)
	WithVectorField("vec").apply(cfg)
	WithHotField("views").apply(cfg)
	WithRecallPool(5, 200*time.Millisecond).apply(cfg)

	if cfg.indexPrefix != "catalog" || cfg.keyPrefix != "shop:" {
		t.Errorf("prefixes = (%q, %q)", cfg.indexPrefix, cfg.keyPrefix)
	}
	if len(cfg.keywordFields) != 2 || cfg.keywordFields[0].name != "name" {
		t.Errorf("keywordFields = %+v", cfg.keywordFields)
	}
	if cfg.hotField != "views" {
		t.Errorf("hotField = %q", cfg.hotField)
	}
	if cfg.poolSize != 5 || cfg.pathTimeout != 200*time.Millisecond {
		t.Errorf("pool = (%d, %v)", cfg.poolSize, cfg.pathTimeout)
	}

	cfg2 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg2)
	if cfg2.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg2)
	if cfg2.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestPipelineConfig_Defaults(t *testing.T) {
	pc := pipelineConfig(&clientConfig{})

	if pc.Search.IndexPrefix != "products" {
		t.Errorf("IndexPrefix = %q, want products", pc.Search.IndexPrefix)
	}
	if pc.Database.KeyPrefix != "searchd:" {
		t.Errorf("KeyPrefix = %q, want searchd:", pc.Database.KeyPrefix)
	}
	if len(pc.Search.Keyword.Fields) != 3 {
		t.Errorf("keyword fields = %d, want 3", len(pc.Search.Keyword.Fields))
	}
	if pc.Search.Orchestrator.PoolSize != 3 || pc.Search.Orchestrator.PathTimeoutMs != 800 {
		t.Errorf("orchestrator = %+v", pc.Search.Orchestrator)
	}
	if pc.Search.Fusion.KeywordWeight != 0.5 || pc.Search.Fusion.HotWeight != 0.2 {
		t.Errorf("fusion weights = %+v", pc.Search.Fusion)
	}
}

func TestPipelineConfig_Overrides(t *testing.T) {
	cfg := &clientConfig{}
	WithKeywordField("name", 3).apply(cfg)
	WithRecallPool(4, 250*time.Millisecond).apply(cfg)

	pc := pipelineConfig(cfg)
	if len(pc.Search.Keyword.Fields) != 1 || pc.Search.Keyword.Fields[0].Name != "name" {
		t.Errorf("keyword fields = %+v", pc.Search.Keyword.Fields)
	}
	if pc.Search.Orchestrator.PoolSize != 4 || pc.Search.Orchestrator.PathTimeoutMs != 250 {
		t.Errorf("orchestrator = %+v", pc.Search.Orchestrator)
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestWithEmbedder(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, nil
		},
	}
	cfg := &clientConfig{}
	WithEmbedder(mock).apply(cfg)
	if cfg.embedder == nil {
		t.Error("expected non-nil embedder")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("search", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "searchd_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("searchd_sdk_operations_total not found")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("first newObserver: %v", err)
	}
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
}

func TestOperationStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, statusOK},
		{fmt.Errorf("search: %w", ErrInvalidRequest), statusInvalid},
		{ErrRuleNotFound, statusInvalid},
		{errors.New("redis down"), statusError},
	}
	for _, tc := range tests {
		if got := operationStatus(tc.err); got != tc.want {
			t.Errorf("operationStatus(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}
