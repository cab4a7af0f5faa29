package searchd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/config"
	"github.com/kailas-cloud/searchd/internal/db"
	dbRedis "github.com/kailas-cloud/searchd/internal/db/redis"
	"github.com/kailas-cloud/searchd/internal/domain"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	indexrepo "github.com/kailas-cloud/searchd/internal/repository/index"
	rulerepo "github.com/kailas-cloud/searchd/internal/repository/rule"
	"github.com/kailas-cloud/searchd/internal/usecase/fusion"
	healthuc "github.com/kailas-cloud/searchd/internal/usecase/health"
	recalluc "github.com/kailas-cloud/searchd/internal/usecase/recall"
	"github.com/kailas-cloud/searchd/internal/usecase/rerank"
	searchuc "github.com/kailas-cloud/searchd/internal/usecase/search"
	"github.com/kailas-cloud/searchd/internal/usecase/sortrule"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped in tests.
type searchUseCase interface {
	ExecuteSearch(ctx context.Context, p request.Params) (*searchuc.Response, error)
}

type ruleUseCase interface {
	Get(ctx context.Context, appKey string) (domrule.SortRule, error)
	List(ctx context.Context) []domrule.SortRule
	Put(ctx context.Context, rule domrule.SortRule) error
	Delete(ctx context.Context, appKey string) error
}

// Client is the searchd SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	ruleSvc   ruleUseCase
	healthSvc healthUseCase
	obs       *observer
	release   func()
}

// New creates a Client, connects to Redis and loads persisted sort rules.
// The provided context is used for the readiness check and the rule load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("searchd: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("searchd: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchd: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

// pipelineConfig maps client options onto the service configuration so both
// share the same defaults.
func pipelineConfig(cfg *clientConfig) config.Config {
	var pc config.Config
	pc.Database.KeyPrefix = cfg.keyPrefix
	pc.Search.IndexPrefix = cfg.indexPrefix
	for _, f := range cfg.keywordFields {
		pc.Search.Keyword.Fields = append(pc.Search.Keyword.Fields, config.FieldWeight{Name: f.name, Weight: f.weight})
	}
	pc.Search.Vector.Field = cfg.vectorField
	pc.Search.Hot.Field = cfg.hotField
	pc.Search.Orchestrator.PoolSize = cfg.poolSize
	pc.Search.Orchestrator.PathTimeoutMs = int(cfg.pathTimeout / time.Millisecond)
	pc.ApplyDefaults()
	return pc
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	pc := pipelineConfig(cfg)
	sc := pc.Search
	logger := zap.NewNop()

	fields := make([]db.TextField, len(sc.Keyword.Fields))
	for i, f := range sc.Keyword.Fields {
		fields[i] = db.TextField{Name: f.Name, Weight: f.Weight}
	}
	index := indexrepo.New(store, indexrepo.Config{
		Prefix:        sc.IndexPrefix,
		KeywordFields: fields,
		VectorField:   sc.Vector.Field,
		HotField:      sc.Hot.Field,
	})

	sources := []recalluc.Source{
		recalluc.NewKeywordSource(index, sc.Keyword.TopK, logger),
		recalluc.NewHotSource(index, sc.Hot.TopK, logger),
	}
	var embeddingChecker healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		sources = append(sources, recalluc.NewVectorSource(index, toDomainEmbedder(cfg.embedder), logger))
		if hc, ok := cfg.embedder.(healthuc.EmbeddingChecker); ok {
			embeddingChecker = hc
		}
	}

	recaller, err := recalluc.NewEngine(recalluc.Config{
		PoolSize:    sc.Orchestrator.PoolSize,
		PathTimeout: time.Duration(sc.Orchestrator.PathTimeoutMs) * time.Millisecond,
	}, logger, sources...)
	if err != nil {
		return nil, fmt.Errorf("searchd: create recall engine: %w", err)
	}

	ruleStore := rerank.NewRuleStore()
	ruleSvc := sortrule.New(rulerepo.New(store, pc.Database.KeyPrefix), ruleStore, logger)
	if err := ruleSvc.Load(ctx, nil); err != nil {
		recaller.Release()
		return nil, fmt.Errorf("searchd: load sort rules: %w", err)
	}

	searchSvc := searchuc.New(index, recaller,
		fusion.New(fusion.Config{TopK: sc.Fusion.TopK, RRFK: sc.Fusion.RRFK, RRFTopK: sc.Fusion.RRFTopK}),
		rerank.New(index, ruleStore, logger),
		searchuc.Weights{Keyword: sc.Fusion.KeywordWeight, Hot: sc.Fusion.HotWeight},
	)

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		ruleSvc:   ruleSvc,
		healthSvc: healthuc.New(store, embeddingChecker, logger),
		obs:       obs,
		release:   recaller.Release,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Rules returns the sort-rule administration service.
func (c *Client) Rules() *RuleService {
	return &RuleService{svc: c.ruleSvc, obs: c.obs}
}

func toDomainEmbedder(e Embedder) domain.Embedder {
	return domain.EmbedderFunc(func(ctx context.Context, text string) (domain.EmbeddingResult, error) {
		r, err := e.Embed(ctx, text)
		if err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
		}
		return domain.EmbeddingResult{
			Embedding:    r.Embedding,
			PromptTokens: r.PromptTokens,
			TotalTokens:  r.TotalTokens,
		}, nil
	})
}
