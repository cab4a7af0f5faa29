package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/config"
	"github.com/kailas-cloud/searchd/internal/db"
	dbRedis "github.com/kailas-cloud/searchd/internal/db/redis"
	"github.com/kailas-cloud/searchd/internal/domain"
	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
	logpkg "github.com/kailas-cloud/searchd/internal/logger"
	"github.com/kailas-cloud/searchd/internal/metrics"
	"github.com/kailas-cloud/searchd/internal/repository/embcache"
	indexrepo "github.com/kailas-cloud/searchd/internal/repository/index"
	rulerepo "github.com/kailas-cloud/searchd/internal/repository/rule"
	chiTransport "github.com/kailas-cloud/searchd/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/searchd/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/searchd/internal/usecase/embedding"
	"github.com/kailas-cloud/searchd/internal/usecase/fusion"
	healthuc "github.com/kailas-cloud/searchd/internal/usecase/health"
	recalluc "github.com/kailas-cloud/searchd/internal/usecase/recall"
	"github.com/kailas-cloud/searchd/internal/usecase/rerank"
	searchuc "github.com/kailas-cloud/searchd/internal/usecase/search"
	"github.com/kailas-cloud/searchd/internal/usecase/sortrule"
	"github.com/kailas-cloud/searchd/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchd",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Explicit registration, no init().
	metrics.Register()

	// Repositories
	keywordFields := make([]db.TextField, len(cfg.Search.Keyword.Fields))
	for i, f := range cfg.Search.Keyword.Fields {
		keywordFields[i] = db.TextField{Name: f.Name, Weight: f.Weight}
	}
	index := indexrepo.New(store, indexrepo.Config{
		Prefix:        cfg.Search.IndexPrefix,
		KeywordFields: keywordFields,
		VectorField:   cfg.Search.Vector.Field,
		HotField:      cfg.Search.Hot.Field,
	})
	rules := rulerepo.New(store, cfg.Database.KeyPrefix)

	// Sort rules: config seeds, then persisted overrides.
	ruleStore := rerank.NewRuleStore()
	ruleSvc := sortrule.New(rules, ruleStore, logger)
	seeds, err := seedRules(cfg.Rules)
	if err != nil {
		logger.Fatal("Invalid seed sort rules", zap.Error(err))
	}
	if err := ruleSvc.Load(ctx, seeds); err != nil {
		logger.Warn("Persisted sort rules unavailable, using seeds only", zap.Error(err))
	}

	// Recall paths
	sources := []recalluc.Source{
		recalluc.NewKeywordSource(index, cfg.Search.Keyword.TopK, logger),
		recalluc.NewHotSource(index, cfg.Search.Hot.TopK, logger),
	}
	var embeddingChecker healthuc.EmbeddingChecker
	if cfg.Embedding.Enabled() {
		provider, queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Database.KeyPrefix, store, logger)
		sources = append(sources, recalluc.NewVectorSource(index, queryEmbedder, logger))
		embeddingChecker = provider
		logger.Info("Query embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Info("Embedding provider not configured, vector recall disabled")
	}

	recaller, err := recalluc.NewEngine(recalluc.Config{
		PoolSize:    cfg.Search.Orchestrator.PoolSize,
		PathTimeout: time.Duration(cfg.Search.Orchestrator.PathTimeoutMs) * time.Millisecond,
	}, logger, sources...)
	if err != nil {
		logger.Fatal("Failed to create recall engine", zap.Error(err))
	}
	defer recaller.Release()

	fuser := fusion.New(fusion.Config{
		TopK:    cfg.Search.Fusion.TopK,
		RRFK:    cfg.Search.Fusion.RRFK,
		RRFTopK: cfg.Search.Fusion.RRFTopK,
	})
	reranker := rerank.New(index, ruleStore, logger)
	searchSvc := searchuc.New(index, recaller, fuser, reranker, searchuc.Weights{
		Keyword: cfg.Search.Fusion.KeywordWeight,
		Hot:     cfg.Search.Fusion.HotWeight,
	})
	healthSvc := healthuc.New(store, embeddingChecker, logger)

	server := chiTransport.NewServer(searchSvc, ruleSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the query embedder chain: OpenAI -> Instrumented -> Cached -> Instruction.
// The provider is returned separately for health checks.
func buildEmbedder(
	cfg config.EmbeddingConfig, keyPrefix string, store db.Store, logger *zap.Logger,
) (*openaiEmb.Embedder, domain.Embedder) {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		base, cfg.Provider, cfg.Model, time.Duration(cfg.TimeoutMs)*time.Millisecond, logger,
	)

	embedder = embcache.New(embedder, store, embcache.Config{
		Prefix: keyPrefix,
		Model:  cfg.Model,
		TTL:    time.Duration(cfg.CacheTTLSec) * time.Second,
	}, metrics.QueryEmbeddingCacheTotal, logger)

	// Instruction prefix is outermost so the cache key includes it.
	return base, domain.WithQueryInstruction(embedder, cfg.QueryInstruction)
}

func seedRules(rcs []config.RuleConfig) ([]domrule.SortRule, error) {
	out := make([]domrule.SortRule, 0, len(rcs))
	for _, rc := range rcs {
		factors := make([]domrule.Factor, 0, len(rc.Factors))
		for _, fc := range rc.Factors {
			f, err := domrule.NewFactor(fc.Field, fc.Weight, domrule.Mode(fc.Mode), fc.Params)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", rc.ID, err)
			}
			factors = append(factors, f)
		}
		id := rc.ID
		if id == "" {
			id = rc.AppKey + "-default"
		}
		r, err := domrule.New(id, rc.AppKey, factors, rc.IsEnabled())
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
