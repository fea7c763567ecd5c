// Package engine wires the ingestion, indexing, retrieval and answering
// layers into one facade the HTTP handlers and the TUI talk to.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"policyrag/app/agent"
	"policyrag/chunker"
	"policyrag/config"
	"policyrag/index"
	"policyrag/loader"
	"policyrag/model"
	"policyrag/store"
	"policyrag/types"
)

const msgNotReady = "The knowledge base is still loading. Please try again in a moment."

// Engine owns the corpus lifecycle. Build and Rebuild replace the active
// retriever under a write lock; queries read it under a read lock, so
// in-flight questions finish against the index they started with.
type Engine struct {
	cfg      config.Config
	loader   *loader.Loader
	chunker  *chunker.Chunker
	builder  *index.Builder
	embedder model.Embedder
	cache    store.CacheStore
	governor *model.RateGovernor
	synonyms config.Synonyms
	agents   map[bool]*agent.Agent
	logger   *slog.Logger

	mu         sync.RWMutex
	retriever  *index.Retriever
	chunkCount int
	builtAt    time.Time
}

// Status is a point-in-time snapshot for the health endpoints.
type Status struct {
	Ready         bool       `json:"ready"`
	Mode          index.Mode `json:"mode,omitempty"`
	Chunks        int        `json:"chunks"`
	BuiltAt       time.Time  `json:"built_at,omitempty"`
	SinceLastCall string     `json:"since_last_call,omitempty"`
}

// New assembles an engine from configuration. The cache backend, the
// embedding client and both generators are picked here so the rest of
// the code only sees interfaces.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var cache store.CacheStore
	switch cfg.CacheBackend {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("init postgres cache: %w", err)
		}
		cache = pg
	default:
		cache = store.NewFileStore(cfg.CacheFile)
	}

	synonyms, err := config.LoadSynonyms(cfg.SynonymsFile)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}

	embedder := model.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel)
	governor := model.NewRateGovernor(cfg.MinRequestInterval)

	agents := make(map[bool]*agent.Agent)
	if cfg.GeminiAPIKey != "" {
		remote := model.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxOutputTokens, cfg.RequestTimeout)
		agents[false] = agent.New(remote, governor, cfg.MaxContextToks, cfg.RetryAttempts, cfg.RetryUnit, logger)
	}
	local := model.NewOllamaGenerator(cfg.LocalLLMURL, cfg.LocalLLMModel, cfg.RequestTimeout)
	agents[true] = agent.New(local, governor, cfg.MaxContextToks, cfg.RetryAttempts, cfg.RetryUnit, logger)
	if agents[false] == nil {
		logger.Warn("no Gemini API key set, all answers use the local model")
		agents[false] = agents[true]
	}

	return &Engine{
		cfg:      cfg,
		loader:   loader.New(logger),
		chunker:  chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		builder:  index.NewBuilder(embedder, cache, logger),
		embedder: embedder,
		cache:    cache,
		governor: governor,
		synonyms: synonyms,
		agents:   agents,
		logger:   logger,
	}, nil
}

// Build loads the corpus directory, chunks it and installs a fresh
// retriever. Safe to call concurrently with queries.
func (e *Engine) Build(ctx context.Context) error {
	docs, err := e.loader.Load(e.cfg.CorpusDir)
	if err != nil {
		return err
	}
	chunks := e.chunker.Split(docs)
	idx, err := e.builder.Build(ctx, chunks)
	if err != nil {
		return err
	}
	retriever := index.NewRetriever(idx, e.embedder, e.synonyms, e.cfg.MinSimilarity, e.cfg.TopK, e.logger)

	e.mu.Lock()
	e.retriever = retriever
	e.chunkCount = len(chunks)
	e.builtAt = time.Now()
	e.mu.Unlock()

	e.logger.Info("index ready", "mode", idx.Mode, "documents", len(docs), "chunks", len(chunks))
	return nil
}

// Rebuild drops the persisted embedding cache and rebuilds from the
// corpus directory, so the next index always recomputes.
func (e *Engine) Rebuild(ctx context.Context) error {
	if err := e.cache.Delete(ctx); err != nil {
		return fmt.Errorf("drop embedding cache: %w", err)
	}
	return e.Build(ctx)
}

// Answer retrieves context for the query and synthesizes a typed answer.
// useLocal routes generation to the local model instead of the remote one.
func (e *Engine) Answer(ctx context.Context, query string, useLocal bool) types.Answer {
	ag := e.agents[useLocal]

	if strings.TrimSpace(query) == "" {
		return ag.Answer(ctx, query, nil)
	}

	e.mu.RLock()
	retriever := e.retriever
	e.mu.RUnlock()
	if retriever == nil {
		return types.Answer{Kind: types.AnswerError, Text: msgNotReady}
	}

	retrieved := retriever.Retrieve(ctx, query, e.cfg.TopK)
	return ag.Answer(ctx, query, retrieved)
}

// Status reports index readiness and outbound-call spacing.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := Status{
		Ready:  e.retriever != nil,
		Chunks: e.chunkCount,
	}
	if e.retriever != nil {
		st.Mode = e.retriever.Mode()
		st.BuiltAt = e.builtAt
	}
	if since := e.governor.SinceLastCall(); since >= 0 {
		st.SinceLastCall = since.Round(time.Millisecond).String()
	}
	return st
}

// CorpusDir exposes the configured corpus location for the admin upload
// handler.
func (e *Engine) CorpusDir() string {
	return e.cfg.CorpusDir
}

// Governor exposes the shared outbound-call governor so the speech layer
// dispatches under the same spacing as the generative calls.
func (e *Engine) Governor() *model.RateGovernor {
	return e.governor
}
