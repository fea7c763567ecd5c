// Package config collects the service configuration from environment
// variables (loaded from .env by the cmd packages) and from an optional
// YAML synonym table used by the keyword retriever.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string

	// Corpus ingestion.
	CorpusDir    string
	ChunkSize    int
	ChunkOverlap int

	// Embedding cache. CacheBackend is "file" or "postgres".
	CacheBackend string
	CacheFile    string
	PostgresDSN  string

	// Retrieval.
	TopK          int
	MinSimilarity float64
	SynonymsFile  string

	// Embedding backend.
	OllamaURL      string
	EmbeddingModel string

	// Generative model.
	GeminiAPIKey    string
	GeminiModel     string
	LocalLLMURL     string
	LocalLLMModel   string
	MaxOutputTokens int
	MaxContextToks  int
	RequestTimeout  time.Duration

	// Outbound call discipline.
	MinRequestInterval time.Duration
	RetryAttempts      int
	RetryUnit          time.Duration

	// Speech layer.
	AudioDir   string
	TTSURL     string
	RhubarbBin string

	AdminKey string
}

// FromEnv builds a Config from the environment, applying the defaults the
// original deployment used (1000/200 chunking, top-3 retrieval, 0.1
// similarity floor, 3s request spacing, 3 attempts with 5s backoff steps).
func FromEnv() Config {
	return Config{
		ListenAddr: envStr("SERVER_ADDR", ":5001"),

		CorpusDir:    envStr("CORPUS_DIR", "data"),
		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 200),

		CacheBackend: envStr("CACHE_BACKEND", "file"),
		CacheFile:    envStr("CACHE_FILE", "document_embeddings.gob"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),

		TopK:          envInt("RETRIEVE_TOP_K", 3),
		MinSimilarity: envFloat("MIN_SIMILARITY", 0.1),
		SynonymsFile:  os.Getenv("SYNONYMS_FILE"),

		OllamaURL:      envStr("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel: envStr("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),

		GeminiAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:     envStr("GEMINI_MODEL", "gemini-2.0-flash"),
		LocalLLMURL:     envStr("LLM_URL", "http://localhost:11434/api/generate"),
		LocalLLMModel:   envStr("LLM_MODEL", "llama3.2"),
		MaxOutputTokens: envInt("MAX_OUTPUT_TOKENS", 500),
		MaxContextToks:  envInt("MAX_CONTEXT_TOKENS", 4000),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 30*time.Second),

		MinRequestInterval: envDuration("MIN_REQUEST_INTERVAL", 3*time.Second),
		RetryAttempts:      envInt("RETRY_ATTEMPTS", 3),
		RetryUnit:          envDuration("RETRY_UNIT", 5*time.Second),

		AudioDir:   envStr("AUDIO_DIR", "audios"),
		TTSURL:     envStr("TTS_URL", "https://translate.google.com/translate_tts"),
		RhubarbBin: os.Getenv("RHUBARB_BIN"),

		AdminKey: envStr("ADMIN_KEY", "admin123"),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
