package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IsProd       = false
	LogLevelProd = slog.LevelInfo

	TraceIDKey   = "traceId"
	SessionIDHdr = "X-Session-Id"

	RateLimitPerSecond  = 2
	BurstRatePerSecond  = 5
	NoAuthBypass        = true //flip once a gateway issues tokens
	AuthToken           = ""

	//retrieval knobs - these mirror the retriever defaults the frontend was tuned against
	RetrieverTopK      = 6
	RetrieverMinScore  = 0.5
	DenseWeight        = 0.5
	LexicalWeight      = 0.5
	CacheSimilarityCutoff = 0.97

	//chunking
	ChunkTokenTarget  = 300
	ChunkTokenOverlap = 30

	//embeddings
	EmbeddingOutputDimensionality int32 = 768
	GoogleEmbeddingModel                = "gemini-embedding-001"

	//llm
	GeminiModelName  = "gemini-2.5-flash-lite-preview-09-2025"
	OpenAIModelName  = "gpt-4o-mini"
	ModelTemperature = 0.2

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":8000"

	//per-call budgets on the external collaborators
	EmbeddingTimeout = 30 * time.Second
	AnswerTimeout    = 60 * time.Second
	ParserTimeout    = 45 * time.Second
	PageExtractTimeout = 10 * time.Second

	//vectorDB
	QdrantHost     = ""
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisSessionDB  = 0
	RedisSessionTTL = 24 * time.Hour

	//parser client connection pooling
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	MaxUploadBytes = 32 << 20
)

// Env returns the named environment variable or the fallback when unset.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
