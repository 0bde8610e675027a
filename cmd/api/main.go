// @title           Trade Document QA API
// @version         1.0
// @description     Session-scoped document question answering over trade-finance paperwork.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/anmkhn/tradedoc-qa/internal/config"
	"github.com/anmkhn/tradedoc-qa/internal/guidelines"
	"github.com/anmkhn/tradedoc-qa/internal/handlers"
	"github.com/anmkhn/tradedoc-qa/internal/parser"
	"github.com/anmkhn/tradedoc-qa/internal/rag"
	"github.com/anmkhn/tradedoc-qa/internal/rag/embedding/google"
	"github.com/anmkhn/tradedoc-qa/internal/rag/llm"
	"github.com/anmkhn/tradedoc-qa/internal/rag/llm/gemini"
	"github.com/anmkhn/tradedoc-qa/internal/rag/llm/openaichat"
	"github.com/anmkhn/tradedoc-qa/internal/rag/retrieve"
	"github.com/anmkhn/tradedoc-qa/internal/rag/vectordb/qdrantdb"
	"github.com/anmkhn/tradedoc-qa/internal/server"
	"github.com/anmkhn/tradedoc-qa/internal/session"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

var listenAddr string

func main() {

	logging.Init()
	var logger = logging.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//session state: redis when reachable, in-memory otherwise
	var store session.Store
	if redisStore := session.GetRedisStore(serviceContext); redisStore != nil {
		store = redisStore
	} else {
		logger.Warn("Redis is offline, using the in-memory session store")
		store = session.NewMemory()
	}

	vectorDB, err := qdrantdb.NewClient(serviceContext)
	if err != nil {
		logger.Error("Qdrant failed to initialize", "error", err)
		return
	}

	googleAPIKey := config.Env("GOOGLE_API_KEY", "")
	embedder, err := google.NewClient(serviceContext, config.GoogleEmbeddingModel, googleAPIKey)
	if err != nil {
		logger.Error("Embedding client failed to initialize", "error", err)
		return
	}

	provider, err := buildProvider(serviceContext, googleAPIKey)
	if err != nil {
		logger.Error("LLM provider failed to initialize", "error", err)
		return
	}

	guidelineStore := guidelines.NewStore()

	ragService := rag.NewService(rag.Deps{
		Store:      store,
		Index:      vectorDB,
		Cache:      vectorDB,
		Embedder:   embedder,
		Provider:   provider,
		Retriever:  retrieve.New(vectorDB, config.RetrieverTopK, config.RetrieverMinScore, config.DenseWeight, config.LexicalWeight),
		Parser:     parser.NewClient(),
		Guidelines: guidelineStore,
	})

	handlers.InitHandlers(ragService, guidelineStore)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// buildProvider selects the answer model from LLM_PROVIDER. Gemini is the
// default; "openai" switches to an OpenAI-compatible chat endpoint.
func buildProvider(ctx context.Context, googleAPIKey string) (llm.Provider, error) {
	if config.Env("LLM_PROVIDER", "gemini") == "openai" {
		return openaichat.NewClient(
			config.Env("OPENAI_MODEL", config.OpenAIModelName),
			config.Env("OPENAI_API_KEY", ""),
			config.Env("OPENAI_BASE_URL", ""),
		), nil
	}
	return gemini.NewClient(ctx, config.GeminiModelName, googleAPIKey)
}
