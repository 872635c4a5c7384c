// @title           Docs Chat API
// @version         1.0
// @description     This API serves a crawled documentation corpus as a chat assistant with streamed, cited answers
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/data/store"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/handlers"
	"github.com/akolanti/DocsChat/internal/rag"
	"github.com/akolanti/DocsChat/internal/rag/crawler"
	"github.com/akolanti/DocsChat/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocsChat/internal/rag/ingest"
	"github.com/akolanti/DocsChat/internal/rag/llm/gemini"
	"github.com/akolanti/DocsChat/internal/rag/retrieve"
	"github.com/akolanti/DocsChat/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocsChat/internal/server"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//durable stores, with in-memory fallbacks for local runs without redis
	redisDocs := store.GetRedisDocumentStore(serviceContext)
	redisGate := store.GetRedisGateStore(serviceContext)

	var documentStore docModel.DocumentStore = redisDocs
	var gateStore docModel.GateStore = redisGate
	if redisDocs == nil || redisGate == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		documentStore = store.InitInMemoryDocumentStore()
		gateStore = store.InitInMemoryGateStore()
	}

	vectorIndex := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel)
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName)

	if vectorIndex == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorIndex != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	docsCrawler := crawler.New(config.CrawlMaxDepth, []string{config.CrawlExcludePath})
	pipeline := ingest.NewPipeline(docsCrawler, embeddingService, vectorIndex, documentStore, gateStore)
	retriever := retrieve.NewOrchestrator(embeddingService, vectorIndex, documentStore)

	ragService := rag.NewService(pipeline, retriever, llmProvider)
	handlers.InitHandlers(ragService)

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
