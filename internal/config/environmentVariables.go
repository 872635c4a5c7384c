package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//auth - override AUTH_TOKEN in the environment, bypass is for local runs only
	NoAuthBypass = true
	AuthToken    = ""

	//crawler - the docs site we ground answers in
	DocsSeedURL      = "https://docs.crustdata.com/docs/intro"
	CrawlMaxDepth    = 20
	CrawlExcludePath = "/api" //the API reference subtree is huge and duplicated in the docs pages

	//normalizer
	PlainTextWrapWidth = 130

	//chunker - generous overlap helps semantic continuity across chunk borders
	ChunkSize    = 4000 //characters
	ChunkOverlap = 200

	//ingestion
	EmbedBatchSize = 32
	IngestWriters  = 4 //bounded fan-out for per-chunk store writes
	IngestTimeout  = 10 * time.Minute

	//retrieval
	RetrievalTopK = 10

	//TODO:this will differ based on the request and provider
	EmbeddingOutputDimensionality int32 = 768
	VectorCollectionName                = "docs-chunks"

	//the single persisted flag that makes re-triggering ingestion a no-op
	IngestedGateKey = "docsIngested"

	//serverTimeouts - no WriteTimeout, it would cut off long SSE streams
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	ReadTimeout            = 5 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//per external call timeouts, a hung upstream surfaces as UpstreamTimeout
	EmbedCallTimeout    = 30 * time.Second
	VectorQueryTimeout  = 30 * time.Second
	DocumentGetTimeout  = 10 * time.Second
	GenerateCallTimeout = 120 * time.Second

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false //set for https
	QdrantPoolSize = 1     //2-5 is preferred for prod according to documentation

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	GoogleAPIKey         = ""

	MaxAnswerTokens int32 = 1000

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisDocumentStore = 0
	RedisGateStore     = 1
)

// SystemInstructions is the grounding prompt. It carries the citation contract
// ([k] refers to the k-th retrieved passage) and the fixed fallback phrasing for
// questions the context cannot answer.
const SystemInstructions = `You are an expert API support assistant for Crustdata. Your role is to provide accurate,
helpful, and super concise answers about Crustdata's APIs based on the provided documentation context.
Cite search results using [${number}] notation. Only cite the most relevant results that answer the question accurately.
Place these citations at the end of the sentence or paragraph that reference them - do not put them all at the end.
If different results refer to different entities within the same name, write separate answers for each entity.
You must only use information from the provided search results.

Guidelines:
- Focus on information present in the provided context
- Provide API URLs that are specific, actionable answers.
- Explicitly state the API, along with its use and an example if relevant to the question.
- Include relevant code examples when appropriate
- If unsure or if information is not in context, acknowledge limitations
- Use an unbiased and journalistic tone.
- Combine search results together into a coherent answer. Do not repeat text.
- For API answers, provide the API URL instead of cURL examples.

REMEMBER: Do not repeat yourself, always be concise and if there is no relevant information within the context, just say "Hmm, I'm not sure." DON'T TRY TO MAKE UP AN ANSWER.`
