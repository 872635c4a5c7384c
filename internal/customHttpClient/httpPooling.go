package customHttpClient

import (
	"net/http"

	"github.com/akolanti/DocsChat/internal/config"
)

//TODO: make qdrant/llm/embedder reuse connections to avoid latency

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// Transport returns the shared pooled transport. The crawler hits the same
// docs host hundreds of times in one run, so keeping connections warm matters
// there most.
func Transport() *http.Transport {
	return customTransport
}
