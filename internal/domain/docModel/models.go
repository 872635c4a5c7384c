package docModel

import "errors"

// Document is one stored passage of the ingested corpus. Written once during
// ingestion, never mutated. Metadata always carries the source URL and the
// chunk's position within it.
type Document struct {
	Id       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// metadata keys set by the ingestion pipeline
const (
	MetaSourceURL  = "source_url"
	MetaChunkIndex = "chunk_index"
	MetaCrawlDepth = "crawl_depth"
)

// Retrieved is a Document together with its 1-based similarity rank for one
// request. The rank is what [k] citations in the answer refer to.
type Retrieved struct {
	Rank     int
	Document Document
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. A request carries the prior turns plus the
// current user question as the last entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ErrUpstreamTimeout marks a capability call that hit its deadline. Retryable,
// as opposed to a hard upstream failure.
var ErrUpstreamTimeout = errors.New("upstream call timed out")
