package chunker

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/akolanti/DocsChat/internal/domain/docModel"
)

// Split cuts text into fixed windows of size chars where each window repeats
// the last overlap chars of the previous one. Dropping the first overlap chars
// of every chunk after the first reconstructs the input exactly, so nothing is
// lost or duplicated beyond the declared overlap.
//
// For overlap < size < len(text) this yields ceil((L-O)/(size-O)) chunks.
// Text at or under size comes back as a single chunk.
func Split(text string, size int, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 || overlap < 0 || overlap >= size {
		//nonsense parameters, refuse to lose data
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end - overlap
	}
}

// ChunkPage splits one normalized page into persisted documents, tagging each
// with its source URL, crawl depth and position. Ids are deterministic UUIDs
// derived from (source URL, chunk index) so re-running ingestion writes the
// same ids with the same content - duplicate writes stay harmless.
func ChunkPage(sourceURL string, depth int, text string, size int, overlap int) []docModel.Document {
	parts := Split(text, size, overlap)

	docs := make([]docModel.Document, 0, len(parts))
	for i, content := range parts {
		docs = append(docs, docModel.Document{
			Id:      ChunkID(sourceURL, i),
			Content: content,
			Metadata: map[string]string{
				docModel.MetaSourceURL:  sourceURL,
				docModel.MetaChunkIndex: strconv.Itoa(i),
				docModel.MetaCrawlDepth: strconv.Itoa(depth),
			},
		})
	}
	return docs
}

// ChunkID derives the stable document id for chunk i of a source page.
// Qdrant point ids must be UUIDs, so we hash instead of using "url#i" directly.
func ChunkID(sourceURL string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL+"#"+strconv.Itoa(i))).String()
}
