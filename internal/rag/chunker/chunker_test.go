package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ChunkCount(t *testing.T) {
	// ceil((L-O)/(C-O)) chunks for L > C
	testCases := []struct {
		name    string
		length  int
		size    int
		overlap int
		want    int
	}{
		{"Fits in one chunk", 100, 4000, 200, 1},
		{"Exactly the chunk size", 4000, 4000, 200, 1},
		{"One char over", 4001, 4000, 200, 2},
		{"Two full windows", 7800, 4000, 200, 2},
		{"Three windows", 7801, 4000, 200, 3},
		{"Tiny text", 1, 4000, 200, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("a", tc.length)
			chunks := Split(text, tc.size, tc.overlap)
			if len(chunks) != tc.want {
				t.Errorf("got %d chunks, want %d", len(chunks), tc.want)
			}
		})
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	// dropping the leading overlap of every chunk after the first must give
	// back the original text byte for byte
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300)
	size, overlap := 1000, 100

	chunks := Split(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("test text too small, got %d chunks", len(chunks))
	}

	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		rebuilt += string([]rune(chunk)[overlap:])
	}
	if rebuilt != text {
		t.Error("reconstructed text does not match the original")
	}
}

func TestSplit_OverlapContent(t *testing.T) {
	text := strings.Repeat("x", 500) + strings.Repeat("y", 500)
	chunks := Split(text, 600, 100)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	tail := string([]rune(chunks[0])[500:])
	head := string([]rune(chunks[1])[:100])
	if tail != head {
		t.Error("second chunk does not start with the first chunk's tail")
	}
}

func TestSplit_Empty(t *testing.T) {
	if chunks := Split("", 4000, 200); len(chunks) != 0 {
		t.Errorf("empty text produced %d chunks", len(chunks))
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	// windows are measured in runes, not bytes
	text := strings.Repeat("日本語テキスト", 100)
	chunks := Split(text, 100, 10)
	for i, chunk := range chunks {
		if !strings.Contains(text, chunk) {
			t.Errorf("chunk %d is not a substring of the original, runes were split", i)
		}
	}
}

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("https://docs.example.com/intro", 3)
	b := ChunkID("https://docs.example.com/intro", 3)
	if a != b {
		t.Errorf("same page and index gave different ids: %s vs %s", a, b)
	}

	c := ChunkID("https://docs.example.com/intro", 4)
	if a == c {
		t.Error("different chunk index gave the same id")
	}
}

func TestChunkPage_Metadata(t *testing.T) {
	text := strings.Repeat("z", 250)
	docs := ChunkPage("https://docs.example.com/auth", 2, text, 100, 10)

	if len(docs) < 2 {
		t.Fatalf("got %d docs, want several", len(docs))
	}
	for i, doc := range docs {
		if doc.Id != ChunkID("https://docs.example.com/auth", i) {
			t.Errorf("doc %d has unexpected id %s", i, doc.Id)
		}
		if doc.Metadata["source_url"] != "https://docs.example.com/auth" {
			t.Errorf("doc %d missing source url, got %q", i, doc.Metadata["source_url"])
		}
	}
}
