package docs

import (
	"fmt"
	"strings"
	"testing"
)

// nWords builds a text of n distinct space-separated words.
func nWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkEmpty(t *testing.T) {
	if got := Chunk("", 200, 30); got != nil {
		t.Fatalf("empty input: got %v, want nil", got)
	}
	if got := Chunk("   \n\t  ", 200, 30); got != nil {
		t.Fatalf("whitespace input: got %v, want nil", got)
	}
}

func TestChunkShortInput(t *testing.T) {
	chunks := Chunk(nWords(50), 200, 30)
	if len(chunks) != 1 {
		t.Fatalf("short input: got %d chunks, want 1", len(chunks))
	}
	if len(strings.Fields(chunks[0])) != 50 {
		t.Fatalf("short input chunk: got %d words", len(strings.Fields(chunks[0])))
	}
}

func TestChunkExactSize(t *testing.T) {
	chunks := Chunk(nWords(200), 200, 30)
	if len(chunks) != 1 {
		t.Fatalf("input of exactly one chunk: got %d chunks, want 1", len(chunks))
	}
}

func TestChunkOverlap(t *testing.T) {
	chunks := Chunk(nWords(500), 200, 30)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	// Consecutive chunks share the last 30 words of the earlier chunk.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	if len(first) != 200 {
		t.Fatalf("first chunk has %d words, want 200", len(first))
	}
	tail := first[len(first)-30:]
	head := second[:30]
	for i := range tail {
		if tail[i] != head[i] {
			t.Fatalf("overlap mismatch at %d: %q vs %q", i, tail[i], head[i])
		}
	}

	// Every word is covered, in order.
	last := strings.Fields(chunks[len(chunks)-1])
	if last[len(last)-1] != "w499" {
		t.Fatalf("last word not covered: %q", last[len(last)-1])
	}
}

func TestChunkDegenerateParams(t *testing.T) {
	// overlap >= size must not loop forever.
	chunks := Chunk(nWords(10), 3, 5)
	if len(chunks) == 0 {
		t.Fatal("degenerate params produced no chunks")
	}
	// Nonsense params fall back to defaults.
	chunks = Chunk(nWords(10), 0, -1)
	if len(chunks) != 1 {
		t.Fatalf("fallback params: got %d chunks, want 1", len(chunks))
	}
}
