package docs

import "strings"

// Defaults for prompt chunking.
const (
	DefaultChunkSize    = 200 // words per chunk
	DefaultChunkOverlap = 30  // words shared between consecutive chunks
)

// Chunk splits text into word-bounded segments of at most size words, with
// consecutive chunks overlapping by overlap words. Empty input yields nil;
// input shorter than size yields a single chunk equal to the input's words.
// Chunk is total: it never panics, whatever the input or parameters.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
