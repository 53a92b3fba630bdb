package ingestion

import "strings"

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
)

// ChunkText splits article body text into overlapping character windows.
// Boundaries prefer the last space inside the window so words are not cut
// in half; consecutive chunks share `overlap` characters of context.
func ChunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size/2 {
		overlap = defaultChunkOverlap
		if overlap >= size/2 {
			overlap = 0
		}
	}

	chunks := make([]string, 0, len(text)/size+1)
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		if idx := strings.LastIndexByte(text[start:end], ' '); idx > size/2 {
			end = start + idx
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}
