package summarize

import "strings"

const (
	// ChunkSize and ChunkOverlap are measured in runes. The overlap is a
	// similarity buffer between consecutive chunks, not a dedup guarantee.
	ChunkSize    = 3000
	ChunkOverlap = 200

	chunkSeparator = "\n"
)

// SplitText cuts text into chunks of at most size runes, preferring to cut
// at the last separator inside the window and carrying overlap runes into
// the next chunk. Text of at most size runes yields exactly one chunk; for
// separator-free text the chunk count is ceil((L-overlap)/(size-overlap)).
func SplitText(text string, size int, overlap int, separator string) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	total := len(runes)
	if total <= size {
		return []string{text}
	}

	sep := []rune(separator)

	var chunks []string
	start := 0

	for {
		end := start + size
		if end >= total {
			chunks = append(chunks, string(runes[start:total]))
			break
		}

		// A separator in the overlap-dominated head of the window would
		// stall progress; hard-cut instead.
		cut := end
		if len(sep) > 0 {
			if at := lastSeparator(runes, sep, start, end); at >= start+size/2 {
				cut = at
			}
		}

		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// Split applies the configured chunking to already concatenated text.
func Split(text string) []string {
	return SplitText(text, ChunkSize, ChunkOverlap, chunkSeparator)
}

// JoinDocuments concatenates document texts in order with blank lines so the
// splitter sees separator boundaries between documents.
func JoinDocuments(texts []string) string {
	trimmed := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		trimmed = append(trimmed, t)
	}

	return strings.Join(trimmed, "\n\n")
}

// lastSeparator returns the index right before the last occurrence of sep
// in runes[start:end], or -1.
func lastSeparator(runes []rune, sep []rune, start int, end int) int {
	for i := end - len(sep); i > start; i-- {
		match := true
		for j := range sep {
			if runes[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}

	return -1
}
