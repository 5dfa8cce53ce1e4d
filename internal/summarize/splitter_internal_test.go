package summarize

import (
	"strings"
	"testing"
)

func TestSplitTextSingleChunkAtBoundary(t *testing.T) {
	text := strings.Repeat("a", ChunkSize)

	chunks := SplitText(text, ChunkSize, ChunkOverlap, chunkSeparator)

	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk for text of length %d, got %d", len(text), len(chunks))
	}

	if chunks[0] != text {
		t.Fatalf("expected the single chunk to be the whole text")
	}
}

func TestSplitTextChunkCountFormulaWithoutSeparator(t *testing.T) {
	// For separator-free text: count = ceil((L - overlap) / (size - overlap)).
	for _, length := range []int{3001, 5000, 5800, 5801, 10000, 50000} {
		text := strings.Repeat("a", length)

		chunks := SplitText(text, ChunkSize, ChunkOverlap, chunkSeparator)

		step := ChunkSize - ChunkOverlap
		want := (length - ChunkOverlap + step - 1) / step

		if len(chunks) != want {
			t.Fatalf("length %d: expected %d chunks, got %d", length, want, len(chunks))
		}

		for i, chunk := range chunks {
			if len([]rune(chunk)) > ChunkSize {
				t.Fatalf("length %d: chunk %d exceeds the size limit: %d", length, i, len([]rune(chunk)))
			}
		}
	}
}

func TestSplitTextFiveThousandCharsYieldsTwoChunks(t *testing.T) {
	text := strings.Repeat("b", 5000)

	chunks := SplitText(text, ChunkSize, ChunkOverlap, chunkSeparator)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks for a 5000-char document, got %d", len(chunks))
	}
}

func TestSplitTextConsecutiveChunksOverlap(t *testing.T) {
	var b strings.Builder
	for b.Len() < 10000 {
		b.WriteString("0123456789")
	}

	chunks := SplitText(b.String(), ChunkSize, ChunkOverlap, chunkSeparator)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-ChunkOverlap:])

		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not start with the previous chunk's overlap tail", i)
		}
	}
}

func TestSplitTextPrefersSeparatorBoundary(t *testing.T) {
	first := strings.Repeat("a", 2500)
	second := strings.Repeat("b", 2500)
	text := first + "\n" + second

	chunks := SplitText(text, ChunkSize, ChunkOverlap, chunkSeparator)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	if strings.Contains(chunks[0], "b") {
		t.Fatalf("expected the first chunk to end at the separator, got tail %q", chunks[0][len(chunks[0])-20:])
	}
}

func TestSplitTextEmptyInput(t *testing.T) {
	if chunks := SplitText("", ChunkSize, ChunkOverlap, chunkSeparator); chunks != nil {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestJoinDocumentsSkipsEmptyTexts(t *testing.T) {
	joined := JoinDocuments([]string{" first ", "", "  ", "second"})

	if joined != "first\n\nsecond" {
		t.Fatalf("unexpected joined text: %q", joined)
	}
}
