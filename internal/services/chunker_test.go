package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkTextKeepsShortTextWhole(t *testing.T) {
	chunks := NewTextChunker().ChunkText("Go developer.\n\nFive years of backend work.", 200, 20)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %q", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "\n\n") {
		t.Fatalf("expected paragraph break preserved, got %q", chunks[0])
	}
}

func TestChunkTextRespectsSizeAndOverlap(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 20; i++ {
		paragraphs = append(paragraphs, strings.Repeat("abcdefghij", 5))
	}
	text := strings.Join(paragraphs, "\n\n")

	const size, overlap = 120, 10
	chunks := NewTextChunker().ChunkText(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > size+overlap+2 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
		if i == 0 {
			continue
		}
		tail := lastRunes(chunks[i-1], overlap)
		if !strings.HasPrefix(chunk, tail) {
			t.Fatalf("chunk %d does not start with the previous tail %q", i, tail)
		}
	}
}

func TestChunkTextSplitsLongParagraphOnSentences(t *testing.T) {
	sentence := strings.Repeat("word ", 10) + "end."
	text := strings.Repeat(sentence+" ", 10)

	chunks := NewTextChunker().ChunkText(text, 100, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected paragraph to be split, got %d chunk(s)", len(chunks))
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 100 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
}

func TestChunkTextEmpty(t *testing.T) {
	if chunks := NewTextChunker().ChunkText("  \n\n  ", 100, 10); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %q", chunks)
	}
}
