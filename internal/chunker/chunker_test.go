package chunker

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.chunkSize)
		}
		if c.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, c.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		c := New(WithChunkSize(500))
		if c.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", c.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		c := New(WithOverlap(100))
		if c.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", c.overlap)
		}
	})

	t.Run("overlap at chunk size is clamped", func(t *testing.T) {
		c := New(WithChunkSize(100), WithOverlap(150))
		if c.overlap >= c.chunkSize {
			t.Error("overlap should be reduced when it reaches chunk size")
		}
		if c.overlap != 25 {
			t.Errorf("expected clamped overlap 25, got %d", c.overlap)
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithOverlap(-1))
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", c.chunkSize)
		}
		if c.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", c.overlap)
		}
	})
}

func TestChunk_Empty(t *testing.T) {
	c := New()

	if got := c.Chunk("", "a.txt"); got != nil {
		t.Errorf("expected nil for empty text, got %d chunks", len(got))
	}
	if got := c.Chunk("   \n\t  ", "a.txt"); got != nil {
		t.Errorf("expected nil for whitespace-only text, got %d chunks", len(got))
	}
}

func TestChunk_ShortText(t *testing.T) {
	c := New()

	// Anything at or under the window size is exactly one chunk.
	for _, n := range []int{1, 500, 900, 1000} {
		text := strings.Repeat("a", n)
		chunks := c.Chunk(text, "short.txt")
		if len(chunks) != 1 {
			t.Fatalf("length %d: expected 1 chunk, got %d", n, len(chunks))
		}
		if chunks[0].Text != text {
			t.Errorf("length %d: chunk text does not match input", n)
		}
		if chunks[0].Index != 0 {
			t.Errorf("length %d: expected index 0, got %d", n, chunks[0].Index)
		}
		if chunks[0].Source != "short.txt" {
			t.Errorf("length %d: expected source short.txt, got %s", n, chunks[0].Source)
		}
	}
}

func TestChunk_Overlap(t *testing.T) {
	c := New(WithChunkSize(10), WithOverlap(3))

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Chunk(text, "alpha.txt")

	// step = 7: [0:10), [7:17), [14:24), [21:26)
	want := []string{"abcdefghij", "hijklmnopq", "opqrstuvwx", "vwxyz"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i].Text)
		}
		if chunks[i].Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, chunks[i].Index)
		}
	}

	// Consecutive windows share exactly the configured overlap.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := string(prev[len(prev)-3:])
		if !strings.HasPrefix(chunks[i].Text, tail) {
			t.Errorf("chunk %d does not start with previous window's tail %q", i, tail)
		}
	}
}

func TestChunk_NoRedundantTail(t *testing.T) {
	c := New(WithChunkSize(10), WithOverlap(3))

	// 17 runes: second window [7:17) reaches the end exactly, so no
	// third window should be emitted.
	text := strings.Repeat("x", 17)
	chunks := c.Chunk(text, "t.txt")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestChunk_Multibyte(t *testing.T) {
	c := New(WithChunkSize(4), WithOverlap(1))

	text := "日本語のテキスト"
	chunks := c.Chunk(text, "jp.txt")

	// Reassembling window starts must reproduce the text with no broken runes.
	for _, ch := range chunks {
		if !strings.Contains(text, ch.Text) {
			t.Errorf("chunk %q is not a substring of the input", ch.Text)
		}
	}
	if chunks[0].Text != "日本語の" {
		t.Errorf("expected first window 日本語の, got %q", chunks[0].Text)
	}
}

func TestChunk_ZeroOverlapCoversEverything(t *testing.T) {
	c := New(WithChunkSize(7), WithOverlap(0))

	text := strings.Repeat("b", 50)
	chunks := c.Chunk(text, "b.txt")

	var rebuilt strings.Builder
	for _, ch := range chunks {
		rebuilt.WriteString(ch.Text)
	}
	if rebuilt.String() != text {
		t.Error("zero-overlap chunks should reconstruct the input exactly")
	}
}
