package chunker

import (
	"strings"
	"testing"
)

func TestSplit_Empty(t *testing.T) {
	c := New(2000, 400)
	if got := c.Split(""); got != nil {
		t.Errorf("expected nil for empty input, got %d chunks", len(got))
	}
}

func TestSplit_WhitespaceOnly(t *testing.T) {
	c := New(10, 2)
	if got := c.Split("   \n\t  "); got != nil {
		t.Errorf("expected nil for whitespace input, got %q", got)
	}
}

func TestSplit_ShortText(t *testing.T) {
	c := New(2000, 400)
	chunks := c.Split("hello world")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello world" {
		t.Errorf("chunk content: got %q", chunks[0])
	}
}

func TestSplit_ReferenceBoundaries(t *testing.T) {
	// 5000 characters at size 2000 / overlap 400 must produce exactly 3 chunks.
	text := strings.Repeat("a", 5000)
	c := New(2000, 400)
	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 2000 || len(chunks[1]) != 2000 {
		t.Errorf("full chunks should be 2000 runes, got %d and %d", len(chunks[0]), len(chunks[1]))
	}
	if len(chunks[2]) != 1800 {
		t.Errorf("final chunk should cover the remaining 1800 runes, got %d", len(chunks[2]))
	}
}

func TestSplit_OverlapExact(t *testing.T) {
	// Distinct runes so overlapping regions can be compared directly.
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteRune(rune('0' + i%10))
		b.WriteRune(rune('a' + i%26))
	}
	text := b.String() // 200 runes

	c := New(50, 10)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		tail := string(prev[len(prev)-10:])
		head := string(curr[:10])
		if tail != head {
			t.Errorf("chunks %d/%d share %q vs %q, want identical overlap", i-1, i, tail, head)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox ", 300)
	c := New(128, 32)
	first := c.Split(text)
	second := c.Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestNew_ClampsBadConfig(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"overlap equals size", 100, 100},
		{"negative overlap", 100, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.size, tt.overlap)
			if c.Size() <= 0 || c.Overlap() < 0 || c.Overlap() >= c.Size() {
				t.Errorf("invalid clamped config: size=%d overlap=%d", c.Size(), c.Overlap())
			}
			// The window must always advance.
			chunks := c.Split(strings.Repeat("x", c.Size()*3))
			if len(chunks) == 0 {
				t.Error("expected chunks")
			}
		})
	}
}
