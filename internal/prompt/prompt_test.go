package prompt

import (
	"strings"
	"testing"
)

func TestBuild_ContainsAllSections(t *testing.T) {
	a := New(5)
	got := a.Build(
		[]string{"User: hi", "Bot: hello"},
		[]string{"chunk one", "chunk two"},
		"what now?",
	)

	for _, want := range []string{
		"User: hi\nBot: hello",
		"chunk one\n\nchunk two",
		"User question: what now?",
		"If the context does not have the answer, say so.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q\n\nprompt:\n%s", want, got)
		}
	}
}

func TestBuild_MemoryWindow(t *testing.T) {
	a := New(2)
	memory := []string{"line1", "line2", "line3", "line4"}
	got := a.Build(memory, nil, "q")

	if strings.Contains(got, "line1") || strings.Contains(got, "line2") {
		t.Error("lines outside the window must be dropped")
	}
	if !strings.Contains(got, "line3\nline4") {
		t.Error("the trailing window must be kept in order")
	}
}

func TestBuild_PreservesChunkOrder(t *testing.T) {
	a := New(5)
	got := a.Build(nil, []string{"zebra", "apple", "zebra"}, "q")

	// No reordering and no deduplication.
	if !strings.Contains(got, "zebra\n\napple\n\nzebra") {
		t.Errorf("chunks must appear verbatim in input order, got:\n%s", got)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := New(5)
	mem := []string{"User: a", "Bot: b"}
	chunks := []string{"c1", "c2"}
	if a.Build(mem, chunks, "q") != a.Build(mem, chunks, "q") {
		t.Error("identical inputs must produce identical prompts")
	}
}

func TestNew_DefaultWindow(t *testing.T) {
	if got := New(0).MemoryWindow(); got != DefaultMemoryWindow {
		t.Errorf("expected default window %d, got %d", DefaultMemoryWindow, got)
	}
	if got := New(7).MemoryWindow(); got != 7 {
		t.Errorf("expected window 7, got %d", got)
	}
}
