// Package prompt assembles the bounded context window sent to the
// generation backend.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultMemoryWindow is how many trailing transcript lines are included.
const DefaultMemoryWindow = 5

const template = `You are a helpful assistant. You have access to the following past conversation:

%s

Additionally, you have access to the following context:

%s

Answer the user's question. If the context does not have the answer, say so.

User question: %s
`

// Assembler builds prompts from recent memory, retrieved chunks, and the
// query. The output is a deterministic function of its inputs: no
// reordering, no deduplication, no truncation beyond the memory window.
type Assembler struct {
	memoryWindow int
}

// New creates an assembler keeping the last memoryWindow transcript lines.
// A non-positive window falls back to DefaultMemoryWindow.
func New(memoryWindow int) *Assembler {
	if memoryWindow <= 0 {
		memoryWindow = DefaultMemoryWindow
	}
	return &Assembler{memoryWindow: memoryWindow}
}

// MemoryWindow returns how many trailing transcript lines are kept.
func (a *Assembler) MemoryWindow() int { return a.memoryWindow }

// Build composes the prompt string. recentMemory is ordered oldest first;
// only its trailing window is kept. Chunks are joined by blank lines in the
// order given.
func (a *Assembler) Build(recentMemory, chunks []string, query string) string {
	if len(recentMemory) > a.memoryWindow {
		recentMemory = recentMemory[len(recentMemory)-a.memoryWindow:]
	}
	return fmt.Sprintf(template,
		strings.Join(recentMemory, "\n"),
		strings.Join(chunks, "\n\n"),
		query,
	)
}
