// Package generate streams completions from an Ollama-compatible generation
// backend and reassembles the fragment stream into a final response.
package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrStreamTimeout means the backend never signalled completion within
	// the configured bound.
	ErrStreamTimeout = errors.New("generation stream timed out")

	// ErrStreamTruncated means the backend closed the stream before sending
	// a completion frame.
	ErrStreamTruncated = errors.New("generation stream closed before completion")
)

// Client talks to the generation capability's streaming HTTP endpoint.
type Client struct {
	baseURL string
	model   string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL generating with the
// given model. timeout bounds the whole stream; zero means no bound.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		http:    &http.Client{},
	}
}

// generateRequest is the request body for /api/generate.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// generateFrame is one newline-delimited JSON object in the response stream.
type generateFrame struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate sends prompt to the backend and consumes the fragment stream
// until the backend signals completion. Each reassembled fragment is passed
// to onFragment as it arrives (nil is allowed), and the full response is
// returned. A stalled stream fails with ErrStreamTimeout instead of
// blocking forever.
func (c *Client) Generate(ctx context.Context, prompt string, onFragment func(string)) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.classify(ctx, fmt.Errorf("call generation backend: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation backend returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var asm assembler
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var frame generateFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			return "", fmt.Errorf("malformed stream chunk: %w", err)
		}
		if frame.Error != "" {
			return "", fmt.Errorf("generation backend error: %s", frame.Error)
		}
		if fragment := asm.push(frame.Response); fragment != "" && onFragment != nil {
			onFragment(fragment)
		}
		if frame.Done {
			return asm.result(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", c.classify(ctx, fmt.Errorf("read stream: %w", err))
	}
	return "", ErrStreamTruncated
}

// classify maps a context deadline hit to ErrStreamTimeout.
func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrStreamTimeout, c.timeout)
	}
	return err
}

// assembler reconstructs word spacing across fragment boundaries and keeps
// thinking delimiters on their own lines.
type assembler struct {
	b    strings.Builder
	prev string
}

// push processes one raw fragment and returns the text actually appended.
func (a *assembler) push(fragment string) string {
	if fragment == "" {
		return ""
	}
	out := fragment
	if needsSpace(a.prev, fragment) {
		out = " " + out
	}
	out = strings.ReplaceAll(out, "<think>", "\n<think>\n")
	out = strings.ReplaceAll(out, "</think>", "\n</think>\n")
	a.b.WriteString(out)
	a.prev = fragment
	return out
}

// result returns the reassembled response with outer whitespace trimmed.
func (a *assembler) result() string {
	return strings.TrimSpace(a.b.String())
}

// needsSpace reports whether a space must be inserted between prev and next:
// only when prev ends a sentence with punctuation and next starts a new word
// without its own leading whitespace.
func needsSpace(prev, next string) bool {
	if prev == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(prev)
	if !strings.ContainsRune(".,!?", last) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLetter(first) || unicode.IsDigit(first)
}
