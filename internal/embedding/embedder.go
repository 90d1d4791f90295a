// Package embedding turns text into fixed-dimension vectors via an external
// model service.
package embedding

import "context"

// Embedder is the external embedding capability. Implementations must return
// one vector per input text, in input order, all of the same dimension.
type Embedder interface {
	// Embed generates vectors for texts in a single logical call.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the fixed vector dimension of the capability.
	// It may perform a network call on first use.
	Dimension(ctx context.Context) (int, error)
}

// EmbedOne embeds a single text and returns its vector.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
