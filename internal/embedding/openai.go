package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// DefaultBatchSize balances requests-per-minute vs tokens-per-minute limits.
const DefaultBatchSize = 500

// OpenAI implements Embedder against an OpenAI embeddings endpoint, batching
// requests and retrying rate-limited calls with exponential backoff.
type OpenAI struct {
	client    openai.Client
	model     string
	batchSize int
	dim       int
}

// NewOpenAI creates an embedder for the given model. The API key is read
// from the environment variable named by apiKeyEnv. If batchSize is 0,
// DefaultBatchSize is used.
func NewOpenAI(model, apiKeyEnv string, batchSize int) (*OpenAI, error) {
	if os.Getenv(apiKeyEnv) == "" {
		return nil, fmt.Errorf("%s environment variable not set", apiKeyEnv)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &OpenAI{
		client:    openai.NewClient(),
		model:     model,
		batchSize: batchSize,
	}, nil
}

// Embed generates vectors for texts, one batch request at a time, preserving
// input order across batches.
func (e *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		vectors, err := e.embedBatchWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}
	if e.dim == 0 && len(all) > 0 {
		e.dim = len(all[0])
	}
	return all, nil
}

// Dimension reports the model's vector dimension, probing the endpoint with
// a one-word request on first use.
func (e *OpenAI) Dimension(ctx context.Context) (int, error) {
	if e.dim != 0 {
		return e.dim, nil
	}
	probe, err := e.embedBatchWithRetry(ctx, []string{"dimension"})
	if err != nil {
		return 0, fmt.Errorf("probe dimension: %w", err)
	}
	e.dim = len(probe[0])
	return e.dim, nil
}

// embedBatchWithRetry embeds a single batch, retrying with exponential
// backoff on rate limit errors. Other errors fail immediately.
func (e *OpenAI) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return vectors, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 narrows the API's float64 vectors for storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
