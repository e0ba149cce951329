package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sop-agent/internal/config"
)

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	fn := WithRetry(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rate limited")
		}
		return []float32{0.1, 0.2}, nil
	})

	vec, err := fn(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn := WithRetry(func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("always failing")
	})

	_, err := fn(ctx, "text")
	assert.Error(t, err)
}

func TestNewEmbedder_UnsupportedProvider(t *testing.T) {
	_, err := NewEmbedder(config.EmbeddingConfig{Provider: "huggingface"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported embedding provider")
}
