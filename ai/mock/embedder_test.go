package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/webrag/ai"
)

func TestMockEmbedderDeterminism(t *testing.T) {
	embedder := NewMockEmbedder()

	a, err := embedder.EmbedText(context.Background(), "same input")
	require.NoError(t, err)
	b, err := embedder.EmbedText(context.Background(), "same input")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := embedder.EmbedText(context.Background(), "different input")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestMockEmbedderEmptyInput(t *testing.T) {
	embedder := NewMockEmbedder()

	_, err := embedder.EmbedText(context.Background(), "   ")
	assert.ErrorIs(t, err, ai.ErrEmptyInput)

	_, err = embedder.EmbedTexts(context.Background(), []string{"ok", ""})
	assert.ErrorIs(t, err, ai.ErrEmptyInput)
}

func TestMockEmbedderConcurrentUse(t *testing.T) {
	// The embedder is driven from pooled workers in production, so the
	// double must honor the same concurrency contract.
	embedder := NewMockEmbedder()

	const goroutines = 8
	const callsEach = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < callsEach; i++ {
				_, err := embedder.EmbedText(context.Background(), "concurrent input")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*callsEach, embedder.CallCount())
}

func TestMockSummarizerConcurrentUse(t *testing.T) {
	summarizer := NewMockSummarizer()

	const goroutines = 8

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := summarizer.Summarize(context.Background(), "some page text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, summarizer.CallCount())
}
