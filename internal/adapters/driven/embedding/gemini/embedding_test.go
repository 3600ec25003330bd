package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

type fakeBackend struct {
	tasks   []genai.TaskType
	sizes   []int
	err     error
	short   bool
	pingErr error
	closed  bool
}

func (f *fakeBackend) embed(_ context.Context, task genai.TaskType, texts []string) ([][]float32, error) {
	f.tasks = append(f.tasks, task)
	f.sizes = append(f.sizes, len(texts))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	if f.short {
		return out[:len(out)-1], nil
	}
	return out, nil
}

func (f *fakeBackend) ping(context.Context) error { return f.pingErr }

func (f *fakeBackend) close() error {
	f.closed = true
	return nil
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmbed(t *testing.T) {
	fake := &fakeBackend{}
	svc := newWithBackend(fake, DefaultModel)

	got, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{5}, got)
	assert.Equal(t, []genai.TaskType{genai.TaskTypeRetrievalQuery}, fake.tasks)
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestEmbedBatch_Splits(t *testing.T) {
	fake := &fakeBackend{}
	svc := newWithBackend(fake, DefaultModel)
	texts := make([]string, MaxBatchSize+1)
	for i := range texts {
		texts[i] = fmt.Sprint(i)
	}

	got, err := svc.EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	assert.Len(t, got, len(texts))
	assert.Equal(t, []int{MaxBatchSize, 1}, fake.sizes)
	assert.Equal(t, genai.TaskTypeRetrievalDocument, fake.tasks[0])
	assert.Equal(t, []float32{3}, got[MaxBatchSize])
}

func TestEmbed_Errors(t *testing.T) {
	svc := newWithBackend(&fakeBackend{}, DefaultModel)
	_, err := svc.Embed(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	_, err = svc.EmbedBatch(context.Background(), []string{"a", " "})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	upstream := errors.New("quota exceeded")
	svc = newWithBackend(&fakeBackend{err: upstream}, DefaultModel)
	_, err = svc.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.ErrorIs(t, err, upstream)

	svc = newWithBackend(&fakeBackend{short: true}, DefaultModel)
	_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}

func TestPingAndClose(t *testing.T) {
	fake := &fakeBackend{pingErr: errors.New("403")}
	svc := newWithBackend(fake, "custom-model")

	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	require.NoError(t, svc.Close())
	assert.True(t, fake.closed)
}
