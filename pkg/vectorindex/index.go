package vectorindex

import (
	"context"
	"fmt"
	"sort"

	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/store"
)

// Index is a brute-force cosine similarity index over a fixed chunk set.
// It is built once and never mutated; a re-upload builds a fresh Index that
// replaces the old one wholesale. Vectors are L2-normalized at build time so
// similarity reduces to a dot product.
type Index struct {
	provider embedding.EmbeddingProvider
	chunks   []store.Chunk
	vectors  [][]float32
}

var _ store.Retriever = &Index{}

// Build embeds every chunk and assembles the index. Any embedding failure
// aborts the build; a partially embedded index is never returned.
func Build(ctx context.Context, provider embedding.EmbeddingProvider, chunks []store.Chunk) (*Index, error) {
	vectors := make([][]float32, 0, len(chunks))

	for i, chunk := range chunks {
		vec, err := provider.Generate(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d (%s): %w", i, chunk.Source, err)
		}
		vectors = append(vectors, vec)
	}

	return &Index{
		provider: provider,
		chunks:   chunks,
		vectors:  vectors,
	}, nil
}

// Query embeds the question and returns the top-k most similar chunks,
// highest score first. An empty index returns zero chunks without error.
func (ix *Index) Query(ctx context.Context, text string, topK int) ([]store.Chunk, error) {
	if topK <= 0 {
		topK = 4
	}
	if len(ix.chunks) == 0 {
		return nil, nil
	}

	queryVec, err := ix.provider.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, len(ix.vectors))
	for i, vec := range ix.vectors {
		scores[i] = scored{idx: i, score: dot(vec, queryVec)}
	}

	sort.Slice(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if topK > len(scores) {
		topK = len(scores)
	}

	results := make([]store.Chunk, 0, topK)
	for _, s := range scores[:topK] {
		chunk := ix.chunks[s.idx]
		chunk.Score = s.score
		results = append(results, chunk)
	}
	return results, nil
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	return len(ix.chunks)
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
