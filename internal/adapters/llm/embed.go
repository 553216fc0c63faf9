package llm

import (
	"context"

	perr "github.com/iliebabcenco/big-collector/internal/platform/errors"
)

// Embed generates an embedding vector for text with dimension validation
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: embed")
	}
	if len(vectors) == 0 {
		return nil, perr.Unavailablef("llm: no embedding returned")
	}
	v := vectors[0]
	if len(v) != c.dimension {
		return nil, perr.Internalf("llm: embedding dimension mismatch: got %d want %d", len(v), c.dimension)
	}
	return v, nil
}

// EmbedBatch generates embeddings for multiple texts
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm: embed batch")
	}
	if len(vectors) != len(texts) {
		return nil, perr.Internalf("llm: embedding count mismatch: got %d want %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != c.dimension {
			return nil, perr.Internalf("llm: embedding %d dimension mismatch: got %d want %d", i, len(v), c.dimension)
		}
	}
	return vectors, nil
}
