package topics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"shortsbot/config"
)

// Embedder returns one vector per text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CohereEmbedder embeds texts with the Cohere v2 Embed API.
type CohereEmbedder struct {
	client *cohereclient.Client
	model  string
}

// NewCohereEmbedder creates an embedder. An empty baseURL uses the Cohere
// API.
func NewCohereEmbedder(apiKey, model, baseURL string) *CohereEmbedder {
	if model == "" {
		model = "embed-multilingual-v3.0"
	}
	httpClient := &http.Client{Timeout: config.APITimeout}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	if baseURL != "" {
		client = cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
			cohereclient.WithBaseURL(baseURL),
		)
	}
	return &CohereEmbedder{client: client, model: model}
}

func (c *CohereEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          c.model,
		InputType:      cohere.EmbedInputTypeClustering,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed error: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed returned no float embeddings")
	}
	floats := resp.Embeddings.Float
	if len(floats) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(texts), len(floats))
	}
	out := make([][]float32, len(floats))
	for i, vec := range floats {
		out[i] = make([]float32, len(vec))
		for j, v := range vec {
			out[i][j] = float32(v)
		}
	}
	return out, nil
}

// Similar remembers the titles of picked topics as embeddings and rejects
// new titles that read as the same story. Its memory is process-local;
// exact repeats across restarts are caught by Seen.
type Similar struct {
	embedder  Embedder
	threshold float64

	mu      sync.Mutex
	vectors [][]float32
}

func NewSimilar(embedder Embedder, threshold float64) *Similar {
	return &Similar{embedder: embedder, threshold: threshold}
}

// Check reports whether title is at least threshold similar to a
// remembered one. The returned vector is what Remember expects.
func (s *Similar) Check(ctx context.Context, title string) (bool, []float32, error) {
	vecs, err := s.embedder.Embed(ctx, []string{title})
	if err != nil {
		return false, nil, err
	}
	if len(vecs) != 1 {
		return false, nil, fmt.Errorf("expected one embedding, got %d", len(vecs))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vectors {
		if cosine(v, vecs[0]) >= s.threshold {
			return true, vecs[0], nil
		}
	}
	return false, vecs[0], nil
}

func (s *Similar) Remember(vec []float32) {
	if len(vec) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, vec)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
