package topics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps each title to a fixed vector.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func TestPickSkipsNearDuplicates(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"간헐적 단식의 효과":     {1, 0, 0},
		"간헐적 단식, 효과 있을까": {0.98, 0.05, 0},
		"탈모 예방 샴푸 고르는 법":  {0, 1, 0},
	}}
	similar := NewSimilar(emb, 0.9)
	seen := NewMemorySeen()
	items := []*Item{
		{Title: "간헐적 단식의 효과", URL: "https://a.com/1"},
		{Title: "간헐적 단식, 효과 있을까", URL: "https://b.com/2"},
		{Title: "탈모 예방 샴푸 고르는 법", URL: "https://a.com/3"},
	}

	got, err := Pick(ctx, items, seen, similar)
	require.NoError(t, err)
	assert.Equal(t, "간헐적 단식의 효과", got.Title)

	got, err = Pick(ctx, items, seen, similar)
	require.NoError(t, err)
	assert.Equal(t, "탈모 예방 샴푸 고르는 법", got.Title)

	// The rewording was marked seen, so it is not embedded again.
	calls := emb.calls
	_, err = Pick(ctx, items, seen, similar)
	assert.ErrorIs(t, err, ErrNoFreshTopic)
	assert.Equal(t, calls, emb.calls)
}

func TestPickFallsBackWhenEmbeddingFails(t *testing.T) {
	similar := NewSimilar(&fakeEmbedder{err: errors.New("rate limited")}, 0.9)
	got, err := Pick(context.Background(), []*Item{{Title: "첫 번째", URL: "https://e.com/1"}}, NewMemorySeen(), similar)
	require.NoError(t, err)
	assert.Equal(t, "첫 번째", got.Title)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.Zero(t, cosine([]float32{1}, []float32{1, 0}))
	assert.Zero(t, cosine(nil, nil))
}

func TestCohereEmbed(t *testing.T) {
	var body struct {
		Texts          []string `json:"texts"`
		Model          string   `json:"model"`
		InputType      string   `json:"input_type"`
		EmbeddingTypes []string `json:"embedding_types"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/embed", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"e1","embeddings":{"float":[[0.5,0.25],[1,0]]},"texts":["a","b"]}`))
	}))
	defer srv.Close()

	emb := NewCohereEmbedder("test-key", "", srv.URL)
	vecs, err := emb.Embed(context.Background(), []string{"간헐적 단식", "탈모"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.5, 0.25}, {1, 0}}, vecs)
	assert.Equal(t, []string{"간헐적 단식", "탈모"}, body.Texts)
	assert.Equal(t, "embed-multilingual-v3.0", body.Model)
	assert.Equal(t, "clustering", body.InputType)
	assert.Equal(t, []string{"float"}, body.EmbeddingTypes)
}

func TestCohereEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"e1","embeddings":{"float":[[1,0]]}}`))
	}))
	defer srv.Close()

	_, err := NewCohereEmbedder("k", "embed-english-v3.0", srv.URL).Embed(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "mismatch")
}
