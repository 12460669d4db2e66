package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"statute-agent/internal/domain"
)

// payloadTextKey is the qdrant payload field holding the passage text, as
// written by the index build pipeline.
const payloadTextKey = "text"

// qdrantAPI is the minimal qdrant surface required by PassageIndex.
// *qdrant.Client satisfies it. Defined here for testability.
type qdrantAPI interface {
	Query(ctx context.Context, in *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	ListCollections(ctx context.Context) ([]string, error)
}

// Embedder turns query text into the vector the index was built with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PassageIndex is the read-only similarity search over the statute corpus.
type PassageIndex struct {
	api        qdrantAPI
	embedder   Embedder
	collection string
}

func New(api qdrantAPI, embedder Embedder, collection string) (*PassageIndex, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if embedder == nil {
		return nil, errors.New("repository: embedder must not be nil")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("repository: collection name must not be empty")
	}
	return &PassageIndex{api: api, embedder: embedder, collection: collection}, nil
}

// Ping verifies the collection exists. Called once at startup; the process
// must not serve traffic without an index.
func (p *PassageIndex) Ping(ctx context.Context) error {
	names, err := p.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("repository: list collections: %w", err)
	}
	for _, name := range names {
		if name == p.collection {
			return nil
		}
	}
	return fmt.Errorf("repository: collection %q does not exist", p.collection)
}

// Search embeds the query and returns the top-k passages by similarity,
// highest score first.
func (p *PassageIndex) Search(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	if k <= 0 {
		k = 4
	}

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: embed query: %w", err)
	}

	limit := uint64(k)
	hits, err := p.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: p.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: query collection %q: %w", p.collection, err)
	}

	passages := make([]domain.Passage, 0, len(hits))
	for _, hit := range hits {
		text := payloadText(hit)
		if text == "" {
			continue
		}
		passages = append(passages, domain.Passage{Text: text, Score: hit.GetScore()})
	}
	return passages, nil
}

func payloadText(hit *qdrant.ScoredPoint) string {
	payload := hit.GetPayload()
	if payload == nil {
		return ""
	}
	val, ok := payload[payloadTextKey]
	if !ok {
		return ""
	}
	return val.GetStringValue()
}
