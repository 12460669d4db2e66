package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"statute-agent/internal/integrations/paramstore"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Client embeds query text through an OpenAI-compatible embeddings endpoint.
type Client struct {
	baseURL    string
	model      string
	keyParam   string
	getter     paramstore.Getter
	httpClient *http.Client
}

// NewClient creates an embeddings Client. keyParam may be empty for
// unauthenticated local endpoints.
func NewClient(ps paramstore.Getter, keyParam, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("embeddings: base URL must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("embeddings: model must not be empty")
	}
	if keyParam != "" && ps == nil {
		return nil, errors.New("embeddings: paramstore getter must not be nil when a key parameter is set")
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:      model,
		keyParam:   keyParam,
		getter:     ps,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func embeddingsURL(baseURL string) string {
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL + "/embeddings"
	}
	return baseURL + "/v1/embeddings"
}

// Embed returns the vector for a single query text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("embeddings: marshal request: %w", err)
	}

	url := embeddingsURL(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embeddings: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.keyParam != "" {
		key, err := c.getter.GetParameter(ctx, c.keyParam)
		if err != nil {
			return nil, fmt.Errorf("embeddings: resolve API key: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+key)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("embeddings: unexpected status %d from %s: %s", res.StatusCode, url, string(buf))
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<22))
	if err != nil {
		return nil, fmt.Errorf("embeddings: read response body: %w", err)
	}

	var payload embeddingResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("embeddings: decode response: %w", err)
	}
	if len(payload.Data) == 0 || len(payload.Data[0].Embedding) == 0 {
		return nil, errors.New("embeddings: no embedding in response")
	}
	return payload.Data[0].Embedding, nil
}
