package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iho/creditledger/internal/usecase"
)

var _ usecase.Generator = (*HTTPClient)(nil)

// HTTPClient calls a remote generation service. The service receives
// {"proposal_id","prompt","account_id"} and answers {"content","model"}.
type HTTPClient struct {
	client   *http.Client
	endpoint string
}

// NewHTTPClient creates a client for the service at endpoint.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

type generateRequest struct {
	ProposalID string `json:"proposal_id"`
	Prompt     string `json:"prompt"`
	AccountID  int64  `json:"account_id"`
}

type generateResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Generate performs one generation. Any non-2xx answer is a failure, so the
// metering gate does not charge for it.
func (c *HTTPClient) Generate(ctx context.Context, req usecase.GenerationRequest) (*usecase.GenerationResult, error) {
	body, err := json.Marshal(generateRequest{
		ProposalID: req.ProposalID,
		Prompt:     req.Prompt,
		AccountID:  req.AccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("generator: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generator: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("generator: decode response: %w", err)
	}
	if out.Content == "" {
		return nil, fmt.Errorf("generator: empty content")
	}

	return &usecase.GenerationResult{Content: out.Content, Model: out.Model}, nil
}
