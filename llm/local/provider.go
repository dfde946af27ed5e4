// Package local implements the llm.Provider contract against a locally
// hosted OpenAI-compatible inference runtime (e.g. Foundry Local serving
// Phi-4-mini). One HTTP round-trip per completion, no retries: retry policy
// belongs to the caller.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clinsight/labtriage/internal/tlsutil"
	"github.com/clinsight/labtriage/llm"
)

// Config holds the static configuration for the local endpoint. Endpoint
// identity and model are deployment facts, injected at construction; there is
// no ambient global state.
type Config struct {
	// BaseURL is the root of the local runtime, e.g. "http://127.0.0.1:52403".
	BaseURL string

	// Model is the model identifier the runtime advertises.
	Model string

	// MaxTokens bounds the completion length. Defaults to 256.
	MaxTokens int

	// Temperature biases the model toward literal, deterministic output.
	// Defaults to 0.2.
	Temperature float32

	// Timeout is the HTTP client timeout. Defaults to 120s: small local
	// models can be slow on first load, and this is the only bound on call
	// duration.
	Timeout time.Duration

	// EndpointPath is the chat completions path. Defaults to
	// "/v1/chat/completions".
	EndpointPath string

	// ModelsEndpoint is the models list path used by HealthCheck. Defaults
	// to "/v1/models".
	ModelsEndpoint string
}

// Provider is the HTTP client for the local inference endpoint.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

const providerName = "foundry-local"

// New creates a local inference provider with the given config.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 256
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/v1/chat/completions"
	}
	if cfg.ModelsEndpoint == "" {
		cfg.ModelsEndpoint = "/v1/models"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return providerName }

func (p *Provider) endpoint(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

// Completion sends a single-turn chat request and returns the reply of the
// first choice. The model from the request overrides the configured one when
// set; max_tokens and temperature fall back to config likewise.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, &llm.Error{
			Code:       llm.ErrInvalidRequest,
			Message:    "completion request has no messages",
			HTTPStatus: http.StatusBadRequest,
			Provider:   providerName,
		}
	}

	body := chatCompletionRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}
	if req.Model != "" {
		body.Model = req.Model
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}
	body.Messages = make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(p.cfg.EndpointPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &llm.Error{
			Code:       llm.ErrUnavailable,
			Message:    err.Error(),
			HTTPStatus: http.StatusGatewayTimeout,
			Retryable:  true,
			Provider:   providerName,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		p.logger.Warn("local inference returned failure status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return nil, mapHTTPError(resp.StatusCode, msg, providerName)
	}

	var wire chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &llm.Error{
			Code:       llm.ErrProtocol,
			Message:    fmt.Sprintf("undecodable completion response: %v", err),
			HTTPStatus: http.StatusBadGateway,
			Provider:   providerName,
		}
	}
	// An empty choices list is a contract violation, not an empty answer.
	if len(wire.Choices) == 0 {
		return nil, &llm.Error{
			Code:       llm.ErrProtocol,
			Message:    "completion response has no choices",
			HTTPStatus: http.StatusBadGateway,
			Provider:   providerName,
		}
	}

	p.logger.Debug("local inference completed",
		zap.String("model", wire.Model),
		zap.Duration("duration", time.Since(start)))

	out := &llm.ChatResponse{
		ID:       wire.ID,
		Provider: providerName,
		Model:    wire.Model,
		Choices:  make([]llm.ChatChoice, 0, len(wire.Choices)),
	}
	for _, c := range wire.Choices {
		out.Choices = append(out.Choices, llm.ChatChoice{
			Index:        c.Index,
			FinishReason: c.FinishReason,
			Message: llm.Message{
				Role:    llm.RoleAssistant,
				Content: string(c.Message.Content),
			},
		})
	}
	if wire.Usage != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     wire.Usage.PromptTokens,
			CompletionTokens: wire.Usage.CompletionTokens,
			TotalTokens:      wire.Usage.TotalTokens,
		}
	}
	if wire.Created != 0 {
		out.CreatedAt = time.Unix(wire.Created, 0)
	}
	return out, nil
}

// HealthCheck probes the models endpoint of the local runtime.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(p.cfg.ModelsEndpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrorMessage(resp.Body)
		return &llm.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("%s health check failed: status=%d msg=%s", providerName, resp.StatusCode, msg)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}
