package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrorCode classifies inference failures so callers can decide whether a
// retry is likely to help.
type ErrorCode string

const (
	// ErrUnavailable: endpoint unreachable or the request timed out. Transient;
	// a retry after backoff may succeed.
	ErrUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrService: endpoint reachable but returned a failure status.
	ErrService ErrorCode = "LLM_SERVICE_ERROR"
	// ErrProtocol: response did not match the expected transport shape
	// (undecodable body, empty choices list). Indicates a contract mismatch
	// and must not be silently retried.
	ErrProtocol ErrorCode = "LLM_PROTOCOL_ERROR"
	// ErrInvalidRequest: the request itself was malformed before sending.
	ErrInvalidRequest ErrorCode = "LLM_INVALID_REQUEST"
)

// Error is the transport-level failure type returned by providers.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var le *Error
	return errors.As(err, &le) && le.Code == code
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

type ChatChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason,omitempty"`
	Message      Message `json:"message"`
}

type ChatResponse struct {
	ID        string       `json:"id,omitempty"`
	Provider  string       `json:"provider,omitempty"`
	Model     string       `json:"model"`
	Choices   []ChatChoice `json:"choices"`
	Usage     ChatUsage    `json:"usage,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

// FirstContent returns the text of the first choice, or "" if there is none.
func (r *ChatResponse) FirstContent() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ToolSchema declares a capability to the orchestrator: a name, a described
// input, and a JSON Schema for both parameters and output. Whether the
// orchestrator chooses to invoke it is its own affair; this contract only
// guarantees the tool's behavior once invoked.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
	Output      json.RawMessage `json:"output,omitempty"`
}

// HealthStatus reports the outcome of a provider health probe.
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
}

// Provider is the single-turn inference contract consumed by the extraction
// tool. Retry policy, if any, belongs to the caller.
type Provider interface {
	// Completion sends one chat request and returns the full response.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck performs a lightweight reachability probe.
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Name returns the provider identifier.
	Name() string
}
