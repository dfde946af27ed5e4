package local

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/clinsight/labtriage/llm"
)

// Wire types for the OpenAI-compatible chat completions contract served by
// the local inference runtime.

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []wireChoice `json:"choices"`
	Usage   *wireUsage   `json:"usage,omitempty"`
	Created int64        `json:"created,omitempty"`
}

type wireChoice struct {
	Index        int              `json:"index"`
	FinishReason string           `json:"finish_reason"`
	Message      wireReplyMessage `json:"message"`
}

type wireReplyMessage struct {
	Role    string       `json:"role"`
	Content replyContent `json:"content"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// replyContent accepts both content encodings small local runtimes emit:
// a plain string, or an array of typed parts whose text-bearing entries are
// concatenated in order. Non-text parts are skipped.
type replyContent string

func (c *replyContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = replyContent(s)
		return nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content is neither string nor part list: %w", err)
	}

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	*c = replyContent(b.String())
	return nil
}

// mapHTTPError converts a failure status from the local endpoint into a
// typed llm.Error. Any non-success status is a service failure; only server
// side statuses are marked retryable.
func mapHTTPError(status int, msg string, provider string) *llm.Error {
	return &llm.Error{
		Code:       llm.ErrService,
		Message:    msg,
		HTTPStatus: status,
		Retryable:  status >= 500 || status == http.StatusTooManyRequests,
		Provider:   provider,
	}
}

// readErrorMessage extracts a human-readable message from an error body,
// falling back to the raw text when it is not the usual JSON envelope.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}

	return strings.TrimSpace(string(data))
}
