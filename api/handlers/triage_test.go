package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsight/labtriage/extract"
	"github.com/clinsight/labtriage/gateway"
	"github.com/clinsight/labtriage/llm"
	"github.com/clinsight/labtriage/llm/tools"
)

// staticProvider answers every completion with the same content.
type staticProvider struct {
	reply   string
	err     error
	healthy bool
}

func (s *staticProvider) Completion(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{
		Model: "stub",
		Choices: []llm.ChatChoice{
			{Message: llm.Message{Role: llm.RoleAssistant, Content: s.reply}},
		},
	}, nil
}

func (s *staticProvider) HealthCheck(context.Context) (*llm.HealthStatus, error) {
	if !s.healthy {
		return &llm.HealthStatus{Healthy: false}, &llm.Error{Code: llm.ErrUnavailable, Message: "down"}
	}
	return &llm.HealthStatus{Healthy: true, Latency: 2 * time.Millisecond}, nil
}

func (s *staticProvider) Name() string { return "stub" }

func newTriageHandler(t *testing.T, provider llm.Provider) *TriageHandler {
	t.Helper()
	registry := tools.NewRegistry(nil)
	gw, err := gateway.New(registry, extract.NewTool(provider, nil), nil, nil)
	require.NoError(t, err)
	return NewTriageHandler(gw, nil)
}

func postTriage(t *testing.T, h *TriageHandler, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/triage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	var envelope Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestTriageHandler_GeneralGuidance(t *testing.T) {
	h := newTriageHandler(t, &staticProvider{reply: "{}"})

	rec, envelope := postTriage(t, h, `{"message": "I have a sore throat"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.RequestID)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp TriageResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, string(gateway.StateComposed), resp.State)
	assert.True(t, strings.HasSuffix(resp.Reply, gateway.Disclaimer))
}

func TestTriageHandler_UrgentEscalation(t *testing.T) {
	h := newTriageHandler(t, &staticProvider{reply: "{}"})

	rec, envelope := postTriage(t, h, `{"message": "sudden chest pain and sweating"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)

	data, _ := json.Marshal(envelope.Data)
	var resp TriageResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, string(gateway.StateEscalated), resp.State)
	assert.Contains(t, resp.Reply, "emergency")
}

func TestTriageHandler_EmptyMessage(t *testing.T) {
	h := newTriageHandler(t, &staticProvider{reply: "{}"})

	for _, body := range []string{`{"message": ""}`, `{"message": "   "}`, `{}`} {
		rec, envelope := postTriage(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, envelope.Success)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "EMPTY_MESSAGE", envelope.Error.Code)
	}
}

func TestTriageHandler_InvalidBody(t *testing.T) {
	h := newTriageHandler(t, &staticProvider{reply: "{}"})

	rec, envelope := postTriage(t, h, `{"message": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_BODY", envelope.Error.Code)
}

func TestTriageHandler_MethodNotAllowed(t *testing.T) {
	h := newTriageHandler(t, &staticProvider{reply: "{}"})

	req := httptest.NewRequest(http.MethodGet, "/v1/triage", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
