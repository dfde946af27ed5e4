package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	probe := func(provider *staticProvider) healthResponse {
		t.Helper()
		h := NewHealthHandler(provider, nil)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	t.Run("local endpoint healthy", func(t *testing.T) {
		resp := probe(&staticProvider{healthy: true})
		assert.Equal(t, "ok", resp.Status)
		assert.True(t, resp.Local)
		assert.NotEmpty(t, resp.Latency)
	})

	t.Run("local endpoint down stays 200", func(t *testing.T) {
		resp := probe(&staticProvider{healthy: false})
		assert.Equal(t, "degraded", resp.Status)
		assert.False(t, resp.Local)
	})
}
