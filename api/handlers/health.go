package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clinsight/labtriage/llm"
)

// HealthHandler serves GET /healthz, probing the local inference endpoint.
type HealthHandler struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(provider llm.Provider, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{provider: provider, logger: logger}
}

type healthResponse struct {
	Status  string `json:"status"`
	Local   bool   `json:"local_inference"`
	Latency string `json:"latency,omitempty"`
}

// Handle reports service and local-endpoint health. The service itself stays
// up when the local endpoint is down; requests degrade per the gateway
// policy, so a sick dependency is 200 with local_inference=false rather than
// a hard 503.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, err := h.provider.HealthCheck(ctx)
	if err != nil || status == nil || !status.Healthy {
		h.logger.Warn("local inference unhealthy", zap.Error(err))
		WriteJSON(w, http.StatusOK, healthResponse{Status: "degraded", Local: false})
		return
	}

	WriteJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Local:   true,
		Latency: status.Latency.String(),
	})
}
