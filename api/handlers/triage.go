package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinsight/labtriage/gateway"
)

// TriageRequest is the inbound payload for a triage run.
type TriageRequest struct {
	Message string `json:"message"`
}

// TriageResponse carries the outward-facing reply. Reply is natural language
// only; the structured extraction result is never exposed here.
type TriageResponse struct {
	Reply string `json:"reply"`
	State string `json:"state"`
}

// TriageHandler serves POST /v1/triage.
type TriageHandler struct {
	gw     *gateway.Gateway
	logger *zap.Logger
}

// NewTriageHandler creates the triage handler.
func NewTriageHandler(gw *gateway.Gateway, logger *zap.Logger) *TriageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageHandler{gw: gw, logger: logger}
}

// Handle runs one triage request through the gateway.
func (h *TriageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, requestID, "METHOD_NOT_ALLOWED", "use POST")
		return
	}

	var req TriageRequest
	if err := DecodeJSONBody(w, r, requestID, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, requestID, "EMPTY_MESSAGE", "message is required")
		return
	}

	start := time.Now()
	result := h.gw.Handle(r.Context(), gateway.Request{Message: req.Message})

	h.logger.Info("triage handled",
		zap.String("request_id", requestID),
		zap.String("state", string(result.State)),
		zap.Bool("extracted", result.Extracted),
		zap.Duration("duration", time.Since(start)))

	WriteSuccess(w, requestID, TriageResponse{
		Reply: result.Reply,
		State: string(result.State),
	})
}
