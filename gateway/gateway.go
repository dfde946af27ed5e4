// Package gateway decides, per request, whether lab extraction must run
// before a response is composed, and guarantees the structured result never
// leaks verbatim to the end user. Each request runs a fixed state machine
// exactly once: Start -> UrgentCheck -> Escalate, or UrgentCheck ->
// ExtractIfTriggered -> Compose.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clinsight/labtriage/extract"
	"github.com/clinsight/labtriage/internal/metrics"
	"github.com/clinsight/labtriage/llm"
	"github.com/clinsight/labtriage/llm/retry"
	"github.com/clinsight/labtriage/llm/tools"
)

// State is the terminal state a request ended in.
type State string

const (
	// StateEscalated: urgent signal matched, fixed escalation emitted.
	StateEscalated State = "escalated"
	// StateComposed: guidance composed, with or without extraction.
	StateComposed State = "composed"
	// StateDegraded: extraction was warranted but failed; general guidance
	// was emitted instead.
	StateDegraded State = "degraded"
)

// Request is one incoming triage message.
type Request struct {
	Message string
}

// Result is the outward-facing outcome. Reply is natural language only and
// always ends with the disclaimer; the structured summary never appears in
// serialized form.
type Result struct {
	State     State
	Reply     string
	Extracted bool // extraction ran and produced a valid summary
}

// Gateway is the per-request decision policy. It holds no per-request state;
// concurrent Handle calls are independent.
type Gateway struct {
	registry  *tools.Registry
	retryer   *retry.Retryer
	collector *metrics.Collector
	logger    *zap.Logger
}

// New creates a gateway and registers the extraction tool in the registry
// under its declared name. The retryer is applied only to model-output
// failures; transport failures surface after a single attempt.
func New(registry *tools.Registry, tool *extract.Tool, collector *metrics.Collector, logger *zap.Logger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	err := registry.Register(extract.ToolName, summarizeFunc(tool), tools.Metadata{
		Schema:      tool.Schema(),
		Description: tool.Schema().Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register extraction tool: %w", err)
	}

	policy := retry.DefaultPolicy()
	policy.ShouldRetry = RetryableOutputFailure
	return &Gateway{
		registry:  registry,
		retryer:   retry.New(policy, logger),
		collector: collector,
		logger:    logger,
	}, nil
}

// summarizeFunc adapts the extraction tool to the registry's ToolFunc shape.
func summarizeFunc(tool *extract.Tool) tools.ToolFunc {
	return func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
		var in struct {
			LabText string `json:"lab_text"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("invalid tool arguments: %w", err)
		}
		summary, err := tool.Summarize(ctx, in.LabText)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	}
}

// RetryableOutputFailure reports whether err is a model-output failure
// (malformed or schema-violating) where a second sample may help. Transport
// failures are excluded: retrying an unreachable endpoint inside the request
// just burns the request budget, and a protocol mismatch never fixes itself.
func RetryableOutputFailure(err error) bool {
	var malformed *extract.MalformedOutputError
	var violation *extract.SchemaViolationError
	return errors.As(err, &malformed) || errors.As(err, &violation)
}

// Handle runs the state machine once for one request.
func (g *Gateway) Handle(ctx context.Context, req Request) Result {
	start := time.Now()

	// UrgentCheck always runs first, before extraction and before guidance.
	if UrgentSignal(req.Message) {
		g.logger.Info("urgent signal, escalating without extraction")
		return g.finish(Result{State: StateEscalated, Reply: composeEscalation()}, start)
	}

	if !NeedsExtraction(req.Message) {
		return g.finish(Result{State: StateComposed, Reply: composeGeneral()}, start)
	}

	summary, err := g.extractOnce(ctx, req.Message)
	if err != nil {
		g.logger.Warn("extraction failed, degrading to general guidance",
			zap.String("kind", failureKind(err)),
			zap.Error(err))
		if g.collector != nil {
			g.collector.ObserveExtraction("failure", failureKind(err))
		}
		return g.finish(Result{State: StateDegraded, Reply: composeDegraded()}, start)
	}

	if g.collector != nil {
		g.collector.ObserveExtraction("success", "")
	}
	return g.finish(Result{
		State:     StateComposed,
		Reply:     composeWithSummary(summary),
		Extracted: true,
	}, start)
}

// extractOnce invokes the registered extraction tool. One logical extraction
// per request; the bounded retry inside applies only to output failures.
func (g *Gateway) extractOnce(ctx context.Context, message string) (*extract.LabSummary, error) {
	args, err := json.Marshal(struct {
		LabText string `json:"lab_text"`
	}{LabText: message})
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err = g.retryer.Do(ctx, func() error {
		attemptStart := time.Now()
		var execErr error
		raw, execErr = g.registry.Execute(ctx, extract.ToolName, args)
		if g.collector != nil {
			g.collector.ObserveInference(time.Since(attemptStart))
		}
		return execErr
	})
	if err != nil {
		return nil, err
	}

	var summary extract.LabSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("tool result decode failed: %w", err)
	}
	return &summary, nil
}

func (g *Gateway) finish(res Result, start time.Time) Result {
	if g.collector != nil {
		g.collector.ObserveTriage(string(res.State), time.Since(start))
	}
	return res
}

// failureKind maps an extraction error onto its taxonomy bucket for logging
// and metrics.
func failureKind(err error) string {
	var malformed *extract.MalformedOutputError
	var violation *extract.SchemaViolationError
	switch {
	case errors.As(err, &malformed):
		return "malformed_output"
	case errors.As(err, &violation):
		return "schema_violation"
	case llm.IsCode(err, llm.ErrUnavailable):
		return "unavailable"
	case llm.IsCode(err, llm.ErrService):
		return "service"
	case llm.IsCode(err, llm.ErrProtocol):
		return "protocol"
	default:
		return "other"
	}
}
