// Package extract turns free-text lab reports into validated structured
// summaries using a locally hosted model. The pipeline is: one inference
// round-trip, fence sanitization, JSON parse, schema validation. Only a fully
// valid LabSummary or a typed failure ever crosses the package boundary.
package extract

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/clinsight/labtriage/llm"
)

// ToolName is the capability identifier declared to the orchestrator.
const ToolName = "summarize_lab_report"

// systemInstruction is the fixed format-enforcing prompt for the local
// summarizer. It describes the exact schema and forbids anything outside the
// JSON object; the sanitizer and validator enforce what the model ignores.
const systemInstruction = `You are a medical lab report summarizer running locally on the user's machine.

You MUST respond with ONLY one valid JSON object. Do not include any explanation,
backticks, markdown, or text outside the JSON. The JSON must have this shape:

{
  "overall_assessment": "<short plain English summary>",
  "notable_findings": [
    {
      "label": "string",
      "value": "string",
      "unit": "string or null",
      "reference_range": "string or null",
      "severity": "mild|moderate|severe"
    }
  ]
}

If you are unsure about a field, use null. Do NOT invent values.`

// Tool composes the local inference client, the sanitizer, and the schema
// into a single capability: lab text in, validated LabSummary out. It is
// idempotent given identical input and a deterministic model; with nonzero
// temperature the output is not bit-for-bit stable but is always
// schema-conformant or rejected.
type Tool struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewTool creates the extraction tool over the given provider.
func NewTool(provider llm.Provider, logger *zap.Logger) *Tool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tool{provider: provider, logger: logger}
}

// Schema returns the orchestrator-facing declaration of this capability.
func (t *Tool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name: ToolName,
		Description: "Summarize a raw lab report into structured abnormalities using a " +
			"local model running on the user's machine. Use this whenever the user " +
			"provides lab results as text.",
		Parameters: json.RawMessage(`{
  "type": "object",
  "required": ["lab_text"],
  "properties": {
    "lab_text": {
      "type": "string",
      "description": "The raw text of the lab report to summarize."
    }
  }
}`),
		Output: json.RawMessage(SchemaJSON),
	}
}

// Summarize runs one extraction. Transport failures from the provider
// (unavailable, service, protocol) and output failures (malformed, schema
// violation) are surfaced to the caller unchanged; nothing is swallowed and
// no intermediate state escapes.
func (t *Tool) Summarize(ctx context.Context, labText string) (*LabSummary, error) {
	resp, err := t.provider.Completion(ctx, &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemInstruction},
			{Role: llm.RoleUser, Content: labText},
		},
	})
	if err != nil {
		return nil, err
	}

	sanitized := Sanitize(resp.FirstContent())
	summary, err := Parse(sanitized)
	if err != nil {
		t.logger.Warn("lab summary rejected",
			zap.String("provider", t.provider.Name()),
			zap.Error(err))
		return nil, err
	}

	t.logger.Debug("lab summary extracted",
		zap.Int("findings", len(summary.NotableFindings)))
	return summary, nil
}
