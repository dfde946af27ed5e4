package extract

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Severity grades an abnormal finding. Values outside the enum are a
// validation failure, never silently coerced.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Finding is one abnormal result reported by the summarizer. Unit and
// ReferenceRange are pointers so that absence stays distinct from an empty
// string.
type Finding struct {
	Label          string   `json:"label"`
	Value          string   `json:"value"`
	Unit           *string  `json:"unit"`
	ReferenceRange *string  `json:"reference_range"`
	Severity       Severity `json:"severity"`
}

// LabSummary is the validated structured record produced per extraction. It
// is transient: constructed, validated, handed to the caller, never
// persisted. NotableFindings preserves the order the model emitted; an empty
// list is a valid summary, distinct from a failed extraction.
type LabSummary struct {
	OverallAssessment string    `json:"overall_assessment"`
	NotableFindings   []Finding `json:"notable_findings"`
}

// SchemaJSON is the canonical JSON Schema for LabSummary. It doubles as the
// tool's declared output and as the shape description embedded in the system
// instruction.
const SchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["overall_assessment", "notable_findings"],
  "properties": {
    "overall_assessment": {"type": "string", "minLength": 1},
    "notable_findings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "value", "severity"],
        "properties": {
          "label": {"type": "string", "minLength": 1},
          "value": {"type": "string", "minLength": 1},
          "unit": {"type": ["string", "null"]},
          "reference_range": {"type": ["string", "null"]},
          "severity": {"enum": ["mild", "moderate", "severe"]}
        }
      }
    }
  }
}`

var labSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("lab_summary.json", strings.NewReader(SchemaJSON)); err != nil {
		panic(err)
	}
	return c.MustCompile("lab_summary.json")
}

// Parse decodes sanitized model output into a LabSummary, validating it
// against SchemaJSON. Acceptance is all-or-nothing: a parse failure returns
// *MalformedOutputError with the offending text, a schema failure returns
// *SchemaViolationError naming the failed fields, and only a fully valid
// object is ever returned.
func Parse(sanitized string) (*LabSummary, error) {
	var doc any
	if err := json.Unmarshal([]byte(sanitized), &doc); err != nil {
		return nil, &MalformedOutputError{Raw: sanitized, Err: err}
	}

	if err := labSchema.Validate(doc); err != nil {
		return nil, &SchemaViolationError{Fields: violationFields(err), Err: err}
	}

	var summary LabSummary
	if err := json.Unmarshal([]byte(sanitized), &summary); err != nil {
		// Schema-valid JSON that still fails the typed decode means the
		// schema and the struct have drifted apart.
		return nil, &SchemaViolationError{Err: err}
	}
	if summary.NotableFindings == nil {
		summary.NotableFindings = []Finding{}
	}
	return &summary, nil
}

// violationFields collects the instance locations of the leaf causes of a
// jsonschema validation error, deduplicated in encounter order.
func violationFields(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil
	}

	var fields []string
	seen := make(map[string]struct{})
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			if _, ok := seen[loc]; !ok {
				seen[loc] = struct{}{}
				fields = append(fields, loc)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return fields
}
