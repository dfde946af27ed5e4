package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FencedEmptyFindings(t *testing.T) {
	raw := "```json\n{\"overall_assessment\":\"ok\",\"notable_findings\":[]}\n```"

	summary, err := Parse(Sanitize(raw))
	require.NoError(t, err)
	assert.Equal(t, "ok", summary.OverallAssessment)
	assert.NotNil(t, summary.NotableFindings)
	assert.Empty(t, summary.NotableFindings)
}

func TestParse_FullFinding(t *testing.T) {
	raw := `{
		"overall_assessment": "mild leukocytosis with elevated inflammatory markers",
		"notable_findings": [
			{"label": "WBC", "value": "14.5", "unit": "x10^3/uL", "reference_range": "4.0-10.0", "severity": "mild"},
			{"label": "CRP", "value": "60", "unit": null, "reference_range": null, "severity": "moderate"}
		]
	}`

	summary, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, summary.NotableFindings, 2)

	first := summary.NotableFindings[0]
	assert.Equal(t, "WBC", first.Label)
	assert.Equal(t, "14.5", first.Value)
	require.NotNil(t, first.Unit)
	assert.Equal(t, "x10^3/uL", *first.Unit)
	require.NotNil(t, first.ReferenceRange)
	assert.Equal(t, "4.0-10.0", *first.ReferenceRange)
	assert.Equal(t, SeverityMild, first.Severity)

	// Absent-by-null stays distinct from empty string.
	second := summary.NotableFindings[1]
	assert.Nil(t, second.Unit)
	assert.Nil(t, second.ReferenceRange)
	assert.Equal(t, SeverityModerate, second.Severity)
}

func TestParse_SeverityOutsideEnumRejected(t *testing.T) {
	raw := `{"overall_assessment":"x","notable_findings":[{"label":"WBC","value":"14.5","unit":"x10^3/µL","reference_range":"4.0-10.0","severity":"extreme"}]}`

	summary, err := Parse(raw)
	assert.Nil(t, summary, "rejection must be total, never a partial object")

	var violation *SchemaViolationError
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Fields, "/notable_findings/0/severity")
}

func TestParse_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing assessment", `{"notable_findings":[]}`},
		{"empty assessment", `{"overall_assessment":"","notable_findings":[]}`},
		{"missing findings list", `{"overall_assessment":"ok"}`},
		{"null findings list", `{"overall_assessment":"ok","notable_findings":null}`},
		{"finding missing label", `{"overall_assessment":"ok","notable_findings":[{"value":"1","severity":"mild"}]}`},
		{"finding missing value", `{"overall_assessment":"ok","notable_findings":[{"label":"WBC","severity":"mild"}]}`},
		{"finding missing severity", `{"overall_assessment":"ok","notable_findings":[{"label":"WBC","value":"1"}]}`},
		{"not an object", `["ok"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := Parse(tt.raw)
			assert.Nil(t, summary)
			var violation *SchemaViolationError
			require.ErrorAs(t, err, &violation)
			assert.NotEmpty(t, violation.Fields)
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	summary, err := Parse("the labs look fine to me")
	assert.Nil(t, summary)

	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "the labs look fine to me", malformed.Raw)
}

func TestParse_ExtraFieldsTolerated(t *testing.T) {
	// Models occasionally add fields; unknown keys are not a violation.
	raw := `{"overall_assessment":"ok","notable_findings":[],"confidence":0.9}`
	summary, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "ok", summary.OverallAssessment)
}
