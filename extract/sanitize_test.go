package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	payload := `{"overall_assessment":"ok","notable_findings":[]}`

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no fence returned trimmed",
			in:   "  " + payload + "\n",
			want: payload,
		},
		{
			name: "fence without tag",
			in:   "```\n" + payload + "\n```",
			want: payload,
		},
		{
			name: "fence with json tag",
			in:   "```json\n" + payload + "\n```",
			want: payload,
		},
		{
			name: "fence with uppercase tag",
			in:   "```JSON\n" + payload + "\n```",
			want: payload,
		},
		{
			name: "tag on same line as payload",
			in:   "```json " + payload + "```",
			want: payload,
		},
		{
			name: "unterminated fence",
			in:   "```json\n" + payload,
			want: payload,
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   "  \n\t ",
			want: "",
		},
		{
			name: "bare fence markers",
			in:   "```\n```",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_NeverTouchesPayloadInterior(t *testing.T) {
	// A fence marker inside the payload is content, not a wrapper.
	payload := "{\"overall_assessment\":\"uses ``` in text\",\"notable_findings\":[]}"
	assert.Equal(t, payload, Sanitize(payload))
}
