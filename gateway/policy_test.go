package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgentSignal(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"chest pain", "I've had chest pain since this morning", true},
		{"chest pain uppercase", "CHEST PAIN and sweating", true},
		{"trouble breathing", "my dad is having trouble breathing", true},
		{"cant breathe", "I can't breathe properly", true},
		{"shortness of breath", "shortness of breath when climbing stairs", true},
		{"severe bleeding", "there is severe bleeding from the cut", true},
		{"stroke", "could this be a stroke?", true},
		{"one-sided weakness", "sudden one-sided weakness in my arm", true},
		{"face drooping", "her face is drooping on the left", true},
		{"slurred speech", "he has slurred speech since lunch", true},
		{"confusion", "grandma seems confused and dizzy", true},
		{"fainted", "I fainted twice today", true},
		{"unconscious", "she is unconscious", true},
		{"loss of consciousness", "brief loss of consciousness after standing up", true},

		{"plain cold", "I have a runny nose and a mild cough", false},
		{"labs only", "my lab results are attached, WBC 14.5 (4.0-10.0)", false},
		{"chest word alone", "I have some chest congestion", false},
		{"breathing fine", "breathing exercises are helping", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UrgentSignal(tt.message))
		})
	}
}

func TestNeedsExtraction(t *testing.T) {
	labBlock := "Fever for 3 days, here are the labs below:\n" +
		"WBC 14.5 x10^3/uL (4.0-10.0)\n" +
		"CRP 60 mg/L (<5)\n" +
		"Hemoglobin 13.1 g/dL (12.0-16.0)"

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"explicit cue", "can you look at my lab results?", true},
		{"bloodwork cue", "just got my bloodwork back, what does it mean?", true},
		{"labs below cue", "see the labs below\nWBC 14.5", true},
		{"cue with block", labBlock, true},
		{"three range lines no cue", "WBC 14.5 (4.0-10.0)\nCRP 60 (<5)\nPLT 140 (150-400)", true},
		{"dotted leader lines", "WBC ......... 14.5\nCRP ........ 60\nHGB ....... 13.1", true},

		{"two range lines no cue", "WBC 14.5 (4.0-10.0)\nCRP 60 (<5)", false},
		{"symptoms only", "I've had a fever and sore throat for two days", false},
		{"numbers without ranges", "my temperature was 38.5 and pulse 92", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsExtraction(tt.message))
		})
	}
}
