package gateway

import (
	"regexp"
	"strings"
)

// Trigger and escalation policy. Both predicates are deliberately explicit
// and deterministic so invocation behavior is testable independent of any
// model's compliance with prompt instructions.

// urgentPatterns are the red-flag signals that short-circuit the request
// into an escalation before extraction or guidance is even considered.
var urgentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bchest\s+pain\b`),
	regexp.MustCompile(`(?i)\b(trouble|difficulty|can'?t)\s+breath(e|ing)\b`),
	regexp.MustCompile(`(?i)\bshort(ness)?\s+of\s+breath\b`),
	regexp.MustCompile(`(?i)\bsevere\s+bleeding\b`),
	regexp.MustCompile(`(?i)\bstroke\b`),
	regexp.MustCompile(`(?i)\bone[- ]sided\s+weakness\b`),
	regexp.MustCompile(`(?i)\bface\s+droop(ing)?\b`),
	regexp.MustCompile(`(?i)\bslurred\s+speech\b`),
	regexp.MustCompile(`(?i)\bconfus(ed|ion)\b`),
	regexp.MustCompile(`(?i)\bfaint(ed|ing)?\b`),
	regexp.MustCompile(`(?i)\bunconscious\b`),
	regexp.MustCompile(`(?i)\bloss\s+of\s+consciousness\b`),
}

// labCues are explicit user references to attached lab data.
var labCues = []string{
	"labs below",
	"see labs",
	"lab results",
	"lab report",
	"lab work",
	"bloodwork",
	"blood work",
}

// labResultLine matches one tabular result row: a test name, a numeric
// value, and a reference-range-looking parenthetical or a dotted leader.
var (
	labRangeLine  = regexp.MustCompile(`\d[\d.,]*\s*\S*\s*\(\s*[<>]?\s*\d[^)]*\)`)
	labLeaderLine = regexp.MustCompile(`\.{4,}\s*\d`)
)

// minLabLines is how many result-looking lines make a text block count as an
// embedded lab report on its own, without an explicit cue.
const minLabLines = 3

// UrgentSignal reports whether the message contains a red-flag symptom.
func UrgentSignal(message string) bool {
	for _, p := range urgentPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

// NeedsExtraction reports whether the message warrants a structured lab
// extraction before guidance is composed: either the user explicitly points
// at lab data, or the message body contains a substantial run of
// result-looking lines.
func NeedsExtraction(message string) bool {
	lower := strings.ToLower(message)
	for _, cue := range labCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}

	count := 0
	for _, line := range strings.Split(message, "\n") {
		if labRangeLine.MatchString(line) || labLeaderLine.MatchString(line) {
			count++
			if count >= minLabLines {
				return true
			}
		}
	}
	return false
}
