package extract

import "strings"

const fence = "```"

// Sanitize strips an optional enclosing markdown code fence (with or without
// a "json" language tag) from raw model output. The local model is instructed
// to emit only a JSON object, but small models still wrap the payload in
// presentational fences often enough that this tolerance layer pays for
// itself. It never alters the payload content and never fails; downstream
// validation still enforces the contract.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, fence) {
		return s
	}

	s = strings.TrimLeft(s[len(fence):], " \t\r\n")
	// Optional language tag immediately after the opening fence.
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = strings.TrimLeft(s[4:], " \t\r\n")
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimRight(s[:len(s)-len(fence)], " \t\r\n")
	}
	return s
}
