package gateway

import (
	"fmt"
	"strings"

	"github.com/clinsight/labtriage/extract"
)

// Disclaimer terminates every outward-facing response.
const Disclaimer = "This is not medical advice."

// escalationReply is the fixed urgent-escalation response. It is composed
// without extraction or general guidance.
const escalationReply = "Your message mentions symptoms that can signal an emergency. " +
	"Please seek urgent or emergency care now, or call your local emergency number. " +
	"Do not wait for lab results or online guidance."

var severityPhrases = map[extract.Severity]string{
	extract.SeverityMild:     "mildly out of range",
	extract.SeverityModerate: "moderately out of range",
	extract.SeveritySevere:   "severely out of range",
}

// composeEscalation renders the urgent short-circuit response.
func composeEscalation() string {
	return escalationReply + "\n\n" + Disclaimer
}

// composeWithSummary folds the validated summary into plain-language
// guidance. The structured object is translated, never serialized: no JSON,
// no raw field names in the outward response.
func composeWithSummary(summary *extract.LabSummary) string {
	var b strings.Builder

	b.WriteString("Here is a plain-language look at your labs: ")
	b.WriteString(strings.TrimSpace(summary.OverallAssessment))
	if !strings.HasSuffix(b.String(), ".") {
		b.WriteString(".")
	}
	b.WriteString("\n")

	if len(summary.NotableFindings) == 0 {
		b.WriteString("\nNo notable abnormal results stood out in the report.\n")
	} else {
		b.WriteString("\nResults worth mentioning to a clinician:\n")
		for _, f := range summary.NotableFindings {
			b.WriteString("- ")
			b.WriteString(describeFinding(f))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nSensible next steps:\n")
	b.WriteString("- Share these results with your clinician, especially the items above.\n")
	b.WriteString("- Contact a clinician promptly if symptoms worsen or new ones appear.\n")
	b.WriteString("- Rest, fluids, and fever control are reasonable while you wait.\n")
	b.WriteString("\n")
	b.WriteString(Disclaimer)
	return b.String()
}

// describeFinding renders one finding as a sentence fragment.
func describeFinding(f extract.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s came back at %s", f.Label, f.Value)
	if f.Unit != nil && *f.Unit != "" {
		fmt.Fprintf(&b, " %s", *f.Unit)
	}
	if f.ReferenceRange != nil && *f.ReferenceRange != "" {
		fmt.Fprintf(&b, " (typical range %s)", *f.ReferenceRange)
	}
	phrase, ok := severityPhrases[f.Severity]
	if !ok {
		phrase = "out of range"
	}
	fmt.Fprintf(&b, ", which is %s", phrase)
	return b.String()
}

// composeDegraded is used when extraction was warranted but failed. It states
// that labs could not be summarized and falls back to general guidance,
// without any raw error detail.
func composeDegraded() string {
	return "I could not reliably summarize the lab results you provided, so the guidance " +
		"below is general.\n\n" + generalGuidance() + "\n" + Disclaimer
}

// composeGeneral is the no-extraction path.
func composeGeneral() string {
	return generalGuidance() + "\n" + Disclaimer
}

func generalGuidance() string {
	return "Sensible next steps:\n" +
		"- Note how long symptoms have lasted and whether they are getting better or worse.\n" +
		"- Contact a clinician if symptoms persist beyond a few days, worsen, or concern you.\n" +
		"- Rest, fluids, and over-the-counter symptom relief are reasonable for mild illness.\n"
}
