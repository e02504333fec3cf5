package engine

import (
	"fmt"
	"strings"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// Explain assembles the human-readable explanation for a symptom list.
// The header names the detected symptoms comma-joined; each symptom then
// contributes its canned explanation in input order, or a synthesized
// generic sentence when none is registered.
//
// At the ROUTINE and URGENT tiers exactly one follow-up question is appended
// after two newlines: the first registered question found scanning the
// symptoms in order. Emergency tiers never ask follow-ups.
func Explain(symptoms []string, tier domain.UrgencyTier) string {
	parts := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if exp, ok := symptomExplanations[s]; ok {
			parts = append(parts, exp)
		} else {
			parts = append(parts, fmt.Sprintf(
				"%s should be evaluated by a healthcare professional if persistent or severe.",
				capitalize(s)))
		}
	}

	msg := fmt.Sprintf("Detected symptoms: %s.\n\n%s",
		strings.Join(symptoms, ", "), strings.Join(parts, " "))

	if !tier.IsEmergency() {
		for _, s := range symptoms {
			if q, ok := followUpQuestions[s]; ok {
				msg += "\n\nTo help assess better: " + q
				break
			}
		}
	}

	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
