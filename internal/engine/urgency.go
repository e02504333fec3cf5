package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// Assess assigns an urgency tier to a symptom set. Rules are evaluated in
// strict priority order and the first match wins:
//
//  1. HIGH_EMERGENCY: chest pain together with arm, jaw or shoulder pain.
//  2. EMERGENCY: any intersection with the fixed emergency symptom set.
//  3. URGENT: the canonical sorted key exactly matches a condition rule.
//  4. ROUTINE: everything else.
//
// The URGENT rule requires an exact set match, not subset or superset: an
// extra unrelated symptom alongside a known combination falls through to
// ROUTINE.
func Assess(symptoms []string) (domain.UrgencyTier, string) {
	lowered := lowerAll(symptoms)

	if containsAll(lowered, "chest pain") && containsAny(lowered, cardiacCompanions...) {
		return domain.HIGH_EMERGENCY,
			"POSSIBLE HEART ATTACK - Chest pain with arm/jaw pain could indicate a cardiac emergency. Call emergency services IMMEDIATELY."
	}

	var emergencyFound []string
	for _, s := range lowered {
		if emergencySymptoms[s] {
			emergencyFound = append(emergencyFound, s)
		}
	}
	if len(emergencyFound) > 0 {
		return domain.EMERGENCY, fmt.Sprintf(
			"EMERGENCY detected: %s. Seek immediate medical care or call emergency services.",
			strings.Join(emergencyFound, ", "))
	}

	if hypotheses, ok := conditionRules[CanonicalKey(lowered)]; ok {
		return domain.URGENT, fmt.Sprintf(
			"Urgent: %s. Consult a healthcare professional soon.",
			strings.Join(hypotheses, ", "))
	}

	return domain.ROUTINE, "Monitor symptoms and schedule a routine checkup if persistent."
}

// CanonicalKey builds the lowercase sorted "+"-joined key used for
// condition-rule lookups. Classification treats the symptom list as a set;
// the same normalization builds the rule table keys.
func CanonicalKey(symptoms []string) string {
	sorted := lowerAll(symptoms)
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}

func lowerAll(symptoms []string) []string {
	out := make([]string, len(symptoms))
	for i, s := range symptoms {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAll(haystack []string, needles ...string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsAny(haystack []string, needles ...string) bool {
	for _, n := range needles {
		for _, h := range haystack {
			if h == n {
				return true
			}
		}
	}
	return false
}
