package engine

import "strings"

// Extract finds vocabulary symptoms in free text. Matching is
// case-insensitive and phrase-atomic: each vocabulary phrase is tested as a
// whole-word boundary match against the lowercased input, longest phrase
// first. Boundary checks are independent per phrase, so a text containing
// "shoulder pain" matches both "shoulder pain" and "pain"; subsumed matches
// are intentionally not suppressed.
//
// Output order follows the vocabulary iteration order (phrase length
// ranking), not position in the input. Duplicates collapse keeping first
// occurrence. Empty input yields an empty slice; Extract never fails.
func Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	lowered := strings.ToLower(text)
	seen := make(map[string]bool, 4)
	matched := make([]string, 0, 4)

	for _, p := range vocabularyPatterns {
		if !p.re.MatchString(lowered) {
			continue
		}
		if !seen[p.symptom] {
			seen[p.symptom] = true
			matched = append(matched, p.symptom)
		}
	}

	return matched
}

// ContainsSymptom reports whether any vocabulary phrase occurs as a
// substring of the lowercased text. The router uses this looser check to
// decide whether to hand a chat message to the analyzer.
func ContainsSymptom(text string) bool {
	lowered := strings.ToLower(text)
	for _, s := range symptomVocabulary {
		if strings.Contains(lowered, s) {
			return true
		}
	}
	return false
}
