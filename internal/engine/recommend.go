package engine

import "github.com/healthai-suite/triage-server/internal/domain"

// cardiacActions short-circuit every other block when chest pain appears
// with arm or jaw pain.
var cardiacActions = []string{
	"Call emergency services IMMEDIATELY",
	"Do not drive yourself to hospital",
	"Chew aspirin if available and not allergic",
	"Stay calm and rest while waiting for help",
}

var respiratoryActions = []string{
	"Monitor temperature regularly",
	"Stay hydrated with water and electrolytes",
	"Rest and avoid strenuous activity",
	"Use humidifier for cough relief",
}

var musculoskeletalActions = []string{
	"Rest in comfortable position",
	"Apply ice or heat as appropriate",
	"Consider over-the-counter pain relief if suitable",
	"Avoid activities that worsen pain",
}

var genericActions = []string{
	"Monitor symptoms for changes",
	"Stay hydrated and rest",
	"Schedule doctor appointment if symptoms persist beyond 3 days",
	"Seek immediate care if symptoms worsen suddenly",
}

// Recommend produces an ordered action list for a symptom set, at most
// MaxRecommendations items. The cardiac special case returns exactly its
// four actions; otherwise the respiratory and musculoskeletal blocks
// accumulate independently (both can fire), falling back to the generic
// block when neither does.
func Recommend(symptoms []string) []string {
	lowered := lowerAll(symptoms)

	if containsAll(lowered, "chest pain") && containsAny(lowered, "arm pain", "jaw pain") {
		out := make([]string, len(cardiacActions))
		copy(out, cardiacActions)
		return out
	}

	var recs []string
	if containsAny(lowered, "fever", "cough", "shortness of breath") {
		recs = append(recs, respiratoryActions...)
	}
	if containsAny(lowered, "headache", "back pain", "joint pain") {
		recs = append(recs, musculoskeletalActions...)
	}
	if len(recs) == 0 {
		recs = append(recs, genericActions...)
	}

	if len(recs) > domain.MaxRecommendations {
		recs = recs[:domain.MaxRecommendations]
	}
	return recs
}
