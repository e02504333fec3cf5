// Package engine implements the symptom analysis engine: vocabulary
// extraction, urgency classification, recommendation generation,
// explanation composition and conversational routing.
//
// All reference tables are fixed at process start and read-only thereafter;
// every operation is a pure function over its input plus these tables, so
// concurrent calls need no synchronization.
package engine

import (
	"regexp"
	"sort"
)

// symptomVocabulary is the closed set of recognizable symptom phrases.
// It is re-sorted longest-phrase-first at init; matching relies on that
// order so a short phrase never outranks a longer phrase containing it.
var symptomVocabulary = []string{
	"chest pain", "shortness of breath", "severe bleeding", "high fever",
	"difficulty breathing", "unconscious", "fever", "cough", "loss of taste",
	"loss of smell", "sore throat", "runny nose", "headache", "dizziness",
	"nausea", "vomiting", "abdominal pain", "diarrhea", "constipation",
	"back pain", "leg pain", "arm pain", "jaw pain", "shoulder pain",
	"joint pain", "swelling", "rash", "fatigue", "pain", "itching",
	"numbness", "palpitations", "weakness",
}

// emergencySymptoms trigger the EMERGENCY tier on any intersection.
var emergencySymptoms = map[string]bool{
	"chest pain":           true,
	"shortness of breath":  true,
	"severe bleeding":      true,
	"unconscious":          true,
	"difficulty breathing": true,
}

// cardiacCompanions combined with chest pain trigger HIGH_EMERGENCY.
var cardiacCompanions = []string{"arm pain", "jaw pain", "shoulder pain"}

// conditionRules map a canonical sorted "+"-joined symptom key to condition
// hypotheses. Lookup requires an exact set match; keys must use the same
// lowercase-sorted normalization as the classifier or lookups silently miss.
var conditionRules = map[string][]string{
	"chest pain+dizziness":           {"Possible cardiac issue (arrhythmia, ischemia)"},
	"arm pain+chest pain":            {"Possible heart attack - EMERGENCY"},
	"chest pain+jaw pain":            {"Possible heart attack - EMERGENCY"},
	"chest pain+shortness of breath": {"Cardiac or pulmonary emergency"},
	"cough+fever":                    {"Respiratory infection (flu, pneumonia, COVID-19)"},
	"fever+rash":                     {"Viral exanthem, allergic reaction"},
	"back pain+leg pain+numbness":    {"Sciatica, herniated disc"},
	"joint pain+swelling":            {"Arthritis (OA/RA), gout"},
	"leg pain+redness+swelling":      {"Deep vein thrombosis (DVT)"},
	"abdominal pain+nausea+vomiting": {"Gastroenteritis, food poisoning"},
}

// symptomExplanations hold the canned per-symptom explanation sentences.
// Symptoms without an entry get a synthesized generic sentence.
var symptomExplanations = map[string]string{
	"fever":               "Fever commonly indicates infection or inflammation. Monitor temperature and stay hydrated.",
	"cough":               "Cough may indicate respiratory infection, asthma, or irritation. Rest and stay hydrated.",
	"chest pain":          "Chest pain can be serious. If severe, crushing, or radiates to arm/jaw, seek emergency care immediately.",
	"shortness of breath": "Shortness of breath may require urgent evaluation, especially if sudden or severe.",
	"headache":            "Headache causes range from tension to migraines. Seek care if severe, sudden, or with vision changes.",
	"arm pain":            "Arm pain with chest pain could indicate heart issues. Isolated arm pain may be muscular or nerve-related.",
	"leg pain":            "Leg pain with swelling/redness could indicate blood clot. Otherwise may be muscular or joint issue.",
	"joint pain":          "Joint pain may indicate arthritis, injury, or inflammation. Rest and consider anti-inflammatories.",
	"abdominal pain":      "Abdominal pain varies from indigestion to serious conditions. Location and severity matter.",
	"back pain":           "Back pain is common but seek care if with leg weakness, numbness, or bowel/bladder changes.",
}

// followUpQuestions are asked at most once per analysis, first match wins,
// and only at the ROUTINE and URGENT tiers.
var followUpQuestions = map[string]string{
	"chest pain": "Does the pain radiate to your arm, jaw, or back?",
	"fever":      "What is your temperature?",
	"arm pain":   "Is the pain in one or both arms?",
}

// healthTips are candidates for the advice intent; one is chosen at random.
var healthTips = []string{
	"Stay hydrated (8 glasses of water daily) and get 7-9 hours of quality sleep.",
	"Eat a balanced diet with plenty of vegetables, lean protein, and whole grains.",
	"Aim for 150 minutes of moderate exercise weekly for heart health.",
	"Manage stress through meditation, deep breathing, or enjoyable hobbies.",
}

// fallbackReplies are candidates for unrecognized input.
var fallbackReplies = []string{
	"I can help with symptom analysis, medication info, and general health tips. What would you like?",
	"Ask me about symptoms (e.g., 'fever, cough, chest pain'), or ask for medication info (e.g., 'paracetamol').",
}

var greetingKeywords = []string{"hello", "hi", "hey", "good morning", "good evening"}

var emergencyKeywords = []string{"911", "emergency", "ambulance", "help me", "urgent", "dying", "heart attack"}

var adviceKeywords = []string{"advice", "tip", "healthy", "prevent"}

// drugKeywordPattern bounds the drug names the router recognizes inline.
var drugKeywordPattern = regexp.MustCompile(`\b(paracetamol|ibuprofen|aspirin|amoxicillin)\b`)

// phrasePattern pairs a vocabulary symptom with its compiled boundary matcher.
type phrasePattern struct {
	symptom string
	re      *regexp.Regexp
}

var vocabularyPatterns []phrasePattern

func init() {
	// Longest phrase first; stable sort keeps source order for equal lengths.
	sort.SliceStable(symptomVocabulary, func(i, j int) bool {
		return len(symptomVocabulary[i]) > len(symptomVocabulary[j])
	})

	vocabularyPatterns = make([]phrasePattern, 0, len(symptomVocabulary))
	for _, s := range symptomVocabulary {
		vocabularyPatterns = append(vocabularyPatterns, phrasePattern{
			symptom: s,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(s) + `\b`),
		})
	}
}

// Vocabulary returns a copy of the symptom vocabulary in matching order.
func Vocabulary() []string {
	out := make([]string, len(symptomVocabulary))
	copy(out, symptomVocabulary)
	return out
}
