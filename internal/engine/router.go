package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/domain"
	"github.com/healthai-suite/triage-server/internal/drugs"
)

const greetingReply = "Hello! I'm HealthAI - I can help analyze symptoms, give medication information (educational), and provide general health tips. How may I assist you?"

const emergencyReply = "If this is an emergency, call your local emergency number right away. I am not a replacement for emergency care."

const emptyInputReply = "Please type a message."

// Router classifies a raw chat message into an intent and dispatches to the
// analyzer or the drug store. Intent checks run in a fixed order on the
// trimmed lowercased text; the first match wins.
//
// The random source is injected so tests can seed it and assert membership
// in the fixed candidate sets. A mutex guards it; *rand.Rand is not safe for
// concurrent use.
type Router struct {
	logger   *logrus.Logger
	analyzer *Analyzer
	drugs    *drugs.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRouter creates a conversational router over the given collaborators.
func NewRouter(logger *logrus.Logger, analyzer *Analyzer, store *drugs.Store, rng *rand.Rand) *Router {
	return &Router{
		logger:   logger,
		analyzer: analyzer,
		drugs:    store,
		rng:      rng,
	}
}

// Respond produces the reply for one chat message plus the urgency tag to
// record on the bot's transcript entry. Non-analysis replies carry ROUTINE,
// except the fixed emergency escalation which carries EMERGENCY.
func (r *Router) Respond(input string) (string, domain.UrgencyTier) {
	if strings.TrimSpace(input) == "" {
		return emptyInputReply, domain.ROUTINE
	}

	txt := strings.ToLower(strings.TrimSpace(input))

	if containsAnySubstring(txt, greetingKeywords) {
		return greetingReply, domain.ROUTINE
	}

	if m := drugKeywordPattern.FindStringSubmatch(txt); m != nil {
		if res := r.drugs.Lookup(m[1]); res.Status == domain.DrugFound {
			return formatDrugRecord(res.Record), domain.ROUTINE
		}
		// No single record: fall through to the later checks.
	}

	if containsAnySubstring(txt, emergencyKeywords) {
		r.logger.WithField("intent", "emergency_keyword").Info("Emergency escalation reply")
		return emergencyReply, domain.EMERGENCY
	}

	if strings.Contains(input, ",") || ContainsSymptom(txt) {
		analysis := r.analyzer.Analyze(domain.TextInput(input))
		return formatAnalysis(analysis), analysis.Urgency
	}

	if containsAnySubstring(txt, adviceKeywords) {
		return "Health Tip: " + r.pick(healthTips), domain.ROUTINE
	}

	return r.pick(fallbackReplies), domain.ROUTINE
}

func (r *Router) pick(candidates []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return candidates[r.rng.Intn(len(candidates))]
}

// formatAnalysis renders urgency, message and numbered recommendations.
func formatAnalysis(a *domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Urgency: %s\n\n%s\n\nRecommendations:\n", a.Urgency, a.Message)
	for i, rec := range a.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDrugRecord(rec *domain.DrugRecord) string {
	return fmt.Sprintf("%s\n\nUses: %s\nTypical dosage: %s\nSide effects: %s\nPrecautions: %s",
		rec.Name, rec.Uses, rec.Dosage, rec.SideEffects, rec.Precautions)
}

func containsAnySubstring(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
