package engine

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// clarificationResult is returned whenever normalization yields no symptoms.
// The classifier is never invoked for empty input; malformed input degrades
// to this ROUTINE result instead of failing.
func clarificationResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Urgency: domain.ROUTINE,
		Message: "I couldn't detect clear symptoms. Please describe them specifically or list them separated by commas.",
		Recommendations: []string{
			"Provide clearer symptom description",
			"List main symptoms separated by commas",
		},
		Matched: []string{},
	}
}

// Analyzer orchestrates extraction, urgency classification, recommendation
// generation and explanation composition into one analysis workflow.
type Analyzer struct {
	logger *logrus.Logger
	cache  *lru.Cache[string, domain.AnalysisResult]
}

// NewAnalyzer creates an analyzer with a bounded result cache. cacheSize
// values below 2 disable caching.
func NewAnalyzer(logger *logrus.Logger, cacheSize int) *Analyzer {
	a := &Analyzer{logger: logger}
	if cacheSize >= 2 {
		cache, err := lru.New[string, domain.AnalysisResult](cacheSize)
		if err == nil {
			a.cache = cache
		} else {
			logger.WithError(err).Warn("Failed to create analysis cache, continuing without")
		}
	}
	return a
}

// Analyze runs the full symptom analysis workflow over a resolved input.
//
// Normalization rules:
//   - text containing a comma: split on commas, trim, lowercase, treat the
//     segments as literal symptom tokens (the caller's segmentation is
//     trusted and the extractor is bypassed);
//   - text without a comma: free-text extraction over the vocabulary;
//   - token list: trim and lowercase each non-empty element directly.
//
// An empty symptom list short-circuits to the ROUTINE clarification result.
func (a *Analyzer) Analyze(input domain.SymptomInput) *domain.AnalysisResult {
	symptoms := normalizeInput(input)

	if len(symptoms) == 0 {
		a.logger.Debug("No symptoms resolved from input, returning clarification")
		return clarificationResult()
	}

	cacheKey := strings.Join(symptoms, "+")
	if a.cache != nil {
		if cached, ok := a.cache.Get(cacheKey); ok {
			return copyResult(cached)
		}
	}

	tier, urgencyMsg := Assess(symptoms)
	recommendations := Recommend(symptoms)
	explanation := Explain(symptoms, tier)

	result := &domain.AnalysisResult{
		Urgency:         tier,
		Message:         urgencyMsg + "\n\n" + explanation,
		Recommendations: recommendations,
		Matched:         symptoms,
	}

	a.logger.WithFields(logrus.Fields{
		"urgency":         tier.String(),
		"matched":         len(symptoms),
		"recommendations": len(recommendations),
	}).Info("Symptom analysis completed")

	if a.cache != nil {
		// Store an independent copy so caller mutations never reach the cache.
		a.cache.Add(cacheKey, *copyResult(*result))
	}

	return result
}

func normalizeInput(input domain.SymptomInput) []string {
	if input.IsList {
		return normalizeTokens(input.Tokens)
	}
	if strings.Contains(input.Text, ",") {
		return normalizeTokens(strings.Split(input.Text, ","))
	}
	return Extract(input.Text)
}

func normalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// copyResult returns a fresh result so cached slices are never shared
// with callers.
func copyResult(r domain.AnalysisResult) *domain.AnalysisResult {
	out := r
	out.Recommendations = append([]string(nil), r.Recommendations...)
	out.Matched = append([]string(nil), r.Matched...)
	return &out
}
