// Package domain contains core business entities and types for symptom
// triage and health-information responses.
//
// The urgency model is a rule-based heuristic for educational use; it is
// not a diagnostic system and never replaces professional medical advice.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// UrgencyTier represents the triage urgency assigned to a symptom set.
// Tiers form a strict priority order: HIGH_EMERGENCY > EMERGENCY > URGENT >
// ROUTINE. Exactly one tier is returned per analysis; a higher tier always
// pre-empts lower ones.
type UrgencyTier string

const (
	HIGH_EMERGENCY UrgencyTier = "HIGH_EMERGENCY"
	EMERGENCY      UrgencyTier = "EMERGENCY"
	URGENT         UrgencyTier = "URGENT"
	ROUTINE        UrgencyTier = "ROUTINE"
)

// ChatRole identifies the author of a transcript message.
type ChatRole string

const (
	RoleUser ChatRole = "user"
	RoleBot  ChatRole = "bot"
)

// IsValid validates that the tier is one of the four triage levels.
// Only valid tiers may be attached to results or transcript messages.
func (u UrgencyTier) IsValid() bool {
	switch u {
	case HIGH_EMERGENCY, EMERGENCY, URGENT, ROUTINE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tier.
func (u UrgencyTier) String() string {
	return string(u)
}

// Rank returns the tier's priority, higher means more urgent.
// Used for ordering and for tag derivation, never for classification itself.
func (u UrgencyTier) Rank() int {
	switch u {
	case HIGH_EMERGENCY:
		return 3
	case EMERGENCY:
		return 2
	case URGENT:
		return 1
	default:
		return 0
	}
}

// IsEmergency reports whether the tier calls for immediate escalation.
// Follow-up questions are suppressed at emergency tiers.
func (u UrgencyTier) IsEmergency() bool {
	return u == HIGH_EMERGENCY || u == EMERGENCY
}

// LogFields returns structured logging fields for audit trails.
func (u UrgencyTier) LogFields() map[string]any {
	return map[string]any{
		"urgency":      string(u),
		"urgency_rank": u.Rank(),
		"is_emergency": u.IsEmergency(),
	}
}

// IsValid validates the chat role.
func (r ChatRole) IsValid() bool {
	return r == RoleUser || r == RoleBot
}

// Symptom is a canonical phrase drawn from the fixed vocabulary, always
// lowercase. Multi-word phrases are matched atomically at word boundaries.
type Symptom = string

// AnalysisResult is the structured outcome of one symptom analysis.
// Produced fresh per call; it carries no identity beyond the call that
// created it.
type AnalysisResult struct {
	Urgency         UrgencyTier `json:"urgency"`
	Message         string      `json:"message"`
	Recommendations []string    `json:"recommendations"`
	Matched         []Symptom   `json:"matched"`
}

// Validate ensures the result is well-formed before it leaves the engine.
func (a *AnalysisResult) Validate() error {
	if !a.Urgency.IsValid() {
		return fmt.Errorf("analysis result validation: %w", ErrInvalidUrgency)
	}
	if a.Message == "" {
		return fmt.Errorf("analysis result validation: %w", errors.New("message is required"))
	}
	if len(a.Recommendations) > MaxRecommendations {
		return fmt.Errorf("analysis result validation: %w", errors.New("too many recommendations"))
	}
	return nil
}

// MaxRecommendations caps the recommendation list per analysis.
const MaxRecommendations = 4

// SymptomInput is the explicit input variant accepted by the analyzer:
// either raw text or an already-segmented token list. Resolving the shape
// once at the boundary keeps runtime type inspection out of the engine.
type SymptomInput struct {
	Text   string
	Tokens []string
	IsList bool
}

// TextInput wraps free text (possibly comma-separated) for analysis.
func TextInput(text string) SymptomInput {
	return SymptomInput{Text: text}
}

// TokenInput wraps caller-segmented symptom tokens for analysis.
func TokenInput(tokens []string) SymptomInput {
	return SymptomInput{Tokens: tokens, IsList: true}
}

// DrugRecord describes one entry of the static medication reference table.
// Records are immutable and loaded once at process start.
type DrugRecord struct {
	Name        string `json:"name"`
	Uses        string `json:"uses"`
	Dosage      string `json:"dosage"`
	SideEffects string `json:"side_effects"`
	Precautions string `json:"precautions"`
}

// DrugLookupStatus tags the three possible lookup outcomes. NotFound and
// Ambiguous are ordinary results, not errors.
type DrugLookupStatus string

const (
	DrugFound     DrugLookupStatus = "found"
	DrugAmbiguous DrugLookupStatus = "ambiguous"
	DrugNotFound  DrugLookupStatus = "not_found"
)

// DrugLookupResult is the tagged union returned by the reference lookup.
type DrugLookupResult struct {
	Status  DrugLookupStatus `json:"status"`
	Record  *DrugRecord      `json:"record,omitempty"`
	Matches []string         `json:"matches,omitempty"`
}

// ChatMessage is one entry of a session transcript. Messages are append-only
// and never mutated after creation; a transcript can only grow or be cleared
// in full.
type ChatMessage struct {
	Role       ChatRole    `json:"role"`
	Content    string      `json:"content"`
	UrgencyTag UrgencyTier `json:"urgency_tag,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Validate ensures a message is acceptable for appending to a transcript.
func (m *ChatMessage) Validate() error {
	if !m.Role.IsValid() {
		return fmt.Errorf("chat message validation: %w", errors.New("invalid role"))
	}
	if m.Content == "" {
		return fmt.Errorf("chat message validation: %w", errors.New("content is required"))
	}
	if m.UrgencyTag != "" && !m.UrgencyTag.IsValid() {
		return fmt.Errorf("chat message validation: %w", ErrInvalidUrgency)
	}
	return nil
}

// RiskPrediction is the outcome of one heart-disease risk model invocation.
// Probabilities are ordered [P(no disease), P(disease)].
type RiskPrediction struct {
	Label         int                `json:"label"`
	Probabilities [2]float64         `json:"probabilities"`
	Importances   map[string]float64 `json:"importances,omitempty"`
}

// HighRisk reports whether the model predicted the positive class.
func (p *RiskPrediction) HighRisk() bool {
	return p.Label == 1
}

// Confidence returns the probability assigned to the predicted class.
func (p *RiskPrediction) Confidence() float64 {
	return p.Probabilities[p.Label&1]
}
