package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healthai-suite/triage-server/internal/domain"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		symptoms []string
		want     []string
	}{
		{
			name:     "cardiac combination short-circuits",
			symptoms: []string{"chest pain", "arm pain", "fever"},
			want:     cardiacActions,
		},
		{
			name:     "jaw pain also triggers cardiac actions",
			symptoms: []string{"jaw pain", "chest pain"},
			want:     cardiacActions,
		},
		{
			name:     "shoulder pain does not trigger the cardiac block",
			symptoms: []string{"chest pain", "shoulder pain"},
			want:     genericActions,
		},
		{
			name:     "respiratory block",
			symptoms: []string{"cough"},
			want:     respiratoryActions,
		},
		{
			name:     "musculoskeletal block",
			symptoms: []string{"back pain"},
			want:     musculoskeletalActions,
		},
		{
			name:     "both blocks fire, truncated to four",
			symptoms: []string{"fever", "headache"},
			want:     respiratoryActions,
		},
		{
			name:     "generic fallback",
			symptoms: []string{"rash"},
			want:     genericActions,
		},
		{
			name:     "empty input gets generic fallback",
			symptoms: nil,
			want:     genericActions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommend(tt.symptoms)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), domain.MaxRecommendations)
		})
	}
}

func TestExplain(t *testing.T) {
	msg := Explain([]string{"fever", "swelling"}, domain.ROUTINE)
	assert.Contains(t, msg, "Detected symptoms: fever, swelling.")
	assert.Contains(t, msg, symptomExplanations["fever"])
	// No canned explanation for swelling: generic sentence is synthesized.
	assert.Contains(t, msg, "Swelling should be evaluated by a healthcare professional")
	// Fever has a registered follow-up and the tier allows it.
	assert.Contains(t, msg, "To help assess better: What is your temperature?")
}

func TestExplain_FollowUpSuppressedAtEmergencyTiers(t *testing.T) {
	for _, tier := range []domain.UrgencyTier{domain.EMERGENCY, domain.HIGH_EMERGENCY} {
		msg := Explain([]string{"chest pain"}, tier)
		assert.NotContains(t, msg, "To help assess better")
	}
}

func TestExplain_FirstFollowUpOnly(t *testing.T) {
	// Both chest pain and fever have follow-ups; only the first in input
	// order is asked.
	msg := Explain([]string{"fever", "chest pain"}, domain.URGENT)
	assert.Contains(t, msg, "What is your temperature?")
	assert.NotContains(t, msg, "radiate")
}
