package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healthai-suite/triage-server/internal/domain"
)

func TestAssess(t *testing.T) {
	tests := []struct {
		name     string
		symptoms []string
		want     domain.UrgencyTier
	}{
		{
			name:     "chest pain with arm pain is high emergency",
			symptoms: []string{"chest pain", "arm pain"},
			want:     domain.HIGH_EMERGENCY,
		},
		{
			name:     "order does not matter",
			symptoms: []string{"arm pain", "chest pain"},
			want:     domain.HIGH_EMERGENCY,
		},
		{
			name:     "case does not matter",
			symptoms: []string{"Chest Pain", "ARM PAIN"},
			want:     domain.HIGH_EMERGENCY,
		},
		{
			name:     "chest pain with jaw pain is high emergency",
			symptoms: []string{"chest pain", "jaw pain"},
			want:     domain.HIGH_EMERGENCY,
		},
		{
			name:     "chest pain with shoulder pain is high emergency",
			symptoms: []string{"shoulder pain", "chest pain"},
			want:     domain.HIGH_EMERGENCY,
		},
		{
			name:     "chest pain alone is emergency, not high emergency",
			symptoms: []string{"chest pain"},
			want:     domain.EMERGENCY,
		},
		{
			name:     "difficulty breathing is emergency",
			symptoms: []string{"difficulty breathing", "fatigue"},
			want:     domain.EMERGENCY,
		},
		{
			name:     "exact condition rule match is urgent",
			symptoms: []string{"fever", "cough"},
			want:     domain.URGENT,
		},
		{
			name:     "joint pain with swelling is urgent",
			symptoms: []string{"joint pain", "swelling"},
			want:     domain.URGENT,
		},
		{
			name:     "extra symptom breaks the exact match and drops to routine",
			symptoms: []string{"fever", "cough", "fatigue"},
			want:     domain.ROUTINE,
		},
		{
			name:     "unrelated symptoms are routine",
			symptoms: []string{"itching"},
			want:     domain.ROUTINE,
		},
		{
			name:     "empty set is routine",
			symptoms: []string{},
			want:     domain.ROUTINE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, msg := Assess(tt.symptoms)
			assert.Equal(t, tt.want, tier)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestAssess_Messages(t *testing.T) {
	tier, msg := Assess([]string{"chest pain", "arm pain"})
	assert.Equal(t, domain.HIGH_EMERGENCY, tier)
	assert.Contains(t, msg, "HEART ATTACK")
	assert.Contains(t, msg, "Call emergency services")

	tier, msg = Assess([]string{"severe bleeding", "dizziness"})
	assert.Equal(t, domain.EMERGENCY, tier)
	assert.Contains(t, msg, "severe bleeding")

	tier, msg = Assess([]string{"fever", "rash"})
	assert.Equal(t, domain.URGENT, tier)
	assert.Contains(t, msg, "Viral exanthem")
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "cough+fever", CanonicalKey([]string{"fever", "cough"}))
	assert.Equal(t, "cough+fever", CanonicalKey([]string{"Cough", "FEVER"}))
	assert.Equal(t, "", CanonicalKey(nil))
}

func TestConditionRuleKeysAreCanonical(t *testing.T) {
	// Rule keys must use the same lowercase-sorted normalization as the
	// classifier or lookups silently miss.
	for key := range conditionRules {
		parts := splitKey(key)
		assert.Equal(t, CanonicalKey(parts), key, "rule key %q is not canonical", key)
	}
}

func splitKey(key string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(key); i++ {
		if i == len(key) || key[i] == '+' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	return parts
}
