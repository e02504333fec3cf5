// Package risk wraps the externally trained heart-disease classifier.
// The model is a shared read-only collaborator reached over HTTP; this
// package validates feature vectors, paces and guards the calls, and caches
// predictions. It never retries on failure; the caller decides whether to
// prompt for corrected input.
package risk

import (
	"fmt"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// FeatureVector is the fixed-order 13-field clinical input the model
// expects. Field order in ToSlice must never change; the model was trained
// against exactly this ordering.
type FeatureVector struct {
	Age            float64 `json:"age"`
	Sex            float64 `json:"sex"`      // 0 female, 1 male
	ChestPainType  float64 `json:"cp"`       // 0-3
	RestingBP      float64 `json:"trestbps"` // mm Hg
	Cholesterol    float64 `json:"chol"`     // mg/dl
	FastingBS      float64 `json:"fbs"`      // >120 mg/dl: 0 or 1
	RestingECG     float64 `json:"restecg"`  // 0-2
	MaxHeartRate   float64 `json:"thalach"`
	ExerciseAngina float64 `json:"exang"`   // 0 or 1
	STDepression   float64 `json:"oldpeak"` // exercise-induced, float
	STSlope        float64 `json:"slope"`   // 0-2
	VesselCount    float64 `json:"ca"`      // 0-3
	Thalassemia    float64 `json:"thal"`    // 0-2
}

// FeatureNames lists the model's feature names in vector order.
var FeatureNames = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs",
	"restecg", "thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// ToSlice renders the vector in the model's fixed field order.
func (f *FeatureVector) ToSlice() []float64 {
	return []float64{
		f.Age, f.Sex, f.ChestPainType, f.RestingBP, f.Cholesterol, f.FastingBS,
		f.RestingECG, f.MaxHeartRate, f.ExerciseAngina, f.STDepression,
		f.STSlope, f.VesselCount, f.Thalassemia,
	}
}

// Validate checks every field against its documented domain. Violations are
// reported as domain.ErrInvalidFeatureVector so callers can distinguish bad
// input from model unavailability.
func (f *FeatureVector) Validate() error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
		integral bool
	}{
		{"age", f.Age, 1, 120, true},
		{"sex", f.Sex, 0, 1, true},
		{"cp", f.ChestPainType, 0, 3, true},
		{"trestbps", f.RestingBP, 50, 300, false},
		{"chol", f.Cholesterol, 50, 1000, false},
		{"fbs", f.FastingBS, 0, 1, true},
		{"restecg", f.RestingECG, 0, 2, true},
		{"thalach", f.MaxHeartRate, 30, 250, false},
		{"exang", f.ExerciseAngina, 0, 1, true},
		{"oldpeak", f.STDepression, 0, 10, false},
		{"slope", f.STSlope, 0, 2, true},
		{"ca", f.VesselCount, 0, 3, true},
		{"thal", f.Thalassemia, 0, 2, true},
	}

	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]",
				domain.ErrInvalidFeatureVector, c.name, c.value, c.min, c.max)
		}
		if c.integral && c.value != float64(int(c.value)) {
			return fmt.Errorf("%w: %s=%v must be integral",
				domain.ErrInvalidFeatureVector, c.name, c.value)
		}
	}
	return nil
}
