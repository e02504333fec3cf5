// Package drugs provides the static medication reference table and its
// lookup logic. The table is loaded once at process start and read-only
// thereafter; lookups are safe for concurrent use.
package drugs

import (
	"sort"
	"strings"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// reference is keyed by lowercase drug name.
var reference = map[string]domain.DrugRecord{
	"paracetamol": {
		Uses:        "Pain and fever relief",
		Dosage:      "500-1000 mg every 4-6 hours (adult typical); do not exceed 4000 mg/day",
		SideEffects: "Rare at recommended dose; liver risk in overdose",
		Precautions: "Avoid heavy alcohol use; check other meds for acetaminophen",
	},
	"ibuprofen": {
		Uses:        "Pain, inflammation, fever",
		Dosage:      "200-400 mg every 4-6 hours; max depends on formulation",
		SideEffects: "Stomach upset, increased bleeding risk, kidney effects",
		Precautions: "Take with food; avoid if active peptic ulcer or severe kidney disease",
	},
	"aspirin": {
		Uses:        "Pain, fever, anti-inflammatory; low-dose for antiplatelet therapy",
		Dosage:      "325-650 mg every 4-6 hours (not for children with viral illness); low-dose 75-100 mg for cardioprotection",
		SideEffects: "Gastric irritation, bleeding",
		Precautions: "Not for children with fever (Reye's syndrome), avoid if bleeding risk",
	},
	"amoxicillin": {
		Uses:        "Broad-spectrum antibiotic for many bacterial infections",
		Dosage:      "500 mg every 8 hours or 875 mg every 12 hours (typical adult regimens)",
		SideEffects: "Diarrhea, allergic reaction",
		Precautions: "Do not use if penicillin allergy",
	},
	"clopidogrel": {
		Uses:        "Antiplatelet for stroke/MI prevention",
		Dosage:      "75 mg once daily",
		SideEffects: "Bleeding",
		Precautions: "Combine with aspirin only when indicated; bleed risk",
	},
}

// Store exposes lookups over the static reference table.
type Store struct{}

// NewStore returns the drug reference store.
func NewStore() *Store {
	return &Store{}
}

// Lookup resolves a medication query. An exact case-insensitive key match
// wins outright; otherwise the query is matched as a substring against all
// keys: one hit is Found, several are Ambiguous, none is NotFound. The
// latter two are ordinary result shapes, not errors.
func (s *Store) Lookup(query string) domain.DrugLookupResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.DrugLookupResult{Status: domain.DrugNotFound}
	}

	if rec, ok := reference[q]; ok {
		return domain.DrugLookupResult{Status: domain.DrugFound, Record: titled(q, rec)}
	}

	var matches []string
	for name := range reference {
		if strings.Contains(name, q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return domain.DrugLookupResult{Status: domain.DrugNotFound}
	case 1:
		rec := reference[matches[0]]
		return domain.DrugLookupResult{Status: domain.DrugFound, Record: titled(matches[0], rec)}
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = title(m)
		}
		return domain.DrugLookupResult{Status: domain.DrugAmbiguous, Matches: names}
	}
}

// Names returns all known drug names in display casing, sorted.
func (s *Store) Names() []string {
	out := make([]string, 0, len(reference))
	for name := range reference {
		out = append(out, title(name))
	}
	sort.Strings(out)
	return out
}

func titled(key string, rec domain.DrugRecord) *domain.DrugRecord {
	rec.Name = title(key)
	return &rec
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
