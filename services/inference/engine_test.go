// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pakartani/sipakar/services/knowledge"
)

func testRules() []knowledge.Rule {
	return []knowledge.Rule{
		{
			ID:          "R1",
			Antecedents: []string{"daun_kuning_merata", "pertumbuhan_lambat"},
			Consequent:  "Kekurangan Nitrogen (N)",
			CF:          0.9,
			Recommendation: knowledge.Recommendation{
				Pupuk: "Urea", Dosis: "150-200 kg/ha", Metode: "Kocor",
			},
		},
		{
			ID:          "R2",
			Antecedents: []string{"daun_tua_menguning"},
			Consequent:  "Kekurangan Nitrogen (N)",
			CF:          0.5,
			Recommendation: knowledge.Recommendation{
				Pupuk: "ZA", Dosis: "100 kg/ha", Metode: "Tabur",
			},
		},
		{
			ID:          "R3",
			Antecedents: []string{"daun_tua_keunguan"},
			Consequent:  "Kekurangan Fosfor (P)",
			CF:          0.85,
		},
	}
}

func TestDiagnoseEmptyFacts(t *testing.T) {
	conclusions := Diagnose(testRules(), map[string]float64{})
	assert.Empty(t, conclusions)

	conclusions = Diagnose(testRules(), nil)
	assert.Empty(t, conclusions)
}

func TestDiagnoseSingleRule(t *testing.T) {
	facts := map[string]float64{
		"daun_kuning_merata": 0.8,
		"pertumbuhan_lambat": 0.9,
	}
	conclusions := Diagnose(testRules(), facts)
	require.Len(t, conclusions, 1)

	got := conclusions[0]
	assert.Equal(t, "Kekurangan Nitrogen (N)", got.Diagnosis)
	// 0.9 * min(0.8, 0.9) = 0.72
	assert.InDelta(t, 0.72, got.CF, epsilon)
	assert.Equal(t, "72.0%", got.CFPercentage())
	assert.Equal(t, "Meyakinkan", got.Interpretation)
	require.Len(t, got.Contributions, 1)
	assert.Equal(t, "R1", got.Contributions[0].RuleID)
	assert.InDelta(t, 0.72, got.Contributions[0].EffectiveCF, epsilon)
	assert.Equal(t, "Urea", got.Recommendation.Pupuk)
}

func TestDiagnoseWeakestLinkScaling(t *testing.T) {
	facts := map[string]float64{
		"daun_kuning_merata": 0.4,
		"pertumbuhan_lambat": 1.0,
	}
	conclusions := Diagnose(testRules(), facts)
	require.Len(t, conclusions, 1)
	// 0.9 * min(0.4, 1.0) = 0.36
	assert.InDelta(t, 0.36, conclusions[0].CF, epsilon)
}

func TestDiagnosePartialMatchDoesNotFire(t *testing.T) {
	// R1 needs both antecedents; one alone must not fire it.
	facts := map[string]float64{"daun_kuning_merata": 1.0}
	conclusions := Diagnose(testRules(), facts)
	assert.Empty(t, conclusions)
}

func TestDiagnoseUnknownFactIgnored(t *testing.T) {
	facts := map[string]float64{
		"daun_kuning_merata": 0.8,
		"pertumbuhan_lambat": 0.9,
		"gejala_tidak_ada":   1.0,
	}
	conclusions := Diagnose(testRules(), facts)
	require.Len(t, conclusions, 1)
	assert.InDelta(t, 0.72, conclusions[0].CF, epsilon)
}

func TestDiagnoseCombinesSameConsequent(t *testing.T) {
	facts := map[string]float64{
		"daun_kuning_merata": 0.8,
		"pertumbuhan_lambat": 0.9,
		"daun_tua_menguning": 0.6,
	}
	conclusions := Diagnose(testRules(), facts)
	require.Len(t, conclusions, 1)

	got := conclusions[0]
	// R1: 0.9*0.8 = 0.72, R2: 0.5*0.6 = 0.3, combined 0.72+0.3*(1-0.72) = 0.804
	assert.InDelta(t, 0.804, got.CF, epsilon)
	assert.Equal(t, "Sangat Meyakinkan", got.Interpretation)
	require.Len(t, got.Contributions, 2)
	assert.Equal(t, "R1", got.Contributions[0].RuleID)
	assert.Equal(t, "R2", got.Contributions[1].RuleID)
	// Recommendation follows the strongest contributor, R1.
	assert.Equal(t, "Urea", got.Recommendation.Pupuk)
}

func TestDiagnoseRanking(t *testing.T) {
	facts := map[string]float64{
		"daun_kuning_merata": 1.0,
		"pertumbuhan_lambat": 1.0,
		"daun_tua_keunguan":  0.5,
	}
	conclusions := Diagnose(testRules(), facts)
	require.Len(t, conclusions, 2)
	// 0.9 beats 0.85*0.5.
	assert.Equal(t, "Kekurangan Nitrogen (N)", conclusions[0].Diagnosis)
	assert.Equal(t, "Kekurangan Fosfor (P)", conclusions[1].Diagnosis)
}

func TestDiagnoseTieBreakByLabel(t *testing.T) {
	rules := []knowledge.Rule{
		{ID: "R1", Antecedents: []string{"a"}, Consequent: "Zebra", CF: 0.6},
		{ID: "R2", Antecedents: []string{"a"}, Consequent: "Alpha", CF: 0.6},
	}
	conclusions := Diagnose(rules, map[string]float64{"a": 1.0})
	require.Len(t, conclusions, 2)
	assert.Equal(t, "Alpha", conclusions[0].Diagnosis)
	assert.Equal(t, "Zebra", conclusions[1].Diagnosis)
}

func TestDiagnoseSkipsInactiveRules(t *testing.T) {
	rules := testRules()
	rules[0].Status = knowledge.StatusInactive

	facts := map[string]float64{
		"daun_kuning_merata": 1.0,
		"pertumbuhan_lambat": 1.0,
	}
	conclusions := Diagnose(rules, facts)
	assert.Empty(t, conclusions)
}

func TestDiagnoseDeterministic(t *testing.T) {
	facts := map[string]float64{
		"daun_kuning_merata": 0.8,
		"pertumbuhan_lambat": 0.9,
		"daun_tua_menguning": 0.6,
		"daun_tua_keunguan":  0.7,
	}
	first := Diagnose(testRules(), facts)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Diagnose(testRules(), facts))
	}
}
