// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explanation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pakartani/sipakar/services/inference"
	"github.com/pakartani/sipakar/services/knowledge"
)

func sampleConclusion() inference.Conclusion {
	return inference.Conclusion{
		Diagnosis:      "Kekurangan Nitrogen (N)",
		CF:             0.804,
		Interpretation: "Sangat Meyakinkan",
		Recommendation: knowledge.Recommendation{
			Pupuk: "Urea", Dosis: "150-200 kg/ha", Metode: "Kocor",
		},
		Contributions: []inference.Contribution{
			{
				RuleID:      "R1",
				Antecedents: []string{"daun_kuning_merata", "pertumbuhan_lambat"},
				RuleCF:      0.9,
				EffectiveCF: 0.72,
			},
			{
				RuleID:      "R2",
				Antecedents: []string{"daun_tua_menguning"},
				RuleCF:      0.5,
				EffectiveCF: 0.3,
			},
		},
	}
}

func TestBuildHow(t *testing.T) {
	how := BuildHow(sampleConclusion())

	assert.Equal(t, "Kekurangan Nitrogen (N)", how.Conclusion)
	assert.Equal(t, 2, how.TotalSteps)
	assert.Equal(t, []string{"R1", "R2"}, how.RulesUsed)

	require.Len(t, how.Steps, 2)
	assert.Equal(t, 1, how.Steps[0].StepNumber)
	assert.Equal(t, "daun_kuning_merata AND pertumbuhan_lambat", how.Steps[0].IfConditions)
	assert.Equal(t, "72.0%", how.Steps[0].CFPercentage)
	assert.Equal(t, "30.0%", how.Steps[1].CFPercentage)

	assert.Contains(t, how.Answer, "Langkah 1:")
	assert.Contains(t, how.Answer, "Menggunakan Rule R1")
	assert.Contains(t, how.Answer, "80.4%")
	assert.Contains(t, how.Answer, "diagnosis sangat kuat")
}

func TestBuildHowAnswerBands(t *testing.T) {
	tests := []struct {
		cf   float64
		want string
	}{
		{0.9, "diagnosis sangat kuat"},
		{0.65, "diagnosis cukup kuat"},
		{0.45, "diagnosis moderat"},
		{0.2, "diagnosis lemah"},
	}
	for _, tc := range tests {
		c := sampleConclusion()
		c.CF = tc.cf
		assert.Contains(t, BuildHow(c).Answer, tc.want, "cf=%v", tc.cf)
	}
}

func TestBuildComparison(t *testing.T) {
	narrow := []inference.Conclusion{
		{Diagnosis: "Kekurangan Nitrogen (N)", CF: 0.72},
		{Diagnosis: "Kekurangan Kalium (K)", CF: 0.68},
	}
	cmp, ok := BuildComparison(narrow)
	require.True(t, ok)
	assert.Equal(t, 2, cmp.TotalDiagnoses)
	assert.Equal(t, "Kekurangan Nitrogen (N)", cmp.TopDiagnosis)
	assert.Contains(t, cmp.Summary, "sangat dekat")
	assert.Contains(t, cmp.Summary, "konfirmasi tambahan")

	moderate := []inference.Conclusion{
		{Diagnosis: "A", CF: 0.8},
		{Diagnosis: "B", CF: 0.65},
	}
	cmp, ok = BuildComparison(moderate)
	require.True(t, ok)
	assert.Contains(t, cmp.Summary, "cukup lebih kuat")

	wide := []inference.Conclusion{
		{Diagnosis: "A", CF: 0.9},
		{Diagnosis: "B", CF: 0.4},
	}
	cmp, ok = BuildComparison(wide)
	require.True(t, ok)
	assert.Contains(t, cmp.Summary, "jauh lebih kuat")
}

func TestBuildComparisonNeedsTwo(t *testing.T) {
	_, ok := BuildComparison([]inference.Conclusion{{Diagnosis: "A", CF: 0.9}})
	assert.False(t, ok)
	_, ok = BuildComparison(nil)
	assert.False(t, ok)
}

func TestRuleNarrative(t *testing.T) {
	rule := knowledge.Rule{
		ID:          "R1",
		Antecedents: []string{"daun_kuning_merata", "pertumbuhan_lambat"},
		Consequent:  "Kekurangan Nitrogen (N)",
		CF:          0.9,
		Recommendation: knowledge.Recommendation{
			Pupuk: "Urea", Dosis: "150-200 kg/ha", Metode: "Kocor",
		},
	}
	nl := RuleNarrative(rule)
	assert.Contains(t, nl, "Rule R1 menyatakan bahwa:")
	assert.Contains(t, nl, "JIKA:")
	assert.Contains(t, nl, "1. daun_kuning_merata")
	assert.Contains(t, nl, "2. pertumbuhan_lambat")
	assert.Contains(t, nl, "MAKA:")
	assert.Contains(t, nl, "Diagnosis: Kekurangan Nitrogen (N)")
	assert.Contains(t, nl, "Dengan tingkat kepercayaan: 90%")
}

func TestTextReport(t *testing.T) {
	record := ConsultationRecord{
		ID:        "CONS-test",
		Timestamp: "2025-06-01 10:00:00",
		Fase:      "vegetatif",
		Facts: []Fact{
			{ID: "daun_kuning_merata", CF: 0.8},
			{ID: "pertumbuhan_lambat", CF: 0.9},
		},
		Conclusions: []inference.Conclusion{sampleConclusion()},
	}

	report := TextReport(record)
	assert.Contains(t, report, "LAPORAN PENJELASAN SISTEM PAKAR PUPUK CABAI")
	assert.Contains(t, report, "1. FAKTA INPUT")
	assert.Contains(t, report, "Fase tanaman: vegetatif")
	assert.Contains(t, report, "daun_kuning_merata (CF 0.80)")
	assert.Contains(t, report, "2. HASIL DIAGNOSIS")
	assert.Contains(t, report, "Certainty Factor: 80.4% (Sangat Meyakinkan)")
	assert.Contains(t, report, "3. ALUR PENALARAN")
	assert.Contains(t, report, "IF: daun_kuning_merata AND pertumbuhan_lambat")
	assert.Contains(t, report, "4. RULES YANG DIGUNAKAN")
	assert.Contains(t, report, "Total: 2 rules")
	assert.Contains(t, report, "Generated at: 2025-06-01 10:00:00")
	assert.Equal(t, 1, strings.Count(report, "Generated at:"))
}

func TestDeterministicOutput(t *testing.T) {
	conclusion := sampleConclusion()
	record := ConsultationRecord{
		ID:          "CONS-det",
		Timestamp:   "2025-06-01 10:00:00",
		Fase:        "generatif",
		Facts:       []Fact{{ID: "a", CF: 1.0}, {ID: "b", CF: 0.5}},
		Conclusions: []inference.Conclusion{conclusion},
	}

	firstHow := BuildHow(conclusion).Answer
	firstReport := TextReport(record)
	for i := 0; i < 10; i++ {
		assert.Equal(t, firstHow, BuildHow(conclusion).Answer)
		assert.Equal(t, firstReport, TextReport(record))
	}
}
