// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package explanation renders the reasoning behind a diagnosis into
human-readable Indonesian text and structured reasoning steps.

Everything here is a pure function of its inputs: identical inputs
produce byte-identical output. Timestamps appearing in reports are
supplied by the caller, never read from the clock.
*/
package explanation

import (
	"fmt"
	"strings"

	"github.com/pakartani/sipakar/services/inference"
	"github.com/pakartani/sipakar/services/knowledge"
)

// Step is one rule firing in a reasoning trace.
type Step struct {
	StepNumber     int     `json:"step_number"`
	RuleID         string  `json:"rule_id"`
	IfConditions   string  `json:"if_conditions"`
	ThenConclusion string  `json:"then_conclusion"`
	CF             float64 `json:"certainty_factor"`
	CFPercentage   string  `json:"cf_percentage"`
}

// How is the answer to "how did the system reach this conclusion".
type How struct {
	Conclusion string   `json:"conclusion"`
	Answer     string   `json:"answer"`
	Steps      []Step   `json:"steps"`
	RulesUsed  []string `json:"rules_used"`
	TotalSteps int      `json:"total_steps"`
}

// Comparison contrasts the top diagnosis against the runner-up.
type Comparison struct {
	TotalDiagnoses int     `json:"total_diagnoses"`
	TopDiagnosis   string  `json:"top_diagnosis"`
	TopCF          float64 `json:"top_cf"`
	Summary        string  `json:"summary"`
}

// Fact is one asserted symptom in a consultation, kept ordered so a
// report renders the same way every time.
type Fact struct {
	ID string  `json:"id"`
	CF float64 `json:"cf"`
}

// ConsultationRecord is everything a text report needs. Timestamp is a
// pre-formatted string chosen by the caller.
type ConsultationRecord struct {
	ID          string                 `json:"id"`
	Timestamp   string                 `json:"timestamp"`
	Fase        string                 `json:"fase"`
	Facts       []Fact                 `json:"facts"`
	Conclusions []inference.Conclusion `json:"conclusions"`
}

// BuildHow explains one conclusion from its contributing rule firings.
func BuildHow(conclusion inference.Conclusion) How {
	steps := make([]Step, 0, len(conclusion.Contributions))
	rulesUsed := make([]string, 0, len(conclusion.Contributions))
	for i, c := range conclusion.Contributions {
		steps = append(steps, Step{
			StepNumber:     i + 1,
			RuleID:         c.RuleID,
			IfConditions:   strings.Join(c.Antecedents, " AND "),
			ThenConclusion: conclusion.Diagnosis,
			CF:             c.EffectiveCF,
			CFPercentage:   fmt.Sprintf("%.1f%%", c.EffectiveCF*100),
		})
		rulesUsed = append(rulesUsed, c.RuleID)
	}

	return How{
		Conclusion: conclusion.Diagnosis,
		Answer:     howAnswer(conclusion, steps),
		Steps:      steps,
		RulesUsed:  rulesUsed,
		TotalSteps: len(steps),
	}
}

func howAnswer(conclusion inference.Conclusion, steps []Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sistem sampai pada kesimpulan '%s' melalui langkah berikut:\n\n",
		conclusion.Diagnosis)

	for _, s := range steps {
		fmt.Fprintf(&b, "Langkah %d:\n", s.StepNumber)
		fmt.Fprintf(&b, "  - Menggunakan Rule %s\n", s.RuleID)
		fmt.Fprintf(&b, "  - Kondisi yang terpenuhi: %s\n", s.IfConditions)
		fmt.Fprintf(&b, "  - Kesimpulan: %s\n", s.ThenConclusion)
		fmt.Fprintf(&b, "  - Tingkat kepercayaan: %s\n\n", s.CFPercentage)
	}

	fmt.Fprintf(&b, "Kesimpulan akhir memiliki tingkat kepercayaan %.1f%%, ",
		conclusion.CF*100)
	switch {
	case conclusion.CF >= 0.8:
		b.WriteString("yang menunjukkan diagnosis sangat kuat.")
	case conclusion.CF >= 0.6:
		b.WriteString("yang menunjukkan diagnosis cukup kuat.")
	case conclusion.CF >= 0.4:
		b.WriteString("yang menunjukkan diagnosis moderat.")
	default:
		b.WriteString("yang menunjukkan diagnosis lemah dan memerlukan konfirmasi tambahan.")
	}
	return b.String()
}

// BuildComparison contrasts ranked conclusions. Returns ok=false when
// fewer than two conclusions exist.
func BuildComparison(conclusions []inference.Conclusion) (Comparison, bool) {
	if len(conclusions) < 2 {
		return Comparison{}, false
	}

	top, second := conclusions[0], conclusions[1]
	var b strings.Builder
	fmt.Fprintf(&b, "Diagnosis paling mungkin adalah '%s' dengan tingkat kepercayaan %.1f%%.\n\n",
		top.Diagnosis, top.CF*100)

	diff := (top.CF - second.CF) * 100
	switch {
	case diff < 10:
		fmt.Fprintf(&b, "Diagnosis ini sangat dekat dengan '%s' (selisih hanya %.1f%%). "+
			"Disarankan untuk melakukan konfirmasi tambahan.", second.Diagnosis, diff)
	case diff < 20:
		fmt.Fprintf(&b, "Diagnosis ini cukup lebih kuat dari '%s' (selisih %.1f%%).",
			second.Diagnosis, diff)
	default:
		fmt.Fprintf(&b, "Diagnosis ini jauh lebih kuat dari alternatif lainnya (selisih minimal %.1f%%).",
			diff)
	}

	return Comparison{
		TotalDiagnoses: len(conclusions),
		TopDiagnosis:   top.Diagnosis,
		TopCF:          top.CF,
		Summary:        b.String(),
	}, true
}

// RuleNarrative renders a single rule as JIKA/MAKA prose.
func RuleNarrative(rule knowledge.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rule %s menyatakan bahwa:\n\nJIKA:\n", rule.ID)
	for i, condition := range rule.Antecedents {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, condition)
	}
	b.WriteString("\nMAKA:\n")
	fmt.Fprintf(&b, "  - Diagnosis: %s\n", rule.Consequent)
	fmt.Fprintf(&b, "  - Pupuk yang direkomendasikan: %s\n", rule.Recommendation.Pupuk)
	fmt.Fprintf(&b, "  - Dosis: %s\n", rule.Recommendation.Dosis)
	fmt.Fprintf(&b, "  - Metode aplikasi: %s\n", rule.Recommendation.Metode)
	fmt.Fprintf(&b, "\nDengan tingkat kepercayaan: %.0f%%", rule.CF*100)
	return b.String()
}

const reportRule = "======================================================================"
const reportSubRule = "----------------------------------------------------------------------"

// TextReport renders a full plain-text consultation report.
func TextReport(record ConsultationRecord) string {
	var b strings.Builder
	b.WriteString(reportRule + "\n")
	b.WriteString("LAPORAN PENJELASAN SISTEM PAKAR PUPUK CABAI\n")
	b.WriteString(reportRule + "\n\n")

	b.WriteString("1. FAKTA INPUT\n")
	b.WriteString(reportSubRule + "\n")
	if record.Fase != "" {
		fmt.Fprintf(&b, "   Fase tanaman: %s\n", record.Fase)
	}
	for i, fact := range record.Facts {
		fmt.Fprintf(&b, "   %d. %s (CF %.2f)\n", i+1, fact.ID, fact.CF)
	}
	b.WriteString("\n")

	b.WriteString("2. HASIL DIAGNOSIS\n")
	b.WriteString(reportSubRule + "\n")
	for i, conclusion := range record.Conclusions {
		fmt.Fprintf(&b, "   %d. %s\n", i+1, conclusion.Diagnosis)
		fmt.Fprintf(&b, "      Certainty Factor: %.1f%% (%s)\n",
			conclusion.CF*100, conclusion.Interpretation)
		fmt.Fprintf(&b, "      Pupuk: %s\n", conclusion.Recommendation.Pupuk)
		fmt.Fprintf(&b, "      Dosis: %s\n", conclusion.Recommendation.Dosis)
		fmt.Fprintf(&b, "      Metode: %s\n\n", conclusion.Recommendation.Metode)
	}

	b.WriteString("3. ALUR PENALARAN\n")
	b.WriteString(reportSubRule + "\n")
	step := 0
	var rulesUsed []string
	for _, conclusion := range record.Conclusions {
		for _, c := range conclusion.Contributions {
			step++
			fmt.Fprintf(&b, "   Step %d: Rule %s\n", step, c.RuleID)
			fmt.Fprintf(&b, "   IF: %s\n", strings.Join(c.Antecedents, " AND "))
			fmt.Fprintf(&b, "   THEN: %s\n", conclusion.Diagnosis)
			fmt.Fprintf(&b, "   CF: %.1f%%\n\n", c.EffectiveCF*100)
			rulesUsed = append(rulesUsed, c.RuleID)
		}
	}

	b.WriteString("4. RULES YANG DIGUNAKAN\n")
	b.WriteString(reportSubRule + "\n")
	fmt.Fprintf(&b, "   Total: %d rules\n", len(rulesUsed))
	fmt.Fprintf(&b, "   Rules: %s\n\n", strings.Join(rulesUsed, ", "))

	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Generated at: %s\n", record.Timestamp)
	b.WriteString(reportRule + "\n")
	return b.String()
}
