// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"fmt"
	"sort"

	"github.com/pakartani/sipakar/services/knowledge"
)

// Contribution is a single rule firing that supported a conclusion.
type Contribution struct {
	RuleID      string   `json:"rule_id"`
	Antecedents []string `json:"antecedents"`
	RuleCF      float64  `json:"rule_cf"`
	// EffectiveCF is rule_cf scaled by the weakest antecedent certainty.
	EffectiveCF float64 `json:"effective_cf"`
}

// Conclusion is one supported diagnosis with its combined certainty and
// the rule firings that produced it, in firing order.
type Conclusion struct {
	Diagnosis      string                   `json:"diagnosis"`
	CF             float64                  `json:"cf"`
	Interpretation string                   `json:"cf_interpretation"`
	Recommendation knowledge.Recommendation `json:"recommendation"`
	Contributions  []Contribution           `json:"contributions"`
}

// CFPercentage renders the conclusion certainty as "72.0%".
func (c Conclusion) CFPercentage() string {
	return fmt.Sprintf("%.1f%%", c.CF*100)
}

// Diagnose runs one forward-chaining pass over an immutable rule
// snapshot. facts maps symptom identifiers to their asserted certainty.
//
// A rule fires only when every antecedent is present in facts; an
// identifier no rule knows, or a fact no rule mentions, is silently
// ignored. Firings for the same consequent are combined in snapshot
// order, and since Combine is commutative and associative the result is
// independent of that order anyway.
//
// Empty facts produce empty conclusions, never an error.
func Diagnose(rules []knowledge.Rule, facts map[string]float64) []Conclusion {
	byDiagnosis := make(map[string]*Conclusion)
	var order []string

	for _, rule := range rules {
		if !rule.Active() {
			continue
		}
		antecedentCFs, ok := matchAntecedents(rule.Antecedents, facts)
		if !ok {
			continue
		}
		effective := rule.CF * MinCertainty(antecedentCFs)

		conclusion, seen := byDiagnosis[rule.Consequent]
		if !seen {
			conclusion = &Conclusion{Diagnosis: rule.Consequent}
			byDiagnosis[rule.Consequent] = conclusion
			order = append(order, rule.Consequent)
		}
		conclusion.CF = Combine(conclusion.CF, effective)
		conclusion.Contributions = append(conclusion.Contributions, Contribution{
			RuleID:      rule.ID,
			Antecedents: rule.Antecedents,
			RuleCF:      rule.CF,
			EffectiveCF: effective,
		})
	}

	conclusions := make([]Conclusion, 0, len(order))
	for _, diagnosis := range order {
		conclusion := byDiagnosis[diagnosis]
		conclusion.Interpretation = Interpret(conclusion.CF)
		conclusion.Recommendation = pickRecommendation(rules, conclusion.Contributions)
		conclusions = append(conclusions, *conclusion)
	}

	sort.SliceStable(conclusions, func(i, j int) bool {
		if conclusions[i].CF != conclusions[j].CF {
			return conclusions[i].CF > conclusions[j].CF
		}
		return conclusions[i].Diagnosis < conclusions[j].Diagnosis
	})
	return conclusions
}

// matchAntecedents gathers the certainty of every antecedent. Returns
// ok=false as soon as one is missing from the fact map.
func matchAntecedents(antecedents []string, facts map[string]float64) ([]float64, bool) {
	cfs := make([]float64, 0, len(antecedents))
	for _, a := range antecedents {
		cf, present := facts[a]
		if !present {
			return nil, false
		}
		cfs = append(cfs, cf)
	}
	return cfs, true
}

// pickRecommendation takes the recommendation of the contributing rule
// with the highest effective certainty, first one winning ties.
func pickRecommendation(rules []knowledge.Rule, contributions []Contribution) knowledge.Recommendation {
	best := -1
	for i, c := range contributions {
		if best == -1 || c.EffectiveCF > contributions[best].EffectiveCF {
			best = i
		}
	}
	if best == -1 {
		return knowledge.Recommendation{}
	}
	for _, rule := range rules {
		if rule.ID == contributions[best].RuleID {
			return rule.Recommendation
		}
	}
	return knowledge.Recommendation{}
}
