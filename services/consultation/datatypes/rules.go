// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"github.com/pakartani/sipakar/services/knowledge"
)

// RecommendationPayload mirrors knowledge.Recommendation on the wire.
type RecommendationPayload struct {
	Pupuk  string `json:"pupuk"`
	Dosis  string `json:"dosis"`
	Metode string `json:"metode"`
}

// RulePayload is the body of POST /v1/rules and PUT /v1/rules/:id.
//
// On create, a blank ID asks the store to assign the next free R<n>.
// On update, zero-valued fields are left untouched; CF updates are
// detected through the separate pointer so 0.0 stays expressible.
type RulePayload struct {
	ID             string                `json:"id" validate:"omitempty,max=32"`
	Antecedents    []string              `json:"antecedents" validate:"omitempty,min=1,dive,required"`
	Consequent     string                `json:"consequent"`
	CF             *float64              `json:"cf" validate:"omitempty,cfrange"`
	Recommendation RecommendationPayload `json:"recommendation"`
	Explanation    string                `json:"explanation"`
	Status         string                `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Validate validates the payload after JSON binding.
func (p *RulePayload) Validate() error {
	return validate.Struct(p)
}

// Rule converts a create payload into a store rule. Missing CF means
// zero certainty, which the store rejects only if out of range.
func (p *RulePayload) Rule() knowledge.Rule {
	rule := knowledge.Rule{
		ID:          p.ID,
		Antecedents: p.Antecedents,
		Consequent:  p.Consequent,
		Recommendation: knowledge.Recommendation{
			Pupuk:  p.Recommendation.Pupuk,
			Dosis:  p.Recommendation.Dosis,
			Metode: p.Recommendation.Metode,
		},
		Explanation: p.Explanation,
		Status:      knowledge.RuleStatus(p.Status),
	}
	if p.CF != nil {
		rule.CF = *p.CF
	}
	return rule
}

// Update converts an update payload into the store's partial update.
// Only fields the client actually sent are applied.
func (p *RulePayload) Update() knowledge.RuleUpdate {
	var upd knowledge.RuleUpdate
	if p.Antecedents != nil {
		upd.Antecedents = &p.Antecedents
	}
	if p.Consequent != "" {
		upd.Consequent = &p.Consequent
	}
	if p.CF != nil {
		upd.CF = p.CF
	}
	empty := RecommendationPayload{}
	if p.Recommendation != empty {
		rec := knowledge.Recommendation{
			Pupuk:  p.Recommendation.Pupuk,
			Dosis:  p.Recommendation.Dosis,
			Metode: p.Recommendation.Metode,
		}
		upd.Recommendation = &rec
	}
	if p.Explanation != "" {
		upd.Explanation = &p.Explanation
	}
	if p.Status != "" {
		status := knowledge.RuleStatus(p.Status)
		upd.Status = &status
	}
	return upd
}
