// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides request and response structures for the
// consultation service.
package datatypes

import (
	"github.com/go-playground/validator/v10"

	"github.com/pakartani/sipakar/services/explanation"
	"github.com/pakartani/sipakar/services/inference"
	"github.com/pakartani/sipakar/services/knowledge"
)

// validate is the shared validator instance for consultation datatypes.
// Initialized in init() with custom validators.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// cfrange keeps certainty factors inside [-1.0, 1.0].
	_ = validate.RegisterValidation("cfrange", func(fl validator.FieldLevel) bool {
		cf := fl.Field().Float()
		return cf >= -1.0 && cf <= 1.0
	})
}

// Growth phases the diagnosis endpoint accepts.
const (
	FaseVegetatif = "vegetatif"
	FaseGeneratif = "generatif"
)

// DiagnoseRequest is the body of POST /v1/diagnose.
//
// Symptoms without a UserCFs entry are asserted with full certainty
// (CF 1.0). Fase, when set, is injected into the fact base as
// fase_<fase> together with its fase_<fase>_lanjut alias.
type DiagnoseRequest struct {
	Symptoms []string           `json:"symptoms" validate:"required,min=1,dive,required"`
	Fase     string             `json:"fase" validate:"omitempty,oneof=vegetatif generatif"`
	UserCFs  map[string]float64 `json:"user_cfs" validate:"omitempty,dive,cfrange"`
}

// Validate validates the request after JSON binding.
func (r *DiagnoseRequest) Validate() error {
	return validate.Struct(r)
}

// Facts expands the request into the fact base the engine consumes.
func (r *DiagnoseRequest) Facts() map[string]float64 {
	facts := make(map[string]float64, len(r.Symptoms)+2)
	for _, symptom := range r.Symptoms {
		cf := 1.0
		if user, ok := r.UserCFs[symptom]; ok {
			cf = user
		}
		facts[symptom] = cf
	}
	if r.Fase != "" {
		facts["fase_"+r.Fase] = 1.0
		// Some rules key on the late sub-phase; asserting the phase
		// asserts its alias as well.
		facts["fase_"+r.Fase+"_lanjut"] = 1.0
	}
	return facts
}

// ConclusionResult is one diagnosis in the response, with its
// recommendation and reasoning trace.
type ConclusionResult struct {
	Diagnosis        string                   `json:"diagnosis"`
	CF               float64                  `json:"cf"`
	CFPercentage     string                   `json:"cf_percentage"`
	CFInterpretation string                   `json:"cf_interpretation"`
	Recommendation   knowledge.Recommendation `json:"recommendation"`
	HowExplanation   explanation.How          `json:"how_explanation"`
	Contributions    []inference.Contribution `json:"rule_details"`
}

// DiagnoseResponse is the body returned by POST /v1/diagnose.
type DiagnoseResponse struct {
	ConsultationID string                  `json:"consultation_id"`
	Fase           string                  `json:"fase,omitempty"`
	Conclusions    []ConclusionResult      `json:"conclusions"`
	Comparison     *explanation.Comparison `json:"comparison,omitempty"`
}
