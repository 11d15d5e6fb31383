// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pakartani/sipakar/services/consultation/datatypes"
	"github.com/pakartani/sipakar/services/consultation/history"
	"github.com/pakartani/sipakar/services/consultation/observability"
	"github.com/pakartani/sipakar/services/explanation"
	"github.com/pakartani/sipakar/services/inference"
	"github.com/pakartani/sipakar/services/knowledge"
)

// Diagnose runs one consultation: expand the request into facts, run a
// forward-chaining pass over the current rule snapshot, build the
// explanations, and append the result to the consultation log.
//
// log may be nil; the consultation is then not persisted.
func Diagnose(store *knowledge.Store, log *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.DiagnoseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		if err := req.Validate(); err != nil {
			if m := observability.DefaultMetrics; m != nil {
				m.DiagnosesTotal.WithLabelValues("validation_error").Inc()
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		started := time.Now()
		facts := req.Facts()
		conclusions := inference.Diagnose(store.Snapshot(), facts)

		response := datatypes.DiagnoseResponse{
			ConsultationID: "CONS-" + uuid.NewString(),
			Fase:           req.Fase,
			Conclusions:    make([]datatypes.ConclusionResult, 0, len(conclusions)),
		}
		for _, conclusion := range conclusions {
			response.Conclusions = append(response.Conclusions, datatypes.ConclusionResult{
				Diagnosis:        conclusion.Diagnosis,
				CF:               conclusion.CF,
				CFPercentage:     conclusion.CFPercentage(),
				CFInterpretation: conclusion.Interpretation,
				Recommendation:   conclusion.Recommendation,
				HowExplanation:   explanation.BuildHow(conclusion),
				Contributions:    conclusion.Contributions,
			})
		}
		if comparison, ok := explanation.BuildComparison(conclusions); ok {
			response.Comparison = &comparison
		}

		status := "success"
		if len(conclusions) == 0 {
			status = "empty_result"
		}
		if m := observability.DefaultMetrics; m != nil {
			m.RecordDiagnosis(status, time.Since(started).Seconds(), len(conclusions))
		}

		if log != nil {
			entry := history.Entry{
				ID:          response.ConsultationID,
				Fase:        req.Fase,
				Symptoms:    facts,
				Conclusions: make([]history.ConclusionSummary, 0, len(conclusions)),
			}
			for _, conclusion := range conclusions {
				entry.Conclusions = append(entry.Conclusions, history.ConclusionSummary{
					Diagnosis:      conclusion.Diagnosis,
					CF:             conclusion.CF,
					Interpretation: conclusion.Interpretation,
				})
				for _, contribution := range conclusion.Contributions {
					entry.RulesUsed = append(entry.RulesUsed, contribution.RuleID)
				}
			}
			if _, err := log.Append(c.Request.Context(), entry); err != nil {
				// The diagnosis already succeeded; losing the log entry
				// is not a client error.
				slog.Error("failed to record consultation", "error", err,
					"consultation_id", response.ConsultationID)
			}
		}

		slog.Info("consultation completed",
			"consultation_id", response.ConsultationID,
			"fase", req.Fase,
			"symptoms", len(req.Symptoms),
			"conclusions", len(conclusions))
		c.JSON(http.StatusOK, response)
	}
}
