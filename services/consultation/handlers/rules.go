// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pakartani/sipakar/services/consultation/datatypes"
	"github.com/pakartani/sipakar/services/consultation/observability"
	"github.com/pakartani/sipakar/services/explanation"
	"github.com/pakartani/sipakar/services/knowledge"
)

// writeStoreError maps the store's typed errors onto HTTP status codes.
func writeStoreError(c *gin.Context, err error) {
	var verr *knowledge.ValidationError
	var nf *knowledge.NotFoundError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	default:
		slog.Error("unexpected store error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func recordMutation(op string, success bool, store *knowledge.Store) {
	if m := observability.DefaultMetrics; m != nil {
		m.RecordRuleMutation(op, success)
		if success {
			m.SetActiveRules(store.Statistics().ActiveRules)
		}
	}
}

func ListRules(store *knowledge.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rules": store.List()})
	}
}

func GetRule(store *knowledge.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, err := store.Get(c.Param("id"))
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, rule)
	}
}

func CreateRule(store *knowledge.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload datatypes.RulePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		if err := payload.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rule, err := store.Add(payload.Rule())
		if err != nil {
			recordMutation("create", false, store)
			writeStoreError(c, err)
			return
		}
		recordMutation("create", true, store)
		slog.Info("rule created", "rule_id", rule.ID, "consequent", rule.Consequent)
		c.JSON(http.StatusCreated, rule)
	}
}

func UpdateRule(store *knowledge.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload datatypes.RulePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		if err := payload.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rule, err := store.Update(c.Param("id"), payload.Update())
		if err != nil {
			recordMutation("update", false, store)
			writeStoreError(c, err)
			return
		}
		recordMutation("update", true, store)
		slog.Info("rule updated", "rule_id", rule.ID)
		c.JSON(http.StatusOK, rule)
	}
}

func DeleteRule(store *knowledge.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := store.Delete(id); err != nil {
			recordMutation("delete", false, store)
			writeStoreError(c, err)
			return
		}
		recordMutation("delete", true, store)
		slog.Info("rule deleted", "rule_id", id)
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "rule_id": id})
	}
}

func ExplainRule(store *knowledge.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, err := store.Get(c.Param("id"))
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"rule":             rule,
			"natural_language": explanation.RuleNarrative(rule),
		})
	}
}

func RuleStatistics(store *knowledge.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Statistics())
	}
}
