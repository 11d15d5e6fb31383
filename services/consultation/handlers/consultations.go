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
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pakartani/sipakar/services/consultation/history"
)

func ListConsultations(log *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			limit = parsed
		}

		entries, err := log.List(c.Request.Context(), limit)
		if err != nil {
			slog.Error("failed to list consultations", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list consultations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"consultations": entries, "count": len(entries)})
	}
}

func ClearConsultations(log *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := log.Clear(c.Request.Context()); err != nil {
			slog.Error("failed to clear consultations", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear consultations"})
			return
		}
		slog.Info("consultation log cleared")
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	}
}

func SummaryReport(log *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := log.Summarize(c.Request.Context())
		if err != nil {
			slog.Error("failed to build summary report", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary report"})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
