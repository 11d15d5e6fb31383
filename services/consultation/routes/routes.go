// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pakartani/sipakar/services/consultation/handlers"
	"github.com/pakartani/sipakar/services/consultation/history"
	"github.com/pakartani/sipakar/services/knowledge"
)

func SetupRoutes(router *gin.Engine, store *knowledge.Store, log *history.Store) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.GET("/symptoms", handlers.ListSymptoms(store))
		v1.POST("/diagnose", handlers.Diagnose(store, log))

		// Knowledge-base administration routes
		rules := v1.Group("/rules")
		{
			rules.GET("", handlers.ListRules(store))
			rules.GET("/stats", handlers.RuleStatistics(store))
			rules.GET("/:id", handlers.GetRule(store))
			rules.GET("/:id/explain", handlers.ExplainRule(store))
			rules.POST("", handlers.CreateRule(store))
			rules.PUT("/:id", handlers.UpdateRule(store))
			rules.DELETE("/:id", handlers.DeleteRule(store))
		}

		// Consultation history and reporting routes
		if log != nil {
			v1.GET("/consultations", handlers.ListConsultations(log))
			v1.DELETE("/consultations", handlers.ClearConsultations(log))
			v1.GET("/reports/summary", handlers.SummaryReport(log))
		}
	}
}
