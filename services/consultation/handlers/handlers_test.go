// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pakartani/sipakar/services/consultation/datatypes"
	"github.com/pakartani/sipakar/services/consultation/history"
	"github.com/pakartani/sipakar/services/knowledge"
	"github.com/pakartani/sipakar/services/knowledge/seed"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func seededStore(t *testing.T) *knowledge.Store {
	t.Helper()
	store, err := knowledge.Load(seed.Rules)
	require.NoError(t, err)
	return store
}

func testRouter(t *testing.T, store *knowledge.Store, log *history.Store) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.GET("/v1/symptoms", ListSymptoms(store))
	router.POST("/v1/diagnose", Diagnose(store, log))
	router.GET("/v1/rules", ListRules(store))
	router.GET("/v1/rules/:id", GetRule(store))
	router.GET("/v1/rules/:id/explain", ExplainRule(store))
	router.POST("/v1/rules", CreateRule(store))
	router.PUT("/v1/rules/:id", UpdateRule(store))
	router.DELETE("/v1/rules/:id", DeleteRule(store))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListSymptoms(t *testing.T) {
	router := testRouter(t, seededStore(t), nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/symptoms", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Symptoms map[string][]string `json:"symptoms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Symptoms["Gejala Daun"], "daun_kuning_merata")
}

func TestDiagnoseEndToEnd(t *testing.T) {
	log, err := history.Open(history.InMemoryConfig())
	require.NoError(t, err)
	defer log.Close()

	router := testRouter(t, seededStore(t), log)

	rec := doJSON(t, router, http.MethodPost, "/v1/diagnose", datatypes.DiagnoseRequest{
		Symptoms: []string{"daun_kuning_merata", "pertumbuhan_lambat"},
		UserCFs:  map[string]float64{"daun_kuning_merata": 0.8, "pertumbuhan_lambat": 0.9},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body datatypes.DiagnoseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.ConsultationID, "CONS-"))
	require.NotEmpty(t, body.Conclusions)

	top := body.Conclusions[0]
	assert.Equal(t, "Kekurangan Nitrogen (N)", top.Diagnosis)
	assert.InDelta(t, 0.72, top.CF, 1e-9)
	assert.Equal(t, "72.0%", top.CFPercentage)
	assert.Equal(t, "Meyakinkan", top.CFInterpretation)
	assert.NotEmpty(t, top.Recommendation.Pupuk)
	assert.NotEmpty(t, top.HowExplanation.Answer)

	// The consultation landed in the log.
	entries, err := log.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, body.ConsultationID, entries[0].ID)
}

func TestDiagnoseEmptySymptoms(t *testing.T) {
	router := testRouter(t, seededStore(t), nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/diagnose", map[string]any{
		"symptoms": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestDiagnoseUnknownSymptomsNoConclusions(t *testing.T) {
	router := testRouter(t, seededStore(t), nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/diagnose", datatypes.DiagnoseRequest{
		Symptoms: []string{"gejala_yang_tidak_dikenal"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body datatypes.DiagnoseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Conclusions)
	assert.Nil(t, body.Comparison)
}

func TestRuleCRUD(t *testing.T) {
	store := knowledge.New()
	router := testRouter(t, store, nil)

	cf := 0.8
	created := doJSON(t, router, http.MethodPost, "/v1/rules", datatypes.RulePayload{
		Antecedents: []string{"daun_kuning_merata"},
		Consequent:  "Kekurangan Nitrogen (N)",
		CF:          &cf,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var rule knowledge.Rule
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &rule))
	assert.Equal(t, "R1", rule.ID)

	got := doJSON(t, router, http.MethodGet, "/v1/rules/R1", nil)
	assert.Equal(t, http.StatusOK, got.Code)

	newCF := 0.6
	updated := doJSON(t, router, http.MethodPut, "/v1/rules/R1", datatypes.RulePayload{CF: &newCF})
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	require.NoError(t, json.Unmarshal(updated.Body.Bytes(), &rule))
	assert.Equal(t, 0.6, rule.CF)

	deleted := doJSON(t, router, http.MethodDelete, "/v1/rules/R1", nil)
	assert.Equal(t, http.StatusOK, deleted.Code)

	// Second delete must 404.
	again := doJSON(t, router, http.MethodDelete, "/v1/rules/R1", nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestCreateRuleValidationError(t *testing.T) {
	router := testRouter(t, knowledge.New(), nil)

	cf := 0.8
	rec := doJSON(t, router, http.MethodPost, "/v1/rules", datatypes.RulePayload{
		Antecedents: nil,
		Consequent:  "Kekurangan Kalium (K)",
		CF:          &cf,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestExplainRule(t *testing.T) {
	router := testRouter(t, seededStore(t), nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/rules/R1/explain", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "JIKA")
	assert.Contains(t, rec.Body.String(), "MAKA")

	missing := doJSON(t, router, http.MethodGet, "/v1/rules/R99/explain", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestGetUnknownRule(t *testing.T) {
	router := testRouter(t, knowledge.New(), nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/rules/R99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}
