// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pakartani/sipakar/pkg/logging"
	"github.com/pakartani/sipakar/services/explanation"
	"github.com/pakartani/sipakar/services/inference"
	"github.com/pakartani/sipakar/services/knowledge"
	"github.com/pakartani/sipakar/services/knowledge/seed"
)

// parseGejala turns repeated --gejala flags into a fact map. A bare
// symptom means full certainty; "symptom=0.8" asserts it at CF 0.8.
func parseGejala(flags []string) (map[string]float64, error) {
	facts := make(map[string]float64, len(flags))
	for _, flag := range flags {
		id, raw, hasCF := strings.Cut(flag, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("empty symptom in --gejala %q", flag)
		}
		cf := 1.0
		if hasCF {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid certainty in --gejala %q: %w", flag, err)
			}
			if parsed < -1.0 || parsed > 1.0 {
				return nil, fmt.Errorf("certainty in --gejala %q must be in [-1, 1]", flag)
			}
			cf = parsed
		}
		facts[id] = cf
	}
	return facts, nil
}

func loadStore() (*knowledge.Store, error) {
	if rulesFile == "" {
		return knowledge.Load(seed.Rules)
	}
	return knowledge.LoadFile(rulesFile)
}

func runConsult(cmd *cobra.Command, args []string) {
	logger := logging.New(logging.Config{
		Level:   logging.LevelWarn,
		LogDir:  "~/.sipakar/logs",
		Service: "cli",
	})
	defer logger.Close()

	store, err := loadStore()
	if err != nil {
		logger.Error("failed to load the knowledge base", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	facts, err := parseGejala(consultCFs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	switch consultFase {
	case "":
	case "vegetatif", "generatif":
		facts["fase_"+consultFase] = 1.0
		facts["fase_"+consultFase+"_lanjut"] = 1.0
	default:
		fmt.Fprintln(os.Stderr, "Error: --fase must be vegetatif or generatif")
		os.Exit(1)
	}

	conclusions := inference.Diagnose(store.Snapshot(), facts)
	if len(conclusions) == 0 {
		fmt.Println("Tidak ada diagnosis yang cocok dengan gejala yang diberikan.")
		return
	}

	record := explanation.ConsultationRecord{
		ID:          "CONS-" + uuid.NewString(),
		Timestamp:   time.Now().Format("2006-01-02 15:04:05"),
		Fase:        consultFase,
		Conclusions: conclusions,
	}
	ids := make([]string, 0, len(facts))
	for id := range facts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		record.Facts = append(record.Facts, explanation.Fact{ID: id, CF: facts[id]})
	}

	fmt.Print(explanation.TextReport(record))

	if comparison, ok := explanation.BuildComparison(conclusions); ok {
		fmt.Println()
		fmt.Println(comparison.Summary)
	}
}
