// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	rulesFile    string // external knowledge-base YAML (default: embedded seed)
	servePort    string
	dataDir      string
	consultFase  string
	consultCFs   []string // repeated symptom=cf flags
	outputFormat string   // yaml or json

	rootCmd = &cobra.Command{
		Use:   "sipakar",
		Short: "A cli for the SiPakar chili fertilization expert system",
		Long: `SiPakar diagnoses nutrient problems in chili plants from observed
symptoms using certainty-factor rules, and explains its reasoning.`,
	}

	// --- Server ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the consultation REST service",
		Run:   runServe, // Defined in cmd_serve.go
	}

	// --- Consultation ---
	consultCmd = &cobra.Command{
		Use:   "consult --gejala symptom[=cf] ...",
		Short: "Run a one-shot consultation and print the full text report",
		Run:   runConsult, // Defined in cmd_consult.go
	}

	// --- Knowledge base ---
	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "Dump the knowledge base",
		Run:   runRulesDump, // Defined in cmd_rules.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "",
		"path to an external rules YAML (default: embedded knowledge base)")

	serveCmd.Flags().StringVar(&servePort, "port", "8515", "port to listen on")
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "./data/consultations",
		"directory for the consultation log")

	consultCmd.Flags().StringVar(&consultFase, "fase", "",
		"growth phase: vegetatif or generatif")
	consultCmd.Flags().StringArrayVar(&consultCFs, "gejala", nil,
		"observed symptom, optionally with certainty: daun_kuning_merata=0.8")
	_ = consultCmd.MarkFlagRequired("gejala")

	rulesCmd.Flags().StringVar(&outputFormat, "format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(consultCmd)
	rootCmd.AddCommand(rulesCmd)
}
