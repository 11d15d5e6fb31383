// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func runRulesDump(cmd *cobra.Command, args []string) {
	store, err := loadStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rules := store.List()
	switch outputFormat {
	case "yaml":
		out, err := yaml.Marshal(map[string]any{"rules": rules})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
	case "json":
		out, err := json.MarshalIndent(map[string]any{"rules": rules}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	default:
		fmt.Fprintln(os.Stderr, "Error: --format must be yaml or json")
		os.Exit(1)
	}
}
