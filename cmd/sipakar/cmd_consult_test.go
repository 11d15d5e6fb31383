// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGejala(t *testing.T) {
	facts, err := parseGejala([]string{
		"daun_kuning_merata=0.8",
		"pertumbuhan_lambat",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.8, facts["daun_kuning_merata"])
	assert.Equal(t, 1.0, facts["pertumbuhan_lambat"])
}

func TestParseGejalaErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
	}{
		{"empty symptom", []string{"=0.5"}},
		{"bad number", []string{"daun_kuning_merata=abc"}},
		{"out of range", []string{"daun_kuning_merata=1.5"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseGejala(tc.flags)
			assert.Error(t, err)
		})
	}
}
