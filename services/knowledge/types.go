// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RuleStatus controls whether a rule participates in inference.
type RuleStatus string

const (
	StatusActive   RuleStatus = "active"
	StatusInactive RuleStatus = "inactive"
)

// Recommendation is the fertilization advice attached to a diagnosis.
type Recommendation struct {
	Pupuk  string `yaml:"pupuk" json:"pupuk"`
	Dosis  string `yaml:"dosis" json:"dosis"`
	Metode string `yaml:"metode" json:"metode"`
}

// Rule is a single IF-THEN production in the knowledge base.
//
// Antecedents are conjunctive: every identifier must be asserted as a
// fact for the rule to fire. The CF expresses the expert's confidence
// in the consequent given the antecedents hold with full certainty.
type Rule struct {
	ID             string         `yaml:"id" json:"id"`
	Antecedents    []string       `yaml:"antecedents" json:"antecedents"`
	Consequent     string         `yaml:"consequent" json:"consequent"`
	CF             float64        `yaml:"cf" json:"cf"`
	Recommendation Recommendation `yaml:"recommendation" json:"recommendation"`
	Explanation    string         `yaml:"explanation" json:"explanation"`
	Status         RuleStatus     `yaml:"status,omitempty" json:"status"`
}

// Active reports whether the rule should be considered by the engine.
func (r Rule) Active() bool {
	return r.Status == "" || r.Status == StatusActive
}

// Clone returns a deep copy so snapshot holders never alias store slices.
func (r Rule) Clone() Rule {
	out := r
	out.Antecedents = append([]string(nil), r.Antecedents...)
	return out
}

// File is the on-disk (and embedded) shape of the knowledge base.
type File struct {
	Version string         `yaml:"version"`
	Domain  string         `yaml:"domain"`
	Rules   []Rule         `yaml:"rules"`
	Phases  map[string]any `yaml:"growth_phases,omitempty"`
}

func (s *RuleStatus) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	incoming := RuleStatus(raw)
	switch incoming {
	case StatusActive, StatusInactive, "":
		*s = incoming
		return nil
	default:
		return fmt.Errorf("invalid value for rule status: %q", incoming)
	}
}
