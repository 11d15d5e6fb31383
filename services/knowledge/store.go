// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package knowledge holds the rule store for the expert system.
//
// The store keeps the authoritative rule set in memory and publishes it
// as an immutable snapshot: every read path (inference, listing) grabs
// the current slice pointer and never observes a partially applied
// mutation. Writers rebuild the slice and swap it in under a mutex, so
// concurrent consultations run lock-free against a consistent view.
//
// The knowledge base can be loaded from the embedded seed (see the seed
// subpackage) or from an external YAML file; in the latter case every
// authoring mutation is persisted back to that file.
package knowledge

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Store is the authoritative rule repository.
//
// Thread safety: reads are lock-free via an atomically published
// snapshot; mutations are serialized by an internal mutex.
type Store struct {
	mu       sync.Mutex // serializes writers
	snapshot atomic.Pointer[[]Rule]

	version string
	domain  string
	path    string // non-empty when loaded from a file; mutations persist here
}

// RuleUpdate carries the partial fields accepted by Update. Nil fields
// are left untouched.
type RuleUpdate struct {
	Antecedents    *[]string
	Consequent     *string
	CF             *float64
	Recommendation *Recommendation
	Explanation    *string
	Status         *RuleStatus
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	empty := []Rule{}
	s.snapshot.Store(&empty)
	return s
}

// Load parses a knowledge-base YAML document and returns a populated
// store. Every rule is validated; a single malformed rule fails the
// whole load so a broken file never half-populates the engine.
func Load(data []byte) (*Store, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the knowledge base: %w", err)
	}

	s := New()
	s.version = file.Version
	s.domain = file.Domain

	rules := make([]Rule, 0, len(file.Rules))
	seen := make(map[string]struct{}, len(file.Rules))
	for _, r := range file.Rules {
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if r.ID == "" {
			return nil, fmt.Errorf("knowledge base contains a rule without an id")
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %s in knowledge base", r.ID)
		}
		seen[r.ID] = struct{}{}
		rules = append(rules, r.Clone())
	}
	s.snapshot.Store(&rules)
	return s, nil
}

// LoadFile loads the knowledge base from a YAML file on disk and keeps
// the path so later mutations are written back.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the knowledge base file: %w", err)
	}
	s, err := Load(data)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// Snapshot returns the current immutable rule slice. Callers must not
// mutate the returned slice or its rules.
func (s *Store) Snapshot() []Rule {
	return *s.snapshot.Load()
}

// List returns a defensive copy of all rules in stable (insertion)
// order. The order carries no inference semantics; it exists for
// display pagination.
func (s *Store) List() []Rule {
	snap := s.Snapshot()
	out := make([]Rule, 0, len(snap))
	for _, r := range snap {
		out = append(out, r.Clone())
	}
	return out
}

// Get returns the rule with the given id.
func (s *Store) Get(id string) (Rule, error) {
	for _, r := range s.Snapshot() {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return Rule{}, &NotFoundError{ID: id}
}

// Add validates and inserts a new rule. When the incoming rule has no
// id one is generated (R<n>, first free numeric suffix). Returns the
// stored rule. On validation failure the store is left unchanged.
func (s *Store) Add(rule Rule) (Rule, error) {
	if err := validateRule(rule); err != nil {
		return Rule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.Snapshot()
	if rule.ID == "" {
		rule.ID = s.nextID(snap)
	} else {
		for _, r := range snap {
			if r.ID == rule.ID {
				return Rule{}, &ValidationError{Field: "id", Reason: fmt.Sprintf("%q already exists", rule.ID)}
			}
		}
	}
	if rule.Status == "" {
		rule.Status = StatusActive
	}

	next := make([]Rule, len(snap), len(snap)+1)
	copy(next, snap)
	next = append(next, rule.Clone())
	s.snapshot.Store(&next)
	s.persistLocked(next)
	return rule, nil
}

// Update applies the non-nil fields of upd to the rule with the given
// id, re-validating the result. Returns the updated rule.
func (s *Store) Update(id string, upd RuleUpdate) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.Snapshot()
	idx := -1
	for i, r := range snap {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Rule{}, &NotFoundError{ID: id}
	}

	updated := snap[idx].Clone()
	if upd.Antecedents != nil {
		updated.Antecedents = append([]string(nil), (*upd.Antecedents)...)
	}
	if upd.Consequent != nil {
		updated.Consequent = *upd.Consequent
	}
	if upd.CF != nil {
		updated.CF = *upd.CF
	}
	if upd.Recommendation != nil {
		updated.Recommendation = *upd.Recommendation
	}
	if upd.Explanation != nil {
		updated.Explanation = *upd.Explanation
	}
	if upd.Status != nil {
		updated.Status = *upd.Status
	}
	if err := validateRule(updated); err != nil {
		return Rule{}, err
	}

	next := make([]Rule, len(snap))
	copy(next, snap)
	next[idx] = updated
	s.snapshot.Store(&next)
	s.persistLocked(next)
	return updated.Clone(), nil
}

// Delete removes the rule with the given id. Deletion is not
// idempotent: a second delete of the same id fails with NotFoundError.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.Snapshot()
	idx := -1
	for i, r := range snap {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{ID: id}
	}

	next := make([]Rule, 0, len(snap)-1)
	next = append(next, snap[:idx]...)
	next = append(next, snap[idx+1:]...)
	s.snapshot.Store(&next)
	s.persistLocked(next)
	return nil
}

// Replace swaps the whole rule set for the given one. Used by the file
// watcher on hot reload; the incoming store has already been validated.
func (s *Store) Replace(other *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := other.Snapshot()
	s.version = other.version
	s.domain = other.domain
	s.snapshot.Store(&next)
}

// Symptoms returns the symptom catalog grouped by display category.
// Phase identifiers are part of the fact vocabulary but not symptoms,
// so they are excluded. Categories with no members are omitted.
func (s *Store) Symptoms() map[string][]string {
	set := make(map[string]struct{})
	for _, r := range s.Snapshot() {
		if !r.Active() {
			continue
		}
		for _, a := range r.Antecedents {
			if strings.HasPrefix(strings.ToLower(a), "fase") {
				continue
			}
			set[a] = struct{}{}
		}
	}

	all := make([]string, 0, len(set))
	for sym := range set {
		all = append(all, sym)
	}
	sort.Strings(all)

	categories := map[string][]string{}
	for _, sym := range all {
		cat := categorize(sym)
		categories[cat] = append(categories[cat], sym)
	}
	return categories
}

// Stats summarizes the knowledge base for dashboards.
type Stats struct {
	Version         string         `json:"version"`
	TotalRules      int            `json:"total_rules"`
	ActiveRules     int            `json:"active_rules"`
	UniqueDiagnoses int            `json:"unique_diagnoses"`
	AverageCF       float64        `json:"average_cf"`
	CFDistribution  map[string]int `json:"cf_distribution"`
	RulesByPhase    map[string]int `json:"rules_by_phase"`
}

// Statistics computes summary numbers over the current snapshot.
func (s *Store) Statistics() Stats {
	snap := s.Snapshot()
	stats := Stats{
		Version:        s.version,
		TotalRules:     len(snap),
		CFDistribution: map[string]int{"very_high": 0, "high": 0, "medium": 0, "low": 0},
		RulesByPhase:   map[string]int{},
	}

	diagnoses := make(map[string]struct{})
	var cfSum float64
	for _, r := range snap {
		if r.Active() {
			stats.ActiveRules++
		}
		diagnoses[r.Consequent] = struct{}{}
		cfSum += r.CF
		switch {
		case r.CF >= 0.9:
			stats.CFDistribution["very_high"]++
		case r.CF >= 0.7:
			stats.CFDistribution["high"]++
		case r.CF >= 0.5:
			stats.CFDistribution["medium"]++
		default:
			stats.CFDistribution["low"]++
		}
		for _, a := range r.Antecedents {
			if strings.HasPrefix(a, "fase_") {
				stats.RulesByPhase[a]++
			}
		}
	}
	stats.UniqueDiagnoses = len(diagnoses)
	if len(snap) > 0 {
		stats.AverageCF = cfSum / float64(len(snap))
	}
	return stats
}

// persistLocked writes the rule set back to the source file, when the
// store was loaded from one. Best effort: a failed write keeps the
// in-memory state authoritative and logs the error.
func (s *Store) persistLocked(rules []Rule) {
	if s.path == "" {
		return
	}
	file := File{Version: s.version, Domain: s.domain, Rules: rules}
	data, err := yaml.Marshal(&file)
	if err != nil {
		slog.Error("failed to marshal the knowledge base", "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		slog.Error("failed to persist the knowledge base", "path", s.path, "error", err)
	}
}

func (s *Store) nextID(snap []Rule) string {
	max := 0
	for _, r := range snap {
		if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "R")); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("R%d", max+1)
}

func validateRule(r Rule) error {
	if len(r.Antecedents) == 0 {
		return &ValidationError{Field: "antecedents", Reason: "must not be empty"}
	}
	for _, a := range r.Antecedents {
		if strings.TrimSpace(a) == "" {
			return &ValidationError{Field: "antecedents", Reason: "must not contain blank identifiers"}
		}
	}
	if strings.TrimSpace(r.Consequent) == "" {
		return &ValidationError{Field: "consequent", Reason: "must not be blank"}
	}
	if r.CF < -1.0 || r.CF > 1.0 {
		return &ValidationError{Field: "cf", Reason: fmt.Sprintf("%v is outside [-1, 1]", r.CF)}
	}
	return nil
}

// categorize maps a symptom identifier to its display group, mirroring
// the keyword grouping the authoring UI expects.
func categorize(symptom string) string {
	s := strings.ToLower(symptom)
	switch {
	case strings.Contains(s, "daun") || strings.Contains(s, "klorosis") || strings.Contains(s, "nekro"):
		return "Gejala Daun"
	case strings.Contains(s, "pertumbuhan") || strings.Contains(s, "kerdil") ||
		strings.Contains(s, "batang") || strings.Contains(s, "ruas") || strings.Contains(s, "akar"):
		return "Gejala Pertumbuhan"
	case strings.Contains(s, "bunga") || strings.Contains(s, "buah") || strings.Contains(s, "bercak") ||
		strings.Contains(s, "pembentukan") || strings.Contains(s, "pematangan") || strings.Contains(s, "ujung"):
		return "Gejala Bunga/Buah"
	default:
		return "Gejala Lain"
	}
}
